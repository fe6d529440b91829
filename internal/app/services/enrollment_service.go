package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/unistud/internal/app/models/dto"
	"github.com/yigit/unistud/internal/app/repositories"
	"github.com/yigit/unistud/internal/pkg/metrics"
)

// EnrollmentService moves students in and out of courses. All precondition
// and capacity checks happen inside the store transaction.
type EnrollmentService struct {
	students    repositories.StudentStore
	enrollments repositories.EnrollmentStore
	views       viewBuilder
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	students repositories.StudentStore,
	enrollments repositories.EnrollmentStore,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		students:    students,
		enrollments: enrollments,
		views:       viewBuilder{enrollments: enrollments},
		metrics:     m,
		logger:      logger,
	}
}

// Enroll adds the student to the course and returns the student's updated view.
func (s *EnrollmentService) Enroll(ctx context.Context, req *dto.EnrollmentRequest) (*dto.StudentResponse, error) {
	err := s.enrollments.Enroll(ctx, req.StudentID, req.CourseID)
	s.observe(metrics.OpEnroll, req, err)
	if err != nil {
		return nil, err
	}
	return s.studentView(ctx, req.StudentID)
}

// Unenroll removes the student from the course and returns the student's updated view.
func (s *EnrollmentService) Unenroll(ctx context.Context, req *dto.EnrollmentRequest) (*dto.StudentResponse, error) {
	err := s.enrollments.Unenroll(ctx, req.StudentID, req.CourseID)
	s.observe(metrics.OpUnenroll, req, err)
	if err != nil {
		return nil, err
	}
	return s.studentView(ctx, req.StudentID)
}

func (s *EnrollmentService) studentView(ctx context.Context, id int64) (*dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views.student(ctx, student)
}

func (s *EnrollmentService) observe(op string, req *dto.EnrollmentRequest, err error) {
	outcome := outcomeOf(err)
	s.metrics.ObserveEnrollment(op, outcome)

	event := s.logger.Info()
	if err != nil {
		event = s.logger.Debug().Err(err)
	}
	event.Str("operation", op).
		Int64("studentID", req.StudentID).
		Int64("courseID", req.CourseID).
		Str("outcome", outcome).
		Msg("Enrollment change")
}
