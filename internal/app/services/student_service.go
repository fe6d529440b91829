package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unistud/internal/app/models/dto"
	"github.com/yigit/unistud/internal/app/repositories"
	"github.com/yigit/unistud/internal/pkg/helpers"
)

// StudentService handles student profile operations
type StudentService struct {
	students repositories.StudentStore
	views    viewBuilder
	logger   zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(students repositories.StudentStore, enrollments repositories.EnrollmentStore, logger zerolog.Logger) *StudentService {
	return &StudentService{
		students: students,
		views:    viewBuilder{enrollments: enrollments},
		logger:   logger,
	}
}

// GetByID returns a student with the courses they attend.
func (s *StudentService) GetByID(ctx context.Context, id int64) (*dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views.student(ctx, student)
}

// GetByEmail returns the student owning email, used for the caller's own profile.
func (s *StudentService) GetByEmail(ctx context.Context, email string) (*dto.StudentResponse, error) {
	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.views.student(ctx, student)
}

// List returns one page of students without their courses.
func (s *StudentService) List(ctx context.Context, page helpers.PageRequest) (*dto.StudentListResponse, error) {
	return s.list(ctx, page, false)
}

// ListWithCourses returns one page of students with their courses.
func (s *StudentService) ListWithCourses(ctx context.Context, page helpers.PageRequest) (*dto.StudentListResponse, error) {
	return s.list(ctx, page, true)
}

func (s *StudentService) list(ctx context.Context, page helpers.PageRequest, withCourses bool) (*dto.StudentListResponse, error) {
	students, total, err := s.students.List(ctx, listParams(page))
	if err != nil {
		return nil, err
	}

	views, err := s.views.students(ctx, students, withCourses)
	if err != nil {
		return nil, err
	}

	return &dto.StudentListResponse{
		Students:   views,
		Pagination: helpers.NewPaginationInfo(total, page.Page, page.Size),
	}, nil
}

// Update replaces the profile fields of a student. A changed email must still be unique.
func (s *StudentService) Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if email != student.Email {
		exists, err := s.students.EmailExists(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("error checking if email exists: %w", err)
		}
		if exists {
			return nil, repositories.EmailInUseError(email)
		}
	}

	student.FirstName = strings.TrimSpace(req.FirstName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.Email = email

	if err := s.students.Update(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", id).Msg("Student updated")
	return s.views.student(ctx, student)
}

// Delete removes a student together with all of their enrollments.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}
