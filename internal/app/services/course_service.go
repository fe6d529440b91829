package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unistud/internal/app/models"
	"github.com/yigit/unistud/internal/app/models/dto"
	"github.com/yigit/unistud/internal/app/repositories"
	"github.com/yigit/unistud/internal/pkg/apperrors"
	"github.com/yigit/unistud/internal/pkg/helpers"
	"github.com/yigit/unistud/internal/pkg/validation"
)

// CourseService handles course catalogue operations
type CourseService struct {
	courses         repositories.CourseStore
	views           viewBuilder
	defaultCapacity int
	logger          zerolog.Logger
}

// NewCourseService creates a new CourseService. defaultCapacity is used when
// a course is created without maxCapacity.
func NewCourseService(courses repositories.CourseStore, enrollments repositories.EnrollmentStore, defaultCapacity int, logger zerolog.Logger) *CourseService {
	return &CourseService{
		courses:         courses,
		views:           viewBuilder{enrollments: enrollments},
		defaultCapacity: defaultCapacity,
		logger:          logger,
	}
}

func (s *CourseService) checkTitle(ctx context.Context, title string, excludeID int64) error {
	exists, err := s.courses.TitleExists(ctx, title, excludeID)
	if err != nil {
		return fmt.Errorf("error checking if title exists: %w", err)
	}
	if exists {
		return repositories.TitleInUseError(title)
	}
	return nil
}

func checkCapacity(capacity int) error {
	if !validation.ValidCapacity(capacity) {
		return apperrors.NewValidationError(fmt.Sprintf("maxCapacity must be between 0 and %d", validation.CapacityMax))
	}
	return nil
}

// Create adds a course to the catalogue.
func (s *CourseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	title := strings.TrimSpace(req.Title)
	capacity := s.defaultCapacity
	if req.MaxCapacity != nil {
		capacity = *req.MaxCapacity
	}
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	if err := s.checkTitle(ctx, title, 0); err != nil {
		return nil, err
	}

	course := &models.Course{Title: title, MaxCapacity: capacity}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseID", course.ID).Str("title", title).Int("maxCapacity", capacity).Msg("Course created")
	resp := toCourseResponse(course, 0)
	return &resp, nil
}

// GetByID returns a course with its roster.
func (s *CourseService) GetByID(ctx context.Context, id int64) (*dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views.course(ctx, course)
}

// List returns one page of courses, sorted by title unless page says otherwise.
func (s *CourseService) List(ctx context.Context, page helpers.PageRequest) (*dto.CourseListResponse, error) {
	courses, total, err := s.courses.List(ctx, listParams(page))
	if err != nil {
		return nil, err
	}
	return s.page(ctx, courses, total, page, false)
}

// ListWithStudents is List with each course's roster attached.
func (s *CourseService) ListWithStudents(ctx context.Context, page helpers.PageRequest) (*dto.CourseListResponse, error) {
	courses, total, err := s.courses.List(ctx, listParams(page))
	if err != nil {
		return nil, err
	}
	return s.page(ctx, courses, total, page, true)
}

// Search finds courses whose title contains title, ignoring case.
func (s *CourseService) Search(ctx context.Context, title string, page helpers.PageRequest) (*dto.CourseListResponse, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title query parameter is required")
	}

	courses, total, err := s.courses.SearchByTitle(ctx, title, listParams(page))
	if err != nil {
		return nil, err
	}
	return s.page(ctx, courses, total, page, false)
}

func (s *CourseService) page(ctx context.Context, courses []*models.Course, total int64, page helpers.PageRequest, withStudents bool) (*dto.CourseListResponse, error) {
	views, err := s.views.courses(ctx, courses, withStudents)
	if err != nil {
		return nil, err
	}
	return &dto.CourseListResponse{
		Courses:    views,
		Pagination: helpers.NewPaginationInfo(total, page.Page, page.Size),
	}, nil
}

// Update changes title and capacity. A missing maxCapacity keeps the current one.
func (s *CourseService) Update(ctx context.Context, id int64, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title != course.Title {
		if err := s.checkTitle(ctx, title, id); err != nil {
			return nil, err
		}
	}

	course.Title = title
	if req.MaxCapacity != nil {
		if err := checkCapacity(*req.MaxCapacity); err != nil {
			return nil, err
		}
		course.MaxCapacity = *req.MaxCapacity
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseID", id).Int("maxCapacity", course.MaxCapacity).Msg("Course updated")
	return s.views.course(ctx, course)
}

// Delete removes a course together with all of its enrollments.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("courseID", id).Msg("Course deleted")
	return nil
}
