package services

import (
	"context"
	"fmt"

	"github.com/yigit/unistud/internal/app/models"
	"github.com/yigit/unistud/internal/app/models/dto"
	"github.com/yigit/unistud/internal/app/repositories"
	"github.com/yigit/unistud/internal/pkg/helpers"
)

// viewBuilder derives the relation views from the enrollment edge table.
// Each batch costs at most two queries regardless of page size.
type viewBuilder struct {
	enrollments repositories.EnrollmentStore
}

func toStudentSummary(s *models.Student) dto.StudentSummary {
	return dto.StudentSummary{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
	}
}

func toCourseResponse(c *models.Course, current int) dto.CourseResponse {
	return dto.CourseResponse{
		ID:                c.ID,
		Title:             c.Title,
		MaxCapacity:       c.MaxCapacity,
		CurrentEnrollment: current,
		AvailableSpots:    c.AvailableSpots(current),
		IsFull:            c.IsFull(current),
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func toStudentResponse(s *models.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Courses:   []dto.CourseResponse{},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// students renders students, attaching their courses when withCourses is set.
func (v viewBuilder) students(ctx context.Context, students []*models.Student, withCourses bool) ([]dto.StudentResponse, error) {
	out := make([]dto.StudentResponse, 0, len(students))
	if !withCourses {
		for _, s := range students {
			out = append(out, toStudentResponse(s))
		}
		return out, nil
	}

	ids := make([]int64, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	byStudent, err := v.enrollments.CoursesForStudents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading student courses: %w", err)
	}

	seen := make(map[int64]struct{})
	courseIDs := []int64{}
	for _, courses := range byStudent {
		for _, c := range courses {
			if _, ok := seen[c.ID]; !ok {
				seen[c.ID] = struct{}{}
				courseIDs = append(courseIDs, c.ID)
			}
		}
	}
	counts, err := v.enrollments.CountsForCourses(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("error loading enrollment counts: %w", err)
	}

	for _, s := range students {
		resp := toStudentResponse(s)
		for _, c := range byStudent[s.ID] {
			resp.Courses = append(resp.Courses, toCourseResponse(c, counts[c.ID]))
		}
		out = append(out, resp)
	}
	return out, nil
}

func (v viewBuilder) student(ctx context.Context, s *models.Student) (*dto.StudentResponse, error) {
	views, err := v.students(ctx, []*models.Student{s}, true)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// courses renders courses with live counts, attaching rosters when withStudents is set.
func (v viewBuilder) courses(ctx context.Context, courses []*models.Course, withStudents bool) ([]dto.CourseResponse, error) {
	ids := make([]int64, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	counts, err := v.enrollments.CountsForCourses(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading enrollment counts: %w", err)
	}

	var rosters map[int64][]*models.Student
	if withStudents {
		rosters, err = v.enrollments.StudentsForCourses(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("error loading course students: %w", err)
		}
	}

	out := make([]dto.CourseResponse, 0, len(courses))
	for _, c := range courses {
		resp := toCourseResponse(c, counts[c.ID])
		if withStudents {
			resp.Students = make([]dto.StudentSummary, 0, len(rosters[c.ID]))
			for _, s := range rosters[c.ID] {
				resp.Students = append(resp.Students, toStudentSummary(s))
			}
		}
		out = append(out, resp)
	}
	return out, nil
}

func (v viewBuilder) course(ctx context.Context, c *models.Course) (*dto.CourseResponse, error) {
	views, err := v.courses(ctx, []*models.Course{c}, true)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func listParams(page helpers.PageRequest) repositories.ListParams {
	return repositories.ListParams{
		Offset:     page.Offset(),
		Limit:      page.Limit(),
		SortBy:     page.SortBy,
		Descending: page.Descending(),
	}
}
