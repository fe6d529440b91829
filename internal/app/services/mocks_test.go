package services

import (
	"context"

	"github.com/yigit/unistud/internal/app/models"
	"github.com/yigit/unistud/internal/app/repositories"
)

type mockStudentStore struct {
	CreateFn      func(ctx context.Context, student *models.Student) error
	GetByIDFn     func(ctx context.Context, id int64) (*models.Student, error)
	GetByEmailFn  func(ctx context.Context, email string) (*models.Student, error)
	EmailExistsFn func(ctx context.Context, email string) (bool, error)
	UpdateFn      func(ctx context.Context, student *models.Student) error
	DeleteFn      func(ctx context.Context, id int64) error
	ListFn        func(ctx context.Context, params repositories.ListParams) ([]*models.Student, int64, error)
}

func (m *mockStudentStore) Create(ctx context.Context, student *models.Student) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, student)
}

func (m *mockStudentStore) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	if m.GetByIDFn == nil {
		return nil, repositories.StudentNotFoundError(id)
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockStudentStore) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	if m.GetByEmailFn == nil {
		return nil, repositories.StudentEmailNotFoundError()
	}
	return m.GetByEmailFn(ctx, email)
}

func (m *mockStudentStore) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.EmailExistsFn == nil {
		return false, nil
	}
	return m.EmailExistsFn(ctx, email)
}

func (m *mockStudentStore) Update(ctx context.Context, student *models.Student) error {
	if m.UpdateFn == nil {
		return nil
	}
	return m.UpdateFn(ctx, student)
}

func (m *mockStudentStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, id)
}

func (m *mockStudentStore) List(ctx context.Context, params repositories.ListParams) ([]*models.Student, int64, error) {
	if m.ListFn == nil {
		return []*models.Student{}, 0, nil
	}
	return m.ListFn(ctx, params)
}

type mockCourseStore struct {
	CreateFn        func(ctx context.Context, course *models.Course) error
	GetByIDFn       func(ctx context.Context, id int64) (*models.Course, error)
	TitleExistsFn   func(ctx context.Context, title string, excludeID int64) (bool, error)
	UpdateFn        func(ctx context.Context, course *models.Course) error
	DeleteFn        func(ctx context.Context, id int64) error
	ListFn          func(ctx context.Context, params repositories.ListParams) ([]*models.Course, int64, error)
	SearchByTitleFn func(ctx context.Context, title string, params repositories.ListParams) ([]*models.Course, int64, error)
}

func (m *mockCourseStore) Create(ctx context.Context, course *models.Course) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, course)
}

func (m *mockCourseStore) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	if m.GetByIDFn == nil {
		return nil, repositories.CourseNotFoundError(id)
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockCourseStore) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	if m.TitleExistsFn == nil {
		return false, nil
	}
	return m.TitleExistsFn(ctx, title, excludeID)
}

func (m *mockCourseStore) Update(ctx context.Context, course *models.Course) error {
	if m.UpdateFn == nil {
		return nil
	}
	return m.UpdateFn(ctx, course)
}

func (m *mockCourseStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, id)
}

func (m *mockCourseStore) List(ctx context.Context, params repositories.ListParams) ([]*models.Course, int64, error) {
	if m.ListFn == nil {
		return []*models.Course{}, 0, nil
	}
	return m.ListFn(ctx, params)
}

func (m *mockCourseStore) SearchByTitle(ctx context.Context, title string, params repositories.ListParams) ([]*models.Course, int64, error) {
	if m.SearchByTitleFn == nil {
		return []*models.Course{}, 0, nil
	}
	return m.SearchByTitleFn(ctx, title, params)
}

// mockEnrollmentStore answers the relation queries from an in-memory edge list.
type mockEnrollmentStore struct {
	EnrollFn   func(ctx context.Context, studentID, courseID int64) error
	UnenrollFn func(ctx context.Context, studentID, courseID int64) error

	courses  map[int64]*models.Course
	students map[int64]*models.Student
	edges    [][2]int64
}

func newMockEnrollmentStore() *mockEnrollmentStore {
	return &mockEnrollmentStore{
		courses:  map[int64]*models.Course{},
		students: map[int64]*models.Student{},
	}
}

func (m *mockEnrollmentStore) link(s *models.Student, c *models.Course) {
	m.students[s.ID] = s
	m.courses[c.ID] = c
	m.edges = append(m.edges, [2]int64{s.ID, c.ID})
}

func (m *mockEnrollmentStore) Enroll(ctx context.Context, studentID, courseID int64) error {
	if m.EnrollFn == nil {
		return nil
	}
	return m.EnrollFn(ctx, studentID, courseID)
}

func (m *mockEnrollmentStore) Unenroll(ctx context.Context, studentID, courseID int64) error {
	if m.UnenrollFn == nil {
		return nil
	}
	return m.UnenrollFn(ctx, studentID, courseID)
}

func (m *mockEnrollmentStore) IsEnrolled(_ context.Context, studentID, courseID int64) (bool, error) {
	for _, e := range m.edges {
		if e[0] == studentID && e[1] == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentStore) CountForCourse(ctx context.Context, courseID int64) (int, error) {
	counts, err := m.CountsForCourses(ctx, []int64{courseID})
	return counts[courseID], err
}

func (m *mockEnrollmentStore) CountsForCourses(_ context.Context, courseIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(courseIDs))
	for _, id := range courseIDs {
		counts[id] = 0
	}
	for _, e := range m.edges {
		if _, ok := counts[e[1]]; ok {
			counts[e[1]]++
		}
	}
	return counts, nil
}

func (m *mockEnrollmentStore) CoursesForStudent(ctx context.Context, studentID int64) ([]*models.Course, error) {
	byStudent, err := m.CoursesForStudents(ctx, []int64{studentID})
	return byStudent[studentID], err
}

func (m *mockEnrollmentStore) CoursesForStudents(_ context.Context, studentIDs []int64) (map[int64][]*models.Course, error) {
	result := map[int64][]*models.Course{}
	for _, id := range studentIDs {
		for _, e := range m.edges {
			if e[0] == id {
				result[id] = append(result[id], m.courses[e[1]])
			}
		}
	}
	return result, nil
}

func (m *mockEnrollmentStore) StudentsForCourse(ctx context.Context, courseID int64) ([]*models.Student, error) {
	byCourse, err := m.StudentsForCourses(ctx, []int64{courseID})
	return byCourse[courseID], err
}

func (m *mockEnrollmentStore) StudentsForCourses(_ context.Context, courseIDs []int64) (map[int64][]*models.Student, error) {
	result := map[int64][]*models.Student{}
	for _, id := range courseIDs {
		for _, e := range m.edges {
			if e[1] == id {
				result[id] = append(result[id], m.students[e[0]])
			}
		}
	}
	return result, nil
}
