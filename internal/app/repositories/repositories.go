package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/unistud/internal/app/models"
)

// DBTX is the subset of *pgxpool.Pool used by the PostgreSQL repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// ListParams carries an already clamped page window and sort order.
type ListParams struct {
	Offset     uint64
	Limit      uint64
	SortBy     string
	Descending bool
}

// StudentStore persists students.
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListParams) ([]*models.Student, int64, error)
}

// CourseStore persists courses.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	TitleExists(ctx context.Context, title string, excludeID int64) (bool, error)
	// Update refuses to lower MaxCapacity below the current enrollment count.
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListParams) ([]*models.Course, int64, error)
	SearchByTitle(ctx context.Context, title string, params ListParams) ([]*models.Course, int64, error)
}

// EnrollmentStore owns the student_courses edge.
type EnrollmentStore interface {
	// Enroll checks student, course, existing edge and capacity in that order
	// and inserts the edge, all within one transaction.
	Enroll(ctx context.Context, studentID, courseID int64) error
	Unenroll(ctx context.Context, studentID, courseID int64) error
	IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error)
	CountForCourse(ctx context.Context, courseID int64) (int, error)
	CountsForCourses(ctx context.Context, courseIDs []int64) (map[int64]int, error)
	CoursesForStudent(ctx context.Context, studentID int64) ([]*models.Course, error)
	CoursesForStudents(ctx context.Context, studentIDs []int64) (map[int64][]*models.Course, error)
	StudentsForCourse(ctx context.Context, courseID int64) ([]*models.Student, error)
	StudentsForCourses(ctx context.Context, courseIDs []int64) (map[int64][]*models.Student, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Students    StudentStore
	Courses     CourseStore
	Enrollments EnrollmentStore
}

// NewRepositories initializes the PostgreSQL repositories
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		Students:    NewStudentRepository(db),
		Courses:     NewCourseRepository(db),
		Enrollments: NewEnrollmentRepository(db),
	}
}
