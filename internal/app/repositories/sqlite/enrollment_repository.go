package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/unistud/internal/app/models"
	"github.com/yigit/unistud/internal/app/repositories"
	"github.com/yigit/unistud/internal/db"
	"github.com/yigit/unistud/internal/pkg/dberrors"
	"github.com/yigit/unistud/internal/pkg/helpers"
)

// EnrollmentRepository stores the student_courses edge in SQLite
type EnrollmentRepository struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *sql.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db, sb: builder()}
}

func loadPair(ctx context.Context, tx *sql.Tx, studentID, courseID int64) (*models.Course, error) {
	var sid int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM students WHERE id = ?`, studentID).Scan(&sid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.StudentNotFoundError(studentID)
		}
		return nil, fmt.Errorf("error loading student: %w", err)
	}

	course := &models.Course{}
	err := tx.QueryRowContext(ctx, `SELECT id, title, max_capacity FROM courses WHERE id = ?`, courseID).
		Scan(&course.ID, &course.Title, &course.MaxCapacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.CourseNotFoundError(courseID)
		}
		return nil, fmt.Errorf("error loading course: %w", err)
	}
	return course, nil
}

// Enroll runs the full check-and-insert sequence inside one transaction. The
// handle has a single connection, so the transaction excludes every other
// writer until it commits.
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, courseID int64) error {
	return db.WithSQLTx(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		course, err := loadPair(ctx, tx, studentID, courseID)
		if err != nil {
			return err
		}

		enrolled, err := exists(ctx, tx,
			`SELECT EXISTS(SELECT 1 FROM student_courses WHERE student_id = ? AND course_id = ?)`, studentID, courseID)
		if err != nil {
			return err
		}
		if enrolled {
			return repositories.AlreadyEnrolledError()
		}

		if !course.IsUnlimited() {
			var current int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM student_courses WHERE course_id = ?`, courseID).Scan(&current); err != nil {
				return fmt.Errorf("error counting enrollments: %w", err)
			}
			if !course.HasAvailableSpots(current) {
				return repositories.CourseFullError(course.Title, course.MaxCapacity)
			}
		}

		return insertEdge(ctx, tx, studentID, courseID)
	})
}

// insertEdge adds the pair and maps constraint failures to domain errors.
func insertEdge(ctx context.Context, tx *sql.Tx, studentID, courseID int64) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO student_courses (student_id, course_id, enrolled_at) VALUES (?, ?, ?)`,
		studentID, courseID, nowUnix())
	switch {
	case err == nil:
		return nil
	case dberrors.IsSQLiteUniqueViolation(err, "student_courses.student_id", "student_courses.course_id"):
		return repositories.AlreadyEnrolledError()
	case dberrors.IsSQLiteForeignKeyViolation(err):
		// SQLite does not name the failing reference, so look both rows up again.
		if _, pairErr := loadPair(ctx, tx, studentID, courseID); pairErr != nil {
			return pairErr
		}
	}
	return fmt.Errorf("error inserting enrollment: %w", err)
}

// Unenroll removes the pair after checking that both rows exist
func (r *EnrollmentRepository) Unenroll(ctx context.Context, studentID, courseID int64) error {
	return db.WithSQLTx(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := loadPair(ctx, tx, studentID, courseID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM student_courses WHERE student_id = ? AND course_id = ?`, studentID, courseID)
		if err != nil {
			return fmt.Errorf("error deleting enrollment: %w", err)
		}
		n, err := affected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return repositories.NotEnrolledError()
		}
		return nil
	})
}

// IsEnrolled reports whether the pair exists
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error) {
	return exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM student_courses WHERE student_id = ? AND course_id = ?)`, studentID, courseID)
}

// CountForCourse returns the current enrollment of a course
func (r *EnrollmentRepository) CountForCourse(ctx context.Context, courseID int64) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM student_courses WHERE course_id = ?`, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting enrollments: %w", err)
	}
	return count, nil
}

// CountsForCourses returns enrollment counts keyed by course ID; missing courses count 0
func (r *EnrollmentRepository) CountsForCourses(ctx context.Context, courseIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}
	for _, id := range courseIDs {
		counts[id] = 0
	}

	query, args, err := r.sb.Select("course_id", "COUNT(*)").
		From("student_courses").
		Where(squirrel.Eq{"course_id": courseIDs}).
		GroupBy("course_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build enrollment count query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting enrollments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("error scanning enrollment count: %w", err)
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

// CoursesForStudent lists the courses a student attends
func (r *EnrollmentRepository) CoursesForStudent(ctx context.Context, studentID int64) ([]*models.Course, error) {
	byStudent, err := r.CoursesForStudents(ctx, []int64{studentID})
	if err != nil {
		return nil, err
	}
	return byStudent[studentID], nil
}

// CoursesForStudents lists attended courses keyed by student ID
func (r *EnrollmentRepository) CoursesForStudents(ctx context.Context, studentIDs []int64) (map[int64][]*models.Course, error) {
	result := make(map[int64][]*models.Course, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}

	query, args, err := r.sb.Select("sc.student_id", "c.id", "c.title", "c.max_capacity", "c.created_at", "c.updated_at").
		From("student_courses sc").
		Join("courses c ON c.id = sc.course_id").
		Where(squirrel.Eq{"sc.student_id": studentIDs}).
		OrderBy("c.title ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student courses query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying student courses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sid, created, updated int64
		c := &models.Course{}
		if err := rows.Scan(&sid, &c.ID, &c.Title, &c.MaxCapacity, &created, &updated); err != nil {
			return nil, fmt.Errorf("error scanning student course: %w", err)
		}
		c.CreatedAt = helpers.UnixToTime(created)
		c.UpdatedAt = helpers.UnixToTime(updated)
		result[sid] = append(result[sid], c)
	}
	return result, rows.Err()
}

// StudentsForCourse lists the roster of a course
func (r *EnrollmentRepository) StudentsForCourse(ctx context.Context, courseID int64) ([]*models.Student, error) {
	byCourse, err := r.StudentsForCourses(ctx, []int64{courseID})
	if err != nil {
		return nil, err
	}
	return byCourse[courseID], nil
}

// StudentsForCourses lists rosters keyed by course ID
func (r *EnrollmentRepository) StudentsForCourses(ctx context.Context, courseIDs []int64) (map[int64][]*models.Student, error) {
	result := make(map[int64][]*models.Student, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	query, args, err := r.sb.Select("sc.course_id", "s.id", "s.first_name", "s.last_name", "s.email", "s.created_at", "s.updated_at").
		From("student_courses sc").
		Join("students s ON s.id = sc.student_id").
		Where(squirrel.Eq{"sc.course_id": courseIDs}).
		OrderBy("s.last_name ASC", "s.first_name ASC", "s.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course students query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying course students: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid, created, updated int64
		s := &models.Student{}
		if err := rows.Scan(&cid, &s.ID, &s.FirstName, &s.LastName, &s.Email, &created, &updated); err != nil {
			return nil, fmt.Errorf("error scanning course student: %w", err)
		}
		s.CreatedAt = helpers.UnixToTime(created)
		s.UpdatedAt = helpers.UnixToTime(updated)
		result[cid] = append(result[cid], s)
	}
	return result, rows.Err()
}
