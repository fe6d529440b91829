package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unistud/internal/app/models"
	"github.com/yigit/unistud/internal/db"
	"github.com/yigit/unistud/internal/pkg/dberrors"
	"github.com/yigit/unistud/internal/pkg/logger"
)

// EnrollmentRepository handles the student_courses join table
type EnrollmentRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// lockPair share-locks the student row and exclusively locks the course row.
// Every writer of a course's edges goes through the course lock, so writers
// of one course run one at a time while other courses proceed in parallel.
// Rows are always locked student first, then course.
func lockPair(ctx context.Context, tx pgx.Tx, studentID, courseID int64) (*models.Course, error) {
	var sid int64
	err := tx.QueryRow(ctx, `SELECT id FROM students WHERE id = $1 FOR SHARE`, studentID).Scan(&sid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, StudentNotFoundError(studentID)
		}
		return nil, fmt.Errorf("error locking student: %w", err)
	}

	course := &models.Course{}
	err = tx.QueryRow(ctx, `SELECT id, title, max_capacity FROM courses WHERE id = $1 FOR UPDATE`, courseID).
		Scan(&course.ID, &course.Title, &course.MaxCapacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, CourseNotFoundError(courseID)
		}
		return nil, fmt.Errorf("error locking course: %w", err)
	}
	return course, nil
}

// Enroll inserts the (student, course) edge if it is absent and the course has room.
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, courseID int64) error {
	return db.WithTx(ctx, r.db, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		course, err := lockPair(ctx, tx, studentID, courseID)
		if err != nil {
			return err
		}

		var enrolled bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM student_courses WHERE student_id = $1 AND course_id = $2)`,
			studentID, courseID).Scan(&enrolled)
		if err != nil {
			return fmt.Errorf("error checking enrollment: %w", err)
		}
		if enrolled {
			return AlreadyEnrolledError()
		}

		if !course.IsUnlimited() {
			var current int
			if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM student_courses WHERE course_id = $1`, courseID).Scan(&current); err != nil {
				return fmt.Errorf("error counting enrollments: %w", err)
			}
			if !course.HasAvailableSpots(current) {
				return CourseFullError(course.Title, course.MaxCapacity)
			}
		}

		_, err = tx.Exec(ctx, `INSERT INTO student_courses (student_id, course_id) VALUES ($1, $2)`, studentID, courseID)
		if err != nil {
			switch {
			case dberrors.IsDuplicateConstraintError(err, ConstraintEnrollmentPair):
				return AlreadyEnrolledError()
			case dberrors.IsForeignKeyViolation(err, ConstraintEnrollStudent):
				return StudentNotFoundError(studentID)
			case dberrors.IsForeignKeyViolation(err, ConstraintEnrollCourse):
				return CourseNotFoundError(courseID)
			}
			logger.Error().Err(err).Int64("studentID", studentID).Int64("courseID", courseID).Msg("Error inserting enrollment")
			return fmt.Errorf("error inserting enrollment: %w", err)
		}
		return nil
	})
}

// Unenroll removes the (student, course) edge.
func (r *EnrollmentRepository) Unenroll(ctx context.Context, studentID, courseID int64) error {
	return db.WithTx(ctx, r.db, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := lockPair(ctx, tx, studentID, courseID); err != nil {
			return err
		}

		cmdTag, err := tx.Exec(ctx, `DELETE FROM student_courses WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
		if err != nil {
			logger.Error().Err(err).Int64("studentID", studentID).Int64("courseID", courseID).Msg("Error deleting enrollment")
			return fmt.Errorf("error deleting enrollment: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return NotEnrolledError()
		}
		return nil
	})
}

// IsEnrolled reports whether the edge exists
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error) {
	var enrolled bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM student_courses WHERE student_id = $1 AND course_id = $2)`,
		studentID, courseID).Scan(&enrolled)
	if err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}
	return enrolled, nil
}

// CountForCourse returns the number of students enrolled in a course
func (r *EnrollmentRepository) CountForCourse(ctx context.Context, courseID int64) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM student_courses WHERE course_id = $1`, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting enrollments: %w", err)
	}
	return count, nil
}

// CountsForCourses returns enrollment counts keyed by course ID. Courses
// without students are present with a zero count.
func (r *EnrollmentRepository) CountsForCourses(ctx context.Context, courseIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}
	for _, id := range courseIDs {
		counts[id] = 0
	}

	sql, args, err := r.sb.Select("course_id", "COUNT(*)").
		From("student_courses").
		Where(squirrel.Eq{"course_id": courseIDs}).
		GroupBy("course_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build enrollment count query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing enrollment count query")
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment counts: %w", err)
	}
	return counts, nil
}

// CoursesForStudent lists a student's courses ordered by title
func (r *EnrollmentRepository) CoursesForStudent(ctx context.Context, studentID int64) ([]*models.Course, error) {
	byStudent, err := r.CoursesForStudents(ctx, []int64{studentID})
	if err != nil {
		return nil, err
	}
	return byStudent[studentID], nil
}

// CoursesForStudents lists courses for several students at once
func (r *EnrollmentRepository) CoursesForStudents(ctx context.Context, studentIDs []int64) (map[int64][]*models.Course, error) {
	result := make(map[int64][]*models.Course, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}

	sql, args, err := r.sb.Select("sc.student_id", "c.id", "c.title", "c.max_capacity", "c.created_at", "c.updated_at").
		From("student_courses sc").
		Join("courses c ON c.id = sc.course_id").
		Where(squirrel.Eq{"sc.student_id": studentIDs}).
		OrderBy("c.title ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing student courses query")
		return nil, fmt.Errorf("error querying student courses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sid int64
		c := &models.Course{}
		if err := rows.Scan(&sid, &c.ID, &c.Title, &c.MaxCapacity, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning student course: %w", err)
		}
		result[sid] = append(result[sid], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student courses: %w", err)
	}
	return result, nil
}

// StudentsForCourse lists a course's students ordered by last name
func (r *EnrollmentRepository) StudentsForCourse(ctx context.Context, courseID int64) ([]*models.Student, error) {
	byCourse, err := r.StudentsForCourses(ctx, []int64{courseID})
	if err != nil {
		return nil, err
	}
	return byCourse[courseID], nil
}

// StudentsForCourses lists students for several courses at once
func (r *EnrollmentRepository) StudentsForCourses(ctx context.Context, courseIDs []int64) (map[int64][]*models.Student, error) {
	result := make(map[int64][]*models.Student, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	sql, args, err := r.sb.Select("sc.course_id", "s.id", "s.first_name", "s.last_name", "s.email", "s.created_at", "s.updated_at").
		From("student_courses sc").
		Join("students s ON s.id = sc.student_id").
		Where(squirrel.Eq{"sc.course_id": courseIDs}).
		OrderBy("s.last_name ASC", "s.first_name ASC", "s.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing course students query")
		return nil, fmt.Errorf("error querying course students: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int64
		s := &models.Student{}
		if err := rows.Scan(&cid, &s.ID, &s.FirstName, &s.LastName, &s.Email, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning course student: %w", err)
		}
		result[cid] = append(result[cid], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course students: %w", err)
	}
	return result, nil
}
