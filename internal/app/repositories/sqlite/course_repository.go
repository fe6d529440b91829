package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/unistud/internal/app/models"
	"github.com/yigit/unistud/internal/app/repositories"
	"github.com/yigit/unistud/internal/db"
	"github.com/yigit/unistud/internal/pkg/dberrors"
	"github.com/yigit/unistud/internal/pkg/helpers"
)

var courseColumns = []string{"id", "title", "max_capacity", "created_at", "updated_at"}

// CourseRepository stores courses in SQLite
type CourseRepository struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db, sb: builder()}
}

func scanCourse(row rowScanner) (*models.Course, error) {
	c := &models.Course{}
	var created, updated int64
	if err := row.Scan(&c.ID, &c.Title, &c.MaxCapacity, &created, &updated); err != nil {
		return nil, err
	}
	c.CreatedAt = helpers.UnixToTime(created)
	c.UpdatedAt = helpers.UnixToTime(updated)
	return c, nil
}

// Create inserts a course and fills in its ID and timestamps
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := nowUnix()
	query, args, err := r.sb.Insert("courses").
		Columns("title", "max_capacity", "created_at", "updated_at").
		Values(course.Title, course.MaxCapacity, now, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsSQLiteUniqueViolation(err, "courses.title") {
			return repositories.TitleInUseError(course.Title)
		}
		return fmt.Errorf("error creating course: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading course id: %w", err)
	}
	course.ID = id
	course.CreatedAt = helpers.UnixToTime(now)
	course.UpdatedAt = course.CreatedAt
	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	query, args, err := r.sb.Select(courseColumns...).From("courses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	c, err := scanCourse(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.CourseNotFoundError(id)
		}
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}
	return c, nil
}

// TitleExists reports whether another course (id != excludeID) uses title.
func (r *CourseRepository) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM courses WHERE title = ? AND id <> ?)`, title, excludeID)
}

// Update saves title and capacity. A capacity below the current enrollment is rejected.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	return db.WithSQLTx(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		var created int64
		err := tx.QueryRowContext(ctx, `SELECT created_at FROM courses WHERE id = ?`, course.ID).Scan(&created)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repositories.CourseNotFoundError(course.ID)
			}
			return fmt.Errorf("error loading course: %w", err)
		}

		if course.MaxCapacity > 0 {
			var current int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM student_courses WHERE course_id = ?`, course.ID).Scan(&current); err != nil {
				return fmt.Errorf("error counting enrollments: %w", err)
			}
			if current > course.MaxCapacity {
				return repositories.CapacityBelowEnrollmentError(course.MaxCapacity, current)
			}
		}

		now := nowUnix()
		_, err = tx.ExecContext(ctx, `UPDATE courses SET title = ?, max_capacity = ?, updated_at = ? WHERE id = ?`,
			course.Title, course.MaxCapacity, now, course.ID)
		if err != nil {
			if dberrors.IsSQLiteUniqueViolation(err, "courses.title") {
				return repositories.TitleInUseError(course.Title)
			}
			return fmt.Errorf("error updating course: %w", err)
		}
		course.CreatedAt = helpers.UnixToTime(created)
		course.UpdatedAt = helpers.UnixToTime(now)
		return nil
	})
}

// Delete removes a course; its enrollments go with it
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.CourseNotFoundError(id)
	}
	return nil
}

// List returns one page of courses and the total count
func (r *CourseRepository) List(ctx context.Context, params repositories.ListParams) ([]*models.Course, int64, error) {
	return r.list(ctx, nil, params)
}

// SearchByTitle matches title as a case-insensitive substring
func (r *CourseRepository) SearchByTitle(ctx context.Context, title string, params repositories.ListParams) ([]*models.Course, int64, error) {
	pattern := "%" + escapeLike(strings.ToLower(title)) + "%"
	return r.list(ctx, squirrel.Expr(`LOWER(title) LIKE ? ESCAPE '\'`, pattern), params)
}

func (r *CourseRepository) list(ctx context.Context, where squirrel.Sqlizer, params repositories.ListParams) ([]*models.Course, int64, error) {
	countQ := r.sb.Select("COUNT(*)").From("courses")
	pageQ := r.sb.Select(courseColumns...).From("courses")
	if where != nil {
		countQ = countQ.Where(where)
		pageQ = pageQ.Where(where)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count courses query: %w", err)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting courses: %w", err)
	}

	query, args, err := pageQ.
		OrderBy(repositories.OrderClause(params, repositories.CourseSortColumns, "title")...).
		Limit(params.Limit).
		Offset(params.Offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, total, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
