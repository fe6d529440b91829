package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unistud/internal/app/models"
	"github.com/yigit/unistud/internal/db"
	"github.com/yigit/unistud/internal/pkg/dberrors"
	"github.com/yigit/unistud/internal/pkg/logger"
)

var courseColumns = []string{"id", "title", "max_capacity", "created_at", "updated_at"}

// CourseRepository handles course database operations
type CourseRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	c := &models.Course{}
	err := row.Scan(&c.ID, &c.Title, &c.MaxCapacity, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts course and fills in its generated id and timestamps.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns("title", "max_capacity").
		Values(course.Title, course.MaxCapacity).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, ConstraintCourseTitle) {
			return TitleInUseError(course.Title)
		}
		logger.Error().Err(err).Str("title", course.Title).Msg("Error executing create course query")
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, CourseNotFoundError(id)
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}
	return course, nil
}

// TitleExists reports whether another course (id != excludeID) uses title.
func (r *CourseRepository) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM courses WHERE title = $1 AND id <> $2)`, title, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking course title: %w", err)
	}
	return exists, nil
}

// Update changes title and capacity. The course row is locked first so the
// enrollment count cannot grow between the check and the write.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	return db.WithTx(ctx, r.db, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM courses WHERE id = $1 FOR UPDATE`, course.ID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return CourseNotFoundError(course.ID)
			}
			return fmt.Errorf("error locking course: %w", err)
		}

		if course.MaxCapacity > 0 {
			var current int
			if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM student_courses WHERE course_id = $1`, course.ID).Scan(&current); err != nil {
				return fmt.Errorf("error counting enrollments: %w", err)
			}
			if current > course.MaxCapacity {
				return CapacityBelowEnrollmentError(course.MaxCapacity, current)
			}
		}

		sql, args, err := r.sb.Update("courses").
			SetMap(map[string]interface{}{
				"title":        course.Title,
				"max_capacity": course.MaxCapacity,
				"updated_at":   squirrel.Expr("NOW()"),
			}).
			Where(squirrel.Eq{"id": course.ID}).
			Suffix("RETURNING created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update course query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&course.CreatedAt, &course.UpdatedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, ConstraintCourseTitle) {
				return TitleInUseError(course.Title)
			}
			logger.Error().Err(err).Int64("courseID", course.ID).Msg("Error executing update course query")
			return fmt.Errorf("error updating course: %w", err)
		}
		return nil
	})
}

// Delete removes a course; its enrollments go with it via ON DELETE CASCADE.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("courses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error executing delete course query")
		return fmt.Errorf("error deleting course: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return CourseNotFoundError(id)
	}
	return nil
}

// List returns one page of courses and the total count.
func (r *CourseRepository) List(ctx context.Context, params ListParams) ([]*models.Course, int64, error) {
	return r.list(ctx, nil, params)
}

// SearchByTitle matches title case-insensitively anywhere in the course title.
func (r *CourseRepository) SearchByTitle(ctx context.Context, title string, params ListParams) ([]*models.Course, int64, error) {
	pattern := "%" + escapeLike(strings.ToLower(title)) + "%"
	return r.list(ctx, squirrel.Expr("LOWER(title) LIKE ?", pattern), params)
}

func (r *CourseRepository) list(ctx context.Context, where squirrel.Sqlizer, params ListParams) ([]*models.Course, int64, error) {
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
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting courses: %w", err)
	}

	sql, args, err := pageQ.
		OrderBy(OrderClause(params, CourseSortColumns, "title")...).
		Limit(params.Limit).
		Offset(params.Offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
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
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating course rows: %w", err)
	}
	return courses, total, nil
}

// escapeLike neutralises LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
