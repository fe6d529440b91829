package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/unistud/internal/app/models"
	"github.com/yigit/unistud/internal/app/repositories"
	"github.com/yigit/unistud/internal/pkg/dberrors"
	"github.com/yigit/unistud/internal/pkg/helpers"
	"github.com/yigit/unistud/internal/pkg/logger"
)

var studentColumns = []string{"id", "first_name", "last_name", "email", "password_hash", "created_at", "updated_at"}

// StudentRepository stores students in SQLite
type StudentRepository struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db, sb: builder()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (*models.Student, error) {
	s := &models.Student{}
	var hash sql.NullString
	var created, updated int64
	if err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &hash, &created, &updated); err != nil {
		return nil, err
	}
	s.PasswordHash = helpers.StringPtr(hash)
	s.CreatedAt = helpers.UnixToTime(created)
	s.UpdatedAt = helpers.UnixToTime(updated)
	return s, nil
}

// Create inserts a student and fills in its ID and timestamps
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := nowUnix()
	query, args, err := r.sb.Insert("students").
		Columns("first_name", "last_name", "email", "password_hash", "created_at", "updated_at").
		Values(student.FirstName, student.LastName, student.Email, helpers.GetNullString(student.PasswordHash), now, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsSQLiteUniqueViolation(err, "students.email") {
			return repositories.EmailInUseError(student.Email)
		}
		logger.Error().Err(err).Str("email", student.Email).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading student id: %w", err)
	}
	student.ID = id
	student.CreatedAt = helpers.UnixToTime(now)
	student.UpdatedAt = student.CreatedAt
	return nil
}

func (r *StudentRepository) getWhere(ctx context.Context, where squirrel.Eq) (*models.Student, error) {
	query, args, err := r.sb.Select(studentColumns...).From("students").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}
	return scanStudent(r.db.QueryRowContext(ctx, query, args...))
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	s, err := r.getWhere(ctx, squirrel.Eq{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.StudentNotFoundError(id)
		}
		return nil, fmt.Errorf("error getting student by ID: %w", err)
	}
	return s, nil
}

// GetByEmail retrieves a student by email
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	s, err := r.getWhere(ctx, squirrel.Eq{"email": email})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.StudentEmailNotFoundError()
		}
		return nil, fmt.Errorf("error getting student by email: %w", err)
	}
	return s, nil
}

// EmailExists reports whether the email is taken
func (r *StudentRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM students WHERE email = ?)`, email)
}

// Update saves the profile fields of a student
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	now := nowUnix()
	query, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"first_name": student.FirstName,
			"last_name":  student.LastName,
			"email":      student.Email,
			"updated_at": now,
		}).
		Where(squirrel.Eq{"id": student.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsSQLiteUniqueViolation(err, "students.email") {
			return repositories.EmailInUseError(student.Email)
		}
		return fmt.Errorf("error updating student: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.StudentNotFoundError(student.ID)
	}
	student.UpdatedAt = helpers.UnixToTime(now)
	return nil
}

// Delete removes a student and their enrollments
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.StudentNotFoundError(id)
	}
	return nil
}

// List returns one page of students and the total count
func (r *StudentRepository) List(ctx context.Context, params repositories.ListParams) ([]*models.Student, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	query, args, err := r.sb.Select(studentColumns...).
		From("students").
		OrderBy(repositories.OrderClause(params, repositories.StudentSortColumns, "id")...).
		Limit(params.Limit).
		Offset(params.Offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

func exists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var found bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("error running existence check: %w", err)
	}
	return found, nil
}
