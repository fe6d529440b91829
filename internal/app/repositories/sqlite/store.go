// Package sqlite implements the record store on an embedded SQLite database.
// It is meant for single-instance deployments and tests; the handle must come
// from db.OpenSQLite so that all access goes through one connection.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/unistud/internal/app/repositories"
)

//go:embed schema.sql
var schema string

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, handle *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := handle.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply sqlite schema: %w", err)
		}
	}
	return nil
}

// NewRepositories wires the SQLite stores behind the shared interfaces.
func NewRepositories(handle *sql.DB) *repositories.Repositories {
	return &repositories.Repositories{
		Students:    NewStudentRepository(handle),
		Courses:     NewCourseRepository(handle),
		Enrollments: NewEnrollmentRepository(handle),
	}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// affected returns how many rows res touched.
func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading affected rows: %w", err)
	}
	return n, nil
}

func nowUnix() int64 {
	return time.Now().UTC().Unix()
}
