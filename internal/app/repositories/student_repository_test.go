package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/unistud/internal/app/models"
	"github.com/yigit/unistud/internal/pkg/apperrors"
)

func TestStudentRepositoryCreate(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		step    stubStep
		wantErr error
		wantID  int64
	}{
		"assigns id": {
			step:   stubStep{match: "INSERT INTO students", row: stubRow{values: []any{int64(42), now, now}}},
			wantID: 42,
		},
		"duplicate email": {
			step: stubStep{
				match: "INSERT INTO students",
				err:   &pgconn.PgError{Code: "23505", ConstraintName: ConstraintStudentEmail},
			},
			wantErr: apperrors.ErrEmailAlreadyExists,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewStudentRepository(&stubDB{steps: []stubStep{tt.step}})
			student := &models.Student{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

			err := repo.Create(context.Background(), student)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if student.ID != tt.wantID || !student.CreatedAt.Equal(now) {
				t.Fatalf("expected id %d and timestamps, got %+v", tt.wantID, student)
			}
		})
	}
}

func TestStudentRepositoryGetByID(t *testing.T) {
	now := time.Now()
	hash := "$2a$04$hash"

	found := &stubDB{steps: []stubStep{{
		match: "FROM students",
		row:   stubRow{values: []any{int64(3), "Ada", "Lovelace", "ada@example.com", hash, now, now}},
	}}}
	student, err := NewStudentRepository(found).GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if student.Email != "ada@example.com" || !student.HasPassword() {
		t.Fatalf("unexpected student %+v", student)
	}

	missing := &stubDB{steps: []stubStep{{match: "FROM students", err: pgx.ErrNoRows}}}
	_, err = NewStudentRepository(missing).GetByID(context.Background(), 99)
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if apperrors.PublicMessage(err) != "student not found with id: 99" {
		t.Fatalf("unexpected message %q", apperrors.PublicMessage(err))
	}
}

func TestStudentRepositoryDelete(t *testing.T) {
	stub := &stubDB{steps: []stubStep{{match: "DELETE FROM students", tag: "DELETE 0"}}}
	err := NewStudentRepository(stub).Delete(context.Background(), 5)
	if !errors.Is(err, apperrors.ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestCourseRepositoryUpdateRejectsCapacityBelowEnrollment(t *testing.T) {
	stub := &stubDB{steps: []stubStep{
		{match: "FROM courses WHERE id = $1 FOR UPDATE", row: stubRow{values: []any{int64(7)}}},
		{match: "SELECT COUNT(*) FROM student_courses", row: stubRow{values: []any{3}}},
	}}

	err := NewCourseRepository(stub).Update(context.Background(), &models.Course{ID: 7, Title: "Algorithms", MaxCapacity: 2})
	if !errors.Is(err, apperrors.ErrCapacityBelowEnrollment) {
		t.Fatalf("expected ErrCapacityBelowEnrollment, got %v", err)
	}
	if stub.ran("UPDATE courses") {
		t.Fatalf("update must not run when capacity is too low")
	}
	if !stub.tx.rolledBack {
		t.Fatalf("expected rollback")
	}
}

func TestOrderClause(t *testing.T) {
	tests := map[string]struct {
		params ListParams
		want   []string
	}{
		"default":         {params: ListParams{}, want: []string{"title ASC", "id ASC"}},
		"known desc":      {params: ListParams{SortBy: "maxCapacity", Descending: true}, want: []string{"max_capacity DESC", "id ASC"}},
		"injection falls": {params: ListParams{SortBy: "title; DROP TABLE courses"}, want: []string{"title ASC", "id ASC"}},
		"id only":         {params: ListParams{SortBy: "id"}, want: []string{"id ASC"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := OrderClause(tt.params, CourseSortColumns, "title")
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}
