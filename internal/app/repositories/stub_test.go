package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// stubRow scans fixed values, or returns err.
type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

func assign(dest, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("stub: scan into %d targets, have %d values", len(dest), len(values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = values[i].(int64)
		case *int:
			*p = values[i].(int)
		case *string:
			*p = values[i].(string)
		case **string:
			if values[i] == nil {
				*p = nil
			} else {
				s := values[i].(string)
				*p = &s
			}
		case *bool:
			*p = values[i].(bool)
		case *time.Time:
			*p = values[i].(time.Time)
		default:
			return fmt.Errorf("stub: unsupported scan target %T", d)
		}
	}
	return nil
}

// stubStep answers the first statement containing match.
type stubStep struct {
	match string
	row   stubRow
	tag   string
	err   error
}

// stubDB replays steps against QueryRow/Exec in the order statements arrive.
type stubDB struct {
	steps    []stubStep
	executed []string
	tx       *stubTx
}

func (s *stubDB) next(sql string) (stubStep, error) {
	s.executed = append(s.executed, sql)
	for i, step := range s.steps {
		if strings.Contains(sql, step.match) {
			s.steps = append(s.steps[:i], s.steps[i+1:]...)
			return step, nil
		}
	}
	return stubStep{}, fmt.Errorf("stub: unexpected statement %q", sql)
}

func (s *stubDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	step, err := s.next(sql)
	if err != nil {
		return stubRow{err: err}
	}
	if step.err != nil {
		return stubRow{err: step.err}
	}
	return step.row
}

func (s *stubDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	step, err := s.next(sql)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	if step.err != nil {
		return pgconn.CommandTag{}, step.err
	}
	return pgconn.NewCommandTag(step.tag), nil
}

func (s *stubDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("stub: Query not supported for %q", sql)
}

func (s *stubDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	s.tx = &stubTx{db: s}
	return s.tx, nil
}

func (s *stubDB) ran(fragment string) bool {
	for _, sql := range s.executed {
		if strings.Contains(sql, fragment) {
			return true
		}
	}
	return false
}

// stubTx routes statements to its stubDB. Methods the repositories never call
// fall through to the nil embedded interface and panic.
type stubTx struct {
	pgx.Tx
	db         *stubDB
	committed  bool
	rolledBack bool
}

func (t *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.db.QueryRow(ctx, sql, args...)
}

func (t *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.db.Exec(ctx, sql, args...)
}

func (t *stubTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}
