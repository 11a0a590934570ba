package sqlq

import (
	"context"
	"database/sql"
	"reflect"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Querier is the subset of database/sql operations a Runner needs. It is
// satisfied by *sql.DB, *sql.Tx, and *sql.Conn, so statements can run inside
// or outside transactions through the same API.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Runner hands rendered statements to a database/sql handle. It renders the
// Statement, wraps slice-valued bound parameters with pq.Array so collection
// lookups ("in", producing `= any($1::int[])`) round-trip through
// database/sql drivers, and forwards the call.
//
// Runners are lightweight and safe to create per request; they hold no state
// beyond the handle and logger.
type Runner struct {
	q   Querier
	log *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used to report rendered SQL at Debug level.
// The default is a no-op logger.
func WithLogger(log *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = log
	}
}

// NewRunner creates a Runner over a *sql.DB, *sql.Tx, or *sql.Conn.
func NewRunner(q Querier, opts ...RunnerOption) *Runner {
	r := &Runner{q: q, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Query renders stmt and executes it, returning the rows.
func (r *Runner) Query(ctx context.Context, stmt Statement) (*sql.Rows, error) {
	text, vals, err := stmt.SQL()
	if err != nil {
		return nil, err
	}
	bound := normalizeArgs(vals)
	r.log.Debug("sqlq query", zap.String("sql", text), zap.Int("args", len(bound)))
	return r.q.QueryContext(ctx, text, bound...)
}

// QueryRow renders stmt and executes it, returning the single-row result.
// The error covers rendering only; row errors surface from Row.Scan as usual.
func (r *Runner) QueryRow(ctx context.Context, stmt Statement) (*sql.Row, error) {
	text, vals, err := stmt.SQL()
	if err != nil {
		return nil, err
	}
	bound := normalizeArgs(vals)
	r.log.Debug("sqlq query row", zap.String("sql", text), zap.Int("args", len(bound)))
	return r.q.QueryRowContext(ctx, text, bound...), nil
}

// Exec renders stmt and executes it without returning rows.
func (r *Runner) Exec(ctx context.Context, stmt Statement) (sql.Result, error) {
	text, vals, err := stmt.SQL()
	if err != nil {
		return nil, err
	}
	bound := normalizeArgs(vals)
	r.log.Debug("sqlq exec", zap.String("sql", text), zap.Int("args", len(bound)))
	return r.q.ExecContext(ctx, text, bound...)
}

// normalizeArgs wraps slice and array values with pq.Array. database/sql
// rejects bare Go slices as parameters, but array-typed placeholders from
// "in" lookups need PostgreSQL array encoding. []byte stays as-is (bytea).
func normalizeArgs(vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		switch v.(type) {
		case nil, []byte:
			out[i] = v
			continue
		}
		if k := reflect.ValueOf(v).Kind(); k == reflect.Slice || k == reflect.Array {
			out[i] = pq.Array(v)
			continue
		}
		out[i] = v
	}
	return out
}
