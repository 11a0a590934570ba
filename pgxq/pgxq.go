// Package pgxq executes sqlq statements over jackc/pgx/v5 handles. pgx binds
// Go slices to PostgreSQL arrays natively, so bound values pass through
// without translation.
package pgxq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/pthm/sqlq"
)

// ErrBadStatement wraps server rejections in the syntax-or-access error class
// (SQLSTATE 42xxx). With a builder these usually mean a raw Exp fragment or a
// verbatim selection named something the database does not know about.
var ErrBadStatement = errors.New("pgxq: statement rejected by server")

// Querier is the subset of pgx operations a Runner needs. It is satisfied by
// *pgx.Conn, pgx.Tx, and *pgxpool.Pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Runner hands rendered statements to a pgx handle.
type Runner struct {
	q   Querier
	log *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used to report rendered SQL at Debug level.
// The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// NewRunner creates a Runner over a pgx connection, transaction, or pool.
func NewRunner(q Querier, opts ...Option) *Runner {
	r := &Runner{q: q, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Query renders stmt and executes it, returning the rows.
func (r *Runner) Query(ctx context.Context, stmt sqlq.Statement) (pgx.Rows, error) {
	text, vals, err := stmt.SQL()
	if err != nil {
		return nil, err
	}
	r.log.Debug("pgxq query", zap.String("sql", text), zap.Int("args", len(vals)))
	rows, err := r.q.Query(ctx, text, vals...)
	if err != nil {
		return nil, wrapErr("query", err)
	}
	return rows, nil
}

// QueryRow renders stmt and executes it, returning the single-row result.
// The error covers rendering only; row errors surface from Row.Scan as usual.
func (r *Runner) QueryRow(ctx context.Context, stmt sqlq.Statement) (pgx.Row, error) {
	text, vals, err := stmt.SQL()
	if err != nil {
		return nil, err
	}
	r.log.Debug("pgxq query row", zap.String("sql", text), zap.Int("args", len(vals)))
	return r.q.QueryRow(ctx, text, vals...), nil
}

// Exec renders stmt and executes it without returning rows.
func (r *Runner) Exec(ctx context.Context, stmt sqlq.Statement) (pgconn.CommandTag, error) {
	text, vals, err := stmt.SQL()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	r.log.Debug("pgxq exec", zap.String("sql", text), zap.Int("args", len(vals)))
	tag, err := r.q.Exec(ctx, text, vals...)
	if err != nil {
		return pgconn.CommandTag{}, wrapErr("exec", err)
	}
	return tag, nil
}

// wrapErr classifies server errors by SQLSTATE class.
func wrapErr(op string, err error) error {
	if code := sqlState(err); strings.HasPrefix(code, "42") {
		return fmt.Errorf("%w: %v", ErrBadStatement, err)
	}
	return fmt.Errorf("pgxq: %s: %w", op, err)
}

// sqlState extracts the SQLSTATE code from a PostgreSQL error. Works with
// pgconn errors directly and with any wrapper exposing SQLState().
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var se interface{ SQLState() string }
	if errors.As(err, &se) {
		return se.SQLState()
	}
	return ""
}
