// Package sqlq builds parameterized PostgreSQL SELECT statements from
// immutable builder values.
//
// A statement is composed leaf to root: Exp wraps raw SQL fragments, Q builds
// boolean predicate trees from field lookups, Join attaches a join clause to a
// named source, and Query ties aliased sources, selections, and clauses into a
// full SELECT. With, QueryUnion, and RecursiveWith compose multiple queries
// into WITH, UNION, and WITH RECURSIVE statements.
//
// Rendering produces a SQL text string with $1, $2, ... placeholders and the
// ordered list of bound values whose indices match the placeholder numbers:
//
//	text, values, err := sqlq.From("u", "user").
//		Where("u__name__startswith", "John").
//		Limit(10).
//		SQL()
//	// text:   SELECT *
//	//         FROM user AS "u"
//	//         WHERE "u"."name" LIKE $1 || '%'
//	//         LIMIT $2
//	// values: ["John", 10]
//
// # Immutability
//
// Every builder value is immutable; mutator-style methods return a new value
// and never modify the receiver. Completed values are safe to share across
// goroutines and to embed in multiple parent queries:
//
//	base := sqlq.From("u", "user").Select("u.id")
//	johns := base.Where("u__name__startswith", "John") // base unchanged
//
// # Composition
//
// Nested queries, CTEs, and unions share a single placeholder sequence within
// one render call tree, so bound values stay aligned across every member
// query. Rendering is pure: calling SQL twice on the same value yields the
// same text and values both times.
//
// # Execution
//
// The builder never executes SQL and never opens a connection. Hand the
// rendered (text, values) pair to any $-placeholder driver, or use Runner
// (database/sql) or the pgxq package (jackc/pgx) to do the forwarding.
package sqlq

import (
	"database/sql/driver"
	"strconv"
	"strings"
	"time"
)

// Statement is implemented by every renderable root: Query, With, QueryUnion,
// and RecursiveWith. SQL renders the statement with a fresh placeholder
// sequence starting at $1.
type Statement interface {
	SQL() (string, []any, error)
}

// Table is the capability a model value must expose to be used as a query
// source or join target: resolution to a qualified "<schema>.<table>" name.
// Domain models implement Table so they can be passed to From, Source, and
// the join constructors without sqlq knowing anything else about them.
type Table interface {
	TableName() string
}

// TableRef names a table within a schema and is the in-package Table
// implementation. An empty Schema defaults to "public".
type TableRef struct {
	Schema string
	Name   string
}

// TableName returns the qualified "<schema>.<table>" name.
func (t TableRef) TableName() string {
	if t.Schema == "" {
		return "public." + t.Name
	}
	return t.Schema + "." + t.Name
}

// Date is a calendar date without a time component. It exists so that date[]
// membership tests are distinguishable from timestamptz[] ones when the "in"
// lookup infers the element type of a collection.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the Date on which t falls, in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String returns the date in ISO 8601 form (2006-01-02).
func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// Value implements driver.Valuer so bound Date values pass through
// database/sql drivers unchanged.
func (d Date) Value() (driver.Value, error) {
	return d.Time(), nil
}

// args is the bound-value accumulator threaded through a render call tree.
// One accumulator is shared by every nested query, CTE, and union member
// within a single top-level render, keeping placeholder numbering continuous.
// It must not be shared between concurrent render invocations.
type args struct {
	vals []any
}

// bind appends v and returns its 1-based placeholder.
func (a *args) bind(v any) string {
	a.vals = append(a.vals, v)
	return "$" + strconv.Itoa(len(a.vals))
}

// indent prefixes every non-empty line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
