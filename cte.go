package sqlq

import "strings"

// NamedQuery binds a CTE alias to its defining query.
type NamedQuery struct {
	Name  string
	Query Query
}

// CTE pairs a name with its query for use with NewWith.
func CTE(name string, q Query) NamedQuery {
	return NamedQuery{Name: name, Query: q}
}

// With composes a main query with one or more non-recursive common table
// expressions. All parts share one placeholder sequence: CTEs are numbered in
// declaration order before the main query.
//
//	sqlq.NewWith(
//		sqlq.From("dr", "direct_reports").Select("dr.user_id"),
//		sqlq.CTE("direct_reports", sqlq.From("p", profile).Where("p__manager_id", 520)),
//	)
type With struct {
	main Query
	ctes []NamedQuery
}

// NewWith builds a WITH statement. At least one CTE must be provided; the
// check happens at render time.
func NewWith(main Query, ctes ...NamedQuery) With {
	return With{main: main, ctes: append([]NamedQuery(nil), ctes...)}
}

// SQL renders the statement with a fresh placeholder sequence.
func (w With) SQL() (string, []any, error) {
	a := &args{}
	text, err := w.render(a)
	if err != nil {
		return "", nil, err
	}
	return text, a.vals, nil
}

func (w With) render(a *args) (string, error) {
	if len(w.ctes) == 0 {
		return "", ErrNoCTEs
	}
	parts := make([]string, len(w.ctes))
	for i, c := range w.ctes {
		sub, err := c.Query.render(a)
		if err != nil {
			return "", err
		}
		parts[i] = `"` + c.Name + `" AS (` + "\n" + indent(sub, "  ") + "\n)"
	}
	main, err := w.main.render(a)
	if err != nil {
		return "", err
	}
	return "WITH " + strings.Join(parts, ",\n") + "\n" + main, nil
}

// QueryUnion combines two or more queries with UNION or UNION ALL. Members
// render indented, in declaration order, sharing one placeholder sequence.
type QueryUnion struct {
	queries []Query
	all     bool
}

// Union builds a UNION of the given queries. At least two must be provided;
// the check happens at render time.
func Union(queries ...Query) QueryUnion {
	return QueryUnion{queries: append([]Query(nil), queries...)}
}

// UnionAll builds a UNION ALL of the given queries.
func UnionAll(queries ...Query) QueryUnion {
	return QueryUnion{queries: append([]Query(nil), queries...), all: true}
}

// SQL renders the statement with a fresh placeholder sequence.
func (u QueryUnion) SQL() (string, []any, error) {
	a := &args{}
	text, err := u.render(a)
	if err != nil {
		return "", nil, err
	}
	return text, a.vals, nil
}

func (u QueryUnion) render(a *args) (string, error) {
	if len(u.queries) < 2 {
		return "", ErrUnionSize
	}
	sep := "\nUNION\n"
	if u.all {
		sep = "\nUNION ALL\n"
	}
	parts := make([]string, len(u.queries))
	for i, q := range u.queries {
		sub, err := q.render(a)
		if err != nil {
			return "", err
		}
		parts[i] = indent(sub, "  ")
	}
	return strings.Join(parts, sep), nil
}

// RecursiveWith composes a recursive common table expression: a base union
// whose second branch may reference the CTE alias, and a main query reading
// from it. The base union is numbered before the main query.
//
//	sqlq.RecursiveCTE(
//		sqlq.From("dr", "direct_reports"),
//		"direct_reports",
//		sqlq.UnionAll(baseCase, recursiveCase),
//	)
//
// Exactly one aliased union is required, which the signature enforces.
type RecursiveWith struct {
	main  Query
	base  QueryUnion
	alias string
}

// RecursiveCTE builds a WITH RECURSIVE statement with base as the body of the
// CTE named alias.
func RecursiveCTE(main Query, alias string, base QueryUnion) RecursiveWith {
	return RecursiveWith{main: main, base: base, alias: alias}
}

// SQL renders the statement with a fresh placeholder sequence.
func (r RecursiveWith) SQL() (string, []any, error) {
	a := &args{}
	text, err := r.render(a)
	if err != nil {
		return "", nil, err
	}
	return text, a.vals, nil
}

func (r RecursiveWith) render(a *args) (string, error) {
	base, err := r.base.render(a)
	if err != nil {
		return "", err
	}
	main, err := r.main.render(a)
	if err != nil {
		return "", err
	}
	return `WITH RECURSIVE "` + r.alias + `" AS (` + "\n" + indent(base, "  ") + "\n)\n" + main, nil
}

// Compile-time checks that every renderable root implements Statement.
var (
	_ Statement = Query{}
	_ Statement = With{}
	_ Statement = QueryUnion{}
	_ Statement = RecursiveWith{}
)
