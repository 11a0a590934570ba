package sqlq

import (
	"fmt"
	"strings"
)

// sourceKind tags the variants a query source may take.
type sourceKind int

const (
	srcInvalid sourceKind = iota
	srcTable
	srcRef
	srcQuery
	srcJoin
)

// source is one aliased entry of a Query's FROM list.
type source struct {
	alias string
	kind  sourceKind
	table string
	ref   Table
	query *Query
	join  *Join
}

// selection is one SELECT entry: a plain column expression, or an expression
// with an output alias when alias is non-empty.
type selection struct {
	expr  string
	alias string
}

// Query is the core builder: an ordered list of aliased sources plus
// selections, conditions, grouping, ordering, and bounds. All builder methods
// return a new Query; the receiver is never modified, so any Query value can
// safely serve as the base for several derived queries.
//
//	text, values, err := sqlq.From("u", "user").
//		Select("u.id", "u.name").
//		Where("u__org_id", 42).
//		OrderBy("-u.id").
//		SQL()
//
// The first builder error encountered (invalid source, negative bound, bad
// lookup) is carried on the value and returned by SQL in place of any SQL
// text.
type Query struct {
	sources    []source
	selections []selection
	conditions []Q
	groupBys   []string
	orderBys   []string
	limit      *int
	offset     *int
	distinct   *string
	err        error
}

// From creates a query with one aliased source. A source is a table-name
// string (used verbatim), a Table (qualified name resolution), a nested
// Query, or a Join.
func From(alias string, src any) Query {
	return Query{}.Source(alias, src)
}

// clone copies q so appends never touch slices shared with the receiver.
func (q Query) clone() Query {
	q.sources = append([]source(nil), q.sources...)
	q.selections = append([]selection(nil), q.selections...)
	q.conditions = append([]Q(nil), q.conditions...)
	q.groupBys = append([]string(nil), q.groupBys...)
	q.orderBys = append([]string(nil), q.orderBys...)
	if q.limit != nil {
		v := *q.limit
		q.limit = &v
	}
	if q.offset != nil {
		v := *q.offset
		q.offset = &v
	}
	if q.distinct != nil {
		v := *q.distinct
		q.distinct = &v
	}
	return q
}

// Source returns a copy of q with one more aliased source appended.
func (q Query) Source(alias string, src any) Query {
	q = q.clone()
	if q.err != nil {
		return q
	}
	s := source{alias: alias}
	switch t := src.(type) {
	case string:
		s.kind, s.table = srcTable, t
	case Table:
		s.kind, s.ref = srcRef, t
	case Query:
		sub := t
		s.kind, s.query = srcQuery, &sub
	case *Query:
		s.kind, s.query = srcQuery, t
	case Join:
		join := t
		s.kind, s.join = srcJoin, &join
	case *Join:
		s.kind, s.join = srcJoin, t
	default:
		q.err = fmt.Errorf("%w: %T cannot be a query source", ErrInvalidSource, src)
		return q
	}
	q.sources = append(q.sources, s)
	return q
}

// Select returns a copy of q with plain column expressions appended to the
// selection list. With no selections at all, rendering defaults to *.
func (q Query) Select(columns ...string) Query {
	q = q.clone()
	for _, c := range columns {
		q.selections = append(q.selections, selection{expr: c})
	}
	return q
}

// SelectAs returns a copy of q selecting expr under an output alias, rendered
// as `expr "alias"`.
func (q Query) SelectAs(expr, alias string) Query {
	q = q.clone()
	q.selections = append(q.selections, selection{expr: expr, alias: alias})
	return q
}

// Where returns a copy of q with one field-lookup condition appended. The key
// takes the form [table__]column[__lookup]; see Cond for the lookup grammar.
// All conditions of a query are AND-joined.
func (q Query) Where(key string, value any) Query {
	return q.WhereCond(Cond(key, value))
}

// WhereCond returns a copy of q with prebuilt conditions appended.
func (q Query) WhereCond(conds ...Q) Query {
	q = q.clone()
	q.conditions = append(q.conditions, conds...)
	return q
}

// GroupBy returns a copy of q with GROUP BY entries appended (rendered
// verbatim, comma-separated).
func (q Query) GroupBy(columns ...string) Query {
	q = q.clone()
	q.groupBys = append(q.groupBys, columns...)
	return q
}

// OrderBy returns a copy of q with ORDER BY entries appended. A leading "-"
// renders the column descending; entries are otherwise verbatim.
func (q Query) OrderBy(columns ...string) Query {
	q = q.clone()
	q.orderBys = append(q.orderBys, columns...)
	return q
}

// Limit returns a copy of q with the LIMIT bound set. The value is bound as a
// placeholder at render time. Negative limits record ErrNegativeBound.
func (q Query) Limit(n int) Query {
	q = q.clone()
	if q.err != nil {
		return q
	}
	if n < 0 {
		q.err = fmt.Errorf("%w: limit %d", ErrNegativeBound, n)
		return q
	}
	q.limit = &n
	return q
}

// Offset returns a copy of q with the OFFSET bound set. Negative offsets
// record ErrNegativeBound.
func (q Query) Offset(n int) Query {
	q = q.clone()
	if q.err != nil {
		return q
	}
	if n < 0 {
		q.err = fmt.Errorf("%w: offset %d", ErrNegativeBound, n)
		return q
	}
	q.offset = &n
	return q
}

// Slice returns a copy of q bounded to the half-open row range [start, stop):
// offset start and limit stop-start. The range must satisfy 0 <= start <=
// stop; anything else records ErrInvalidSlice. For one-sided bounds use Limit
// or Offset directly.
func (q Query) Slice(start, stop int) Query {
	if start < 0 || stop < start {
		q = q.clone()
		if q.err == nil {
			q.err = fmt.Errorf("%w: [%d:%d]", ErrInvalidSlice, start, stop)
		}
		return q
	}
	return q.Offset(start).Limit(stop - start)
}

// Distinct returns a copy of q selecting with SELECT DISTINCT.
func (q Query) Distinct() Query {
	q = q.clone()
	on := ""
	q.distinct = &on
	return q
}

// DistinctOn returns a copy of q selecting with SELECT DISTINCT ON(column).
func (q Query) DistinctOn(column string) Query {
	q = q.clone()
	q.distinct = &column
	return q
}

// SQL renders the statement with a fresh placeholder sequence starting at $1
// and returns the text plus the bound values in placeholder order.
func (q Query) SQL() (string, []any, error) {
	a := &args{}
	text, err := q.render(a)
	if err != nil {
		return "", nil, err
	}
	return text, a.vals, nil
}

// render emits the statement into the shared accumulator. Clauses concatenate
// in fixed order (SELECT, FROM, WHERE, GROUP BY, ORDER BY, LIMIT, OFFSET),
// each contributing nothing when absent.
func (q Query) render(a *args) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	if len(q.sources) == 0 {
		return "", ErrNoSources
	}

	var sb strings.Builder

	// SELECT
	switch {
	case q.distinct == nil:
		sb.WriteString("SELECT ")
	case *q.distinct == "":
		sb.WriteString("SELECT DISTINCT ")
	default:
		sb.WriteString("SELECT DISTINCT ON(" + *q.distinct + ") ")
	}
	if len(q.selections) == 0 {
		sb.WriteString("*")
	} else {
		cols := make([]string, len(q.selections))
		for i, s := range q.selections {
			if s.alias != "" {
				cols[i] = s.expr + ` "` + s.alias + `"`
			} else {
				cols[i] = s.expr
			}
		}
		sb.WriteString(strings.Join(cols, ", "))
	}

	// FROM: tables and subqueries in insertion order as a comma list, with
	// join clauses appended on their own indented lines.
	var tables, joins []string
	for _, s := range q.sources {
		switch s.kind {
		case srcTable:
			tables = append(tables, s.table+` AS "`+s.alias+`"`)
		case srcRef:
			tables = append(tables, s.ref.TableName()+` AS "`+s.alias+`"`)
		case srcQuery:
			sub, err := s.query.render(a)
			if err != nil {
				return "", err
			}
			tables = append(tables, "(\n"+indent(sub, "  ")+"\n) AS \""+s.alias+`"`)
		case srcJoin:
			clause, err := s.join.render(s.alias, a)
			if err != nil {
				return "", err
			}
			joins = append(joins, clause)
		default:
			return "", fmt.Errorf("%w: source %q", ErrInvalidSource, s.alias)
		}
	}
	sb.WriteString("\nFROM ")
	sb.WriteString(strings.Join(tables, ", "))
	for _, j := range joins {
		sb.WriteString("\n")
		sb.WriteString(indent(j, "  "))
	}

	// WHERE
	if len(q.conditions) > 0 {
		parts := make([]string, len(q.conditions))
		for i, c := range q.conditions {
			text, err := c.render(a)
			if err != nil {
				return "", err
			}
			parts[i] = text
		}
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	// GROUP BY
	if len(q.groupBys) > 0 {
		sb.WriteString("\nGROUP BY ")
		sb.WriteString(strings.Join(q.groupBys, ", "))
	}

	// ORDER BY
	if len(q.orderBys) > 0 {
		orders := make([]string, len(q.orderBys))
		for i, o := range q.orderBys {
			if strings.HasPrefix(o, "-") {
				orders[i] = o[1:] + " DESC"
			} else {
				orders[i] = o
			}
		}
		sb.WriteString("\nORDER BY ")
		sb.WriteString(strings.Join(orders, ", "))
	}

	// LIMIT then OFFSET, binding in that order.
	if q.limit != nil {
		sb.WriteString("\nLIMIT " + a.bind(*q.limit))
	}
	if q.offset != nil {
		sb.WriteString("\nOFFSET " + a.bind(*q.offset))
	}

	return sb.String(), nil
}
