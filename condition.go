package sqlq

import (
	"fmt"
	"strings"
	"time"
)

// lookupKeywords is the closed set of recognized lookup suffixes. A two-part
// key whose second segment is not in this set is read as table__column.
var lookupKeywords = map[string]bool{
	"contains":   true,
	"startswith": true,
	"endswith":   true,
	"range":      true,
	"in":         true,
	"isnull":     true,
	"gte":        true,
	"lte":        true,
	"gt":         true,
	"lt":         true,
}

// splitLookup splits a lookup key on "__" into table, column, and lookup.
// One segment is a bare column; two segments are column__lookup when the
// second is a recognized keyword, table__column otherwise; three segments are
// table__column__lookup. Anything else is invalid.
func splitLookup(key string) (table, column, lookup string, err error) {
	parts := strings.Split(key, "__")
	switch {
	case len(parts) == 1:
		return "", parts[0], "", nil
	case len(parts) == 2 && lookupKeywords[parts[1]]:
		return "", parts[0], parts[1], nil
	case len(parts) == 2:
		return parts[0], parts[1], "", nil
	case len(parts) == 3:
		return parts[0], parts[1], parts[2], nil
	}
	return "", "", "", fmt.Errorf("%w: %q", ErrInvalidLookup, key)
}

// quoteColumn renders a column reference, qualified when a table is present.
func quoteColumn(table, column string) string {
	if table != "" {
		return `"` + table + `"."` + column + `"`
	}
	return `"` + column + `"`
}

// combinator tags the boolean node shapes a condition tree may contain.
// The zero value marks an invalid shape and fails at render time.
type combinator int

const (
	combInvalid combinator = iota
	combAnd
	combOr
	combNot
)

// qNode is one boolean combinator over child conditions. combNot uses only
// the left child.
type qNode struct {
	op    combinator
	left  Q
	right Q
}

// lookupEntry is one field-lookup predicate in declaration order.
type lookupEntry struct {
	key   string
	value any
}

// Q is a boolean predicate tree. It holds combinator nodes and field-lookup
// entries, both rendered in declaration order and joined with AND. Lookup
// keys take the form [table__]column[__lookup]:
//
//	sqlq.Cond("u__name__startswith", "John").Or(sqlq.Cond("u__name__startswith", "Jane"))
//	// renders: ("u"."name" LIKE $1 || '%' OR "u"."name" LIKE $2 || '%')
//
// Q values are immutable; And, Or, Not, and Cond return new values.
type Q struct {
	nodes   []qNode
	entries []lookupEntry
}

// Cond builds a single-entry condition from a lookup key and value.
func Cond(key string, value any) Q {
	return Q{entries: []lookupEntry{{key: key, value: value}}}
}

// Cond returns a copy of q with one more lookup entry appended.
func (q Q) Cond(key string, value any) Q {
	entries := make([]lookupEntry, 0, len(q.entries)+1)
	entries = append(entries, q.entries...)
	entries = append(entries, lookupEntry{key: key, value: value})
	q.entries = entries
	q.nodes = append([]qNode(nil), q.nodes...)
	return q
}

// And combines two conditions into (q AND other).
func (q Q) And(other Q) Q {
	return Q{nodes: []qNode{{op: combAnd, left: q, right: other}}}
}

// Or combines two conditions into (q OR other).
func (q Q) Or(other Q) Q {
	return Q{nodes: []qNode{{op: combOr, left: q, right: other}}}
}

// Not negates a condition as NOT (q).
func Not(q Q) Q {
	return Q{nodes: []qNode{{op: combNot, left: q}}}
}

// render walks the tree depth first, appending bound values to a. Combinator
// nodes render before lookup entries, each in declaration order, joined with
// " AND ".
func (q Q) render(a *args) (string, error) {
	clauses := make([]string, 0, len(q.nodes)+len(q.entries))
	for _, n := range q.nodes {
		switch n.op {
		case combAnd, combOr:
			left, err := n.left.render(a)
			if err != nil {
				return "", err
			}
			right, err := n.right.render(a)
			if err != nil {
				return "", err
			}
			op := " AND "
			if n.op == combOr {
				op = " OR "
			}
			clauses = append(clauses, "("+left+op+right+")")
		case combNot:
			inner, err := n.left.render(a)
			if err != nil {
				return "", err
			}
			clauses = append(clauses, "NOT ("+inner+")")
		default:
			return "", ErrInvalidCondition
		}
	}
	for _, e := range q.entries {
		clause, err := e.render(a)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, " AND "), nil
}

// renderValue renders one value position: a nested Query becomes an indented
// parenthesized subquery feeding the shared accumulator, an Exp renders
// verbatim, and anything else binds as the next placeholder.
func renderValue(value any, a *args) (string, error) {
	switch v := value.(type) {
	case Query:
		sub, err := v.render(a)
		if err != nil {
			return "", err
		}
		return "(\n" + indent(sub, "  ") + "\n)", nil
	case *Query:
		sub, err := v.render(a)
		if err != nil {
			return "", err
		}
		return "(\n" + indent(sub, "  ") + "\n)", nil
	case Exp:
		return string(v), nil
	default:
		return a.bind(value), nil
	}
}

func (e lookupEntry) render(a *args) (string, error) {
	table, column, lookup, err := splitLookup(e.key)
	if err != nil {
		return "", err
	}
	col := quoteColumn(table, column)

	if lookup == "" {
		ph, err := renderValue(e.value, a)
		if err != nil {
			return "", err
		}
		return col + " = " + ph, nil
	}

	switch lookup {
	case "contains":
		ph, err := renderValue(e.value, a)
		if err != nil {
			return "", err
		}
		return col + " LIKE '%' || " + ph + " || '%'", nil
	case "startswith":
		ph, err := renderValue(e.value, a)
		if err != nil {
			return "", err
		}
		return col + " LIKE " + ph + " || '%'", nil
	case "endswith":
		ph, err := renderValue(e.value, a)
		if err != nil {
			return "", err
		}
		return col + " LIKE '%' || " + ph, nil
	case "range":
		start, end, err := rangePair(e.value)
		if err != nil {
			return "", err
		}
		from, err := renderValue(start, a)
		if err != nil {
			return "", err
		}
		to, err := renderValue(end, a)
		if err != nil {
			return "", err
		}
		return col + " BETWEEN " + from + " AND " + to, nil
	case "in":
		return renderIn(col, e.value, a)
	case "isnull":
		isNull, ok := e.value.(bool)
		if !ok {
			return "", fmt.Errorf("%w: isnull requires a bool, got %T", ErrInvalidLookupValue, e.value)
		}
		if isNull {
			return col + " IS NULL", nil
		}
		return col + " IS NOT NULL", nil
	case "gte":
		ph, err := renderValue(e.value, a)
		if err != nil {
			return "", err
		}
		return col + " >= " + ph, nil
	case "lte":
		ph, err := renderValue(e.value, a)
		if err != nil {
			return "", err
		}
		return col + " <= " + ph, nil
	case "gt":
		ph, err := renderValue(e.value, a)
		if err != nil {
			return "", err
		}
		return col + " > " + ph, nil
	case "lt":
		ph, err := renderValue(e.value, a)
		if err != nil {
			return "", err
		}
		return col + " < " + ph, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLookup, lookup)
}

// renderIn renders membership tests. A nested Query becomes IN (subquery)
// with merged placeholders; a collection binds as one array-typed placeholder
// cast to the element kind inferred from the collection.
func renderIn(col string, value any, a *args) (string, error) {
	switch value.(type) {
	case Query, *Query:
		sub, err := renderValue(value, a)
		if err != nil {
			return "", err
		}
		return col + " IN " + sub, nil
	}
	typ, err := elementType(value)
	if err != nil {
		return "", err
	}
	return col + " = any(" + a.bind(value) + "::" + typ + "[])", nil
}

// elementType maps a collection to its PostgreSQL array element type. The
// supported kinds form a closed set; anything else is rejected. For []any the
// kind is inferred from the first element only.
func elementType(value any) (string, error) {
	switch v := value.(type) {
	case []int:
		return nonEmptyKind("int", len(v))
	case []int32:
		return nonEmptyKind("int", len(v))
	case []int64:
		return nonEmptyKind("int", len(v))
	case []string:
		return nonEmptyKind("text", len(v))
	case []float32:
		return nonEmptyKind("float", len(v))
	case []float64:
		return nonEmptyKind("float", len(v))
	case []time.Time:
		return nonEmptyKind("timestamptz", len(v))
	case []Date:
		return nonEmptyKind("date", len(v))
	case []any:
		if len(v) == 0 {
			return "", fmt.Errorf(`%w: empty collection for "in" lookup`, ErrInvalidLookupValue)
		}
		switch v[0].(type) {
		case int, int32, int64:
			return "int", nil
		case string:
			return "text", nil
		case float32, float64:
			return "float", nil
		case time.Time:
			return "timestamptz", nil
		case Date:
			return "date", nil
		}
		return "", fmt.Errorf(`%w: unsupported element %T for "in" lookup`, ErrInvalidLookupValue, v[0])
	}
	return "", fmt.Errorf(`%w: unsupported value %T for "in" lookup`, ErrInvalidLookupValue, value)
}

func nonEmptyKind(kind string, n int) (string, error) {
	if n == 0 {
		return "", fmt.Errorf(`%w: empty collection for "in" lookup`, ErrInvalidLookupValue)
	}
	return kind, nil
}

// rangePair extracts the (start, end) pair a range lookup requires.
func rangePair(value any) (start, end any, err error) {
	switch v := value.(type) {
	case []any:
		if len(v) == 2 {
			return v[0], v[1], nil
		}
	case []int:
		if len(v) == 2 {
			return v[0], v[1], nil
		}
	case []int64:
		if len(v) == 2 {
			return v[0], v[1], nil
		}
	case []float64:
		if len(v) == 2 {
			return v[0], v[1], nil
		}
	case []string:
		if len(v) == 2 {
			return v[0], v[1], nil
		}
	case []time.Time:
		if len(v) == 2 {
			return v[0], v[1], nil
		}
	case []Date:
		if len(v) == 2 {
			return v[0], v[1], nil
		}
	}
	return nil, nil, fmt.Errorf("%w: range requires a two-element (start, end) value, got %T", ErrInvalidLookupValue, value)
}
