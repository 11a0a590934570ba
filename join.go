package sqlq

import (
	"fmt"
	"strings"
)

// joinKind tags the supported join types.
type joinKind int

const (
	joinInner joinKind = iota
	joinLeft
	joinRight
	joinFull
	joinCross
)

func (k joinKind) String() string {
	switch k {
	case joinLeft:
		return "LEFT"
	case joinRight:
		return "RIGHT"
	case joinFull:
		return "FULL"
	case joinCross:
		return "CROSS"
	}
	return "INNER"
}

// targetKind tags the join target variants.
type targetKind int

const (
	targetInvalid targetKind = iota
	targetTable
	targetRef
	targetQuery
)

// joinTarget is the tagged union of things a join can attach to: a table
// name, a Table capability, or a nested Query.
type joinTarget struct {
	kind  targetKind
	table string
	ref   Table
	query *Query
}

// Join is a join clause attached to one aliased source of a Query. It carries
// exactly one of an ON condition or a USING column list; setting both, or
// rendering with neither, fails with ErrJoinCondition.
//
//	sqlq.From("u", user).
//		Source("p", sqlq.InnerJoin(profile).On(sqlq.Cond("p__user_id", sqlq.Exp(`"u"."id"`))))
//
// Join values are immutable; On and Using return new values.
type Join struct {
	kind   joinKind
	target joinTarget
	on     *Q
	using  []string
	err    error
}

func newJoin(kind joinKind, target any) Join {
	j := Join{kind: kind}
	switch t := target.(type) {
	case string:
		j.target = joinTarget{kind: targetTable, table: t}
	case Table:
		j.target = joinTarget{kind: targetRef, ref: t}
	case Query:
		sub := t
		j.target = joinTarget{kind: targetQuery, query: &sub}
	case *Query:
		j.target = joinTarget{kind: targetQuery, query: t}
	default:
		j.err = fmt.Errorf("%w: %T cannot be a join target", ErrInvalidSource, target)
	}
	return j
}

// InnerJoin starts an INNER JOIN on a table name, Table, or nested Query.
func InnerJoin(target any) Join { return newJoin(joinInner, target) }

// LeftJoin starts a LEFT JOIN.
func LeftJoin(target any) Join { return newJoin(joinLeft, target) }

// RightJoin starts a RIGHT JOIN.
func RightJoin(target any) Join { return newJoin(joinRight, target) }

// FullJoin starts a FULL JOIN.
func FullJoin(target any) Join { return newJoin(joinFull, target) }

// CrossJoin starts a CROSS JOIN.
func CrossJoin(target any) Join { return newJoin(joinCross, target) }

// On returns a copy of j with the join condition set. Calling On after Using
// records ErrJoinCondition.
func (j Join) On(cond Q) Join {
	if j.err == nil && j.using != nil {
		j.err = fmt.Errorf("%w: ON set after USING", ErrJoinCondition)
		return j
	}
	j.on = &cond
	return j
}

// Using returns a copy of j joining on the named columns. Calling Using after
// On records ErrJoinCondition.
func (j Join) Using(columns ...string) Join {
	if j.err == nil && j.on != nil {
		j.err = fmt.Errorf("%w: USING set after ON", ErrJoinCondition)
		return j
	}
	j.using = append([]string(nil), columns...)
	return j
}

// render emits the join clause for its alias, feeding bound values of the
// condition and of any subquery target into the shared accumulator.
func (j Join) render(alias string, a *args) (string, error) {
	if j.err != nil {
		return "", j.err
	}

	var src string
	switch j.target.kind {
	case targetTable:
		src = j.target.table
	case targetRef:
		src = j.target.ref.TableName()
	case targetQuery:
		sub, err := j.target.query.render(a)
		if err != nil {
			return "", err
		}
		src = "(\n" + indent(sub, "  ") + "\n)"
	default:
		return "", fmt.Errorf("%w: join has no target", ErrInvalidSource)
	}

	head := j.kind.String() + " JOIN " + src + ` AS "` + alias + `"`
	switch {
	case j.on != nil:
		cond, err := j.on.render(a)
		if err != nil {
			return "", err
		}
		return head + " ON (" + cond + ")", nil
	case len(j.using) > 0:
		return head + " USING (" + strings.Join(j.using, ", ") + ")", nil
	}
	return "", fmt.Errorf("%w: missing join condition", ErrJoinCondition)
}
