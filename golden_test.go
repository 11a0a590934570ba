package sqlq

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden tests pin the full rendered text of composite statements so clause
// ordering, indentation, and placeholder numbering cannot drift unnoticed.

func TestGolden_OrgReport(t *testing.T) {
	active := From("u", TableRef{Name: "user"}).
		Select("u.id", "u.org_id").
		Where("u__deleted_at__isnull", true)

	stmt := NewWith(
		From("au", "active_users").
			Source("p", LeftJoin(TableRef{Name: "profile"}).On(Cond("p__user_id", Exp(`"au"."id"`)))).
			Select("au.org_id").
			SelectAs("count(*)", "members").
			GroupBy("au.org_id").
			OrderBy("-members").
			Limit(10),
		CTE("active_users", active),
	)

	text, vals, err := stmt.SQL()
	require.NoError(t, err)
	assert.Equal(t, []any{10}, vals)

	g := goldie.New(t)
	g.Assert(t, "org_report", []byte(text+"\n"))
}

func TestGolden_ManagementChain(t *testing.T) {
	base := From("p", TableRef{Name: "profile"}).
		Select("p.id", "p.manager_id").
		Where("p__id", 520)
	step := From("p", TableRef{Name: "profile"}).
		Source("c", "chain").
		Select("p.id", "p.manager_id").
		Where("p__manager_id", Exp(`"c"."id"`))

	stmt := RecursiveCTE(
		From("c", "chain").Select("c.id").OrderBy("c.id"),
		"chain",
		UnionAll(base, step),
	)

	text, vals, err := stmt.SQL()
	require.NoError(t, err)
	assert.Equal(t, []any{520}, vals)

	g := goldie.New(t)
	g.Assert(t, "management_chain", []byte(text+"\n"))
}
