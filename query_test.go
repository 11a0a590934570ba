package sqlq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Basic(t *testing.T) {
	text, vals, err := From("u", "user").SQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nFROM user AS \"u\"", text)
	assert.Empty(t, vals)
}

func TestQuery_TableSources(t *testing.T) {
	t.Run("default schema", func(t *testing.T) {
		text, _, err := From("u", TableRef{Name: "user"}).SQL()
		require.NoError(t, err)
		assert.Equal(t, "SELECT *\nFROM public.user AS \"u\"", text)
	})

	t.Run("custom schema", func(t *testing.T) {
		text, _, err := From("u", TableRef{Schema: "auth", Name: "user"}).SQL()
		require.NoError(t, err)
		assert.Equal(t, "SELECT *\nFROM auth.user AS \"u\"", text)
	})

	t.Run("multiple sources comma joined in insertion order", func(t *testing.T) {
		text, _, err := From("u", TableRef{Name: "user"}).
			Source("p", TableRef{Name: "profile"}).
			SQL()
		require.NoError(t, err)
		assert.Equal(t, "SELECT *\nFROM public.user AS \"u\", public.profile AS \"p\"", text)
	})
}

func TestQuery_Select(t *testing.T) {
	t.Run("columns", func(t *testing.T) {
		text, _, err := From("u", "user").Select("u.id", "u.name").SQL()
		require.NoError(t, err)
		assert.Equal(t, "SELECT u.id, u.name\nFROM user AS \"u\"", text)
	})

	t.Run("aliased expression", func(t *testing.T) {
		text, _, err := From("u", "user").
			Select("u.org_id").
			SelectAs("count(*)", "n").
			SQL()
		require.NoError(t, err)
		assert.Equal(t, "SELECT u.org_id, count(*) \"n\"\nFROM user AS \"u\"", text)
	})
}

func TestQuery_Where(t *testing.T) {
	t.Run("single condition", func(t *testing.T) {
		text, vals, err := From("u", TableRef{Name: "user"}).Where("u__id", 101).SQL()
		require.NoError(t, err)
		assert.Equal(t, "SELECT *\nFROM public.user AS \"u\"\nWHERE \"u\".\"id\" = $1", text)
		assert.Equal(t, []any{101}, vals)
	})

	t.Run("chained conditions are AND joined", func(t *testing.T) {
		text, vals, err := From("u", TableRef{Name: "user"}).
			Where("id", 101).
			Where("name__startswith", "John").
			SQL()
		require.NoError(t, err)
		assert.Contains(t, text, "WHERE \"id\" = $1 AND \"name\" LIKE $2 || '%'")
		assert.Equal(t, []any{101, "John"}, vals)
	})

	t.Run("in lookup binds one array placeholder", func(t *testing.T) {
		text, vals, err := From("u", TableRef{Name: "user"}).
			Where("u__id__in", []int{1, 2, 3}).
			SQL()
		require.NoError(t, err)
		assert.Contains(t, text, "WHERE \"u\".\"id\" = any($1::int[])")
		assert.Equal(t, []any{[]int{1, 2, 3}}, vals)
	})

	t.Run("prebuilt condition tree", func(t *testing.T) {
		cond := Cond("u__name__startswith", "John").Or(Cond("u__name__startswith", "Jane"))
		text, vals, err := From("u", TableRef{Name: "user"}).WhereCond(cond).SQL()
		require.NoError(t, err)
		assert.Contains(t, text, "WHERE (\"u\".\"name\" LIKE $1 || '%' OR \"u\".\"name\" LIKE $2 || '%')")
		assert.Equal(t, []any{"John", "Jane"}, vals)
	})
}

func TestQuery_SubquerySource(t *testing.T) {
	inner := From("u", TableRef{Name: "user"}).Where("u__active", true)
	text, vals, err := From("x", inner).Select("x.id").SQL()
	require.NoError(t, err)
	want := `SELECT x.id
FROM (
  SELECT *
  FROM public.user AS "u"
  WHERE "u"."active" = $1
) AS "x"`
	assert.Equal(t, want, text)
	assert.Equal(t, []any{true}, vals)
}

func TestQuery_GroupAndOrder(t *testing.T) {
	text, _, err := From("u", TableRef{Name: "user"}).
		Select("u.org_id").
		SelectAs("count(*)", "n").
		GroupBy("u.org_id").
		OrderBy("u.org_id", "-n").
		SQL()
	require.NoError(t, err)
	want := `SELECT u.org_id, count(*) "n"
FROM public.user AS "u"
GROUP BY u.org_id
ORDER BY u.org_id, n DESC`
	assert.Equal(t, want, text)
}

func TestQuery_LimitOffset(t *testing.T) {
	t.Run("limit binds before offset regardless of call order", func(t *testing.T) {
		text, vals, err := From("u", "user").Offset(5).Limit(10).SQL()
		require.NoError(t, err)
		assert.Equal(t, "SELECT *\nFROM user AS \"u\"\nLIMIT $1\nOFFSET $2", text)
		assert.Equal(t, []any{10, 5}, vals)
	})

	t.Run("slice derives offset and limit", func(t *testing.T) {
		text, vals, err := From("u", "user").Slice(5, 15).SQL()
		require.NoError(t, err)
		assert.Equal(t, "SELECT *\nFROM user AS \"u\"\nLIMIT $1\nOFFSET $2", text)
		assert.Equal(t, []any{10, 5}, vals)
	})

	t.Run("slice from zero", func(t *testing.T) {
		_, vals, err := From("u", "user").Slice(0, 10).SQL()
		require.NoError(t, err)
		assert.Equal(t, []any{10, 0}, vals)
	})
}

func TestQuery_Distinct(t *testing.T) {
	t.Run("distinct", func(t *testing.T) {
		text, _, err := From("u", "user").Select("u.org_id").Distinct().SQL()
		require.NoError(t, err)
		assert.Equal(t, "SELECT DISTINCT u.org_id\nFROM user AS \"u\"", text)
	})

	t.Run("distinct on", func(t *testing.T) {
		text, _, err := From("u", "user").DistinctOn("u.org_id").SQL()
		require.NoError(t, err)
		assert.Equal(t, "SELECT DISTINCT ON(u.org_id) *\nFROM user AS \"u\"", text)
	})
}

func TestQuery_RenderIsPure(t *testing.T) {
	q := From("u", TableRef{Name: "user"}).
		Where("u__id__in", []int{1, 2, 3}).
		Where("u__name__startswith", "John").
		Limit(10)

	text1, vals1, err := q.SQL()
	require.NoError(t, err)
	text2, vals2, err := q.SQL()
	require.NoError(t, err)

	assert.Equal(t, text1, text2)
	assert.Equal(t, vals1, vals2)
}

func TestQuery_Immutable(t *testing.T) {
	base := From("u", TableRef{Name: "user"}).Select("u.id")
	derived := base.Where("u__name__startswith", "John").Limit(5)

	baseText, baseVals, err := base.SQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT u.id\nFROM public.user AS \"u\"", baseText)
	assert.Empty(t, baseVals)

	derivedText, derivedVals, err := derived.SQL()
	require.NoError(t, err)
	assert.Contains(t, derivedText, "WHERE")
	assert.Contains(t, derivedText, "LIMIT")
	assert.Equal(t, []any{"John", 5}, derivedVals)
}

func TestQuery_Errors(t *testing.T) {
	t.Run("no sources", func(t *testing.T) {
		_, _, err := (Query{}).SQL()
		assert.ErrorIs(t, err, ErrNoSources)
	})

	t.Run("invalid source type", func(t *testing.T) {
		_, _, err := From("u", 42).SQL()
		assert.ErrorIs(t, err, ErrInvalidSource)
	})

	t.Run("negative limit", func(t *testing.T) {
		_, _, err := From("u", "user").Limit(-1).SQL()
		assert.ErrorIs(t, err, ErrNegativeBound)
	})

	t.Run("negative offset", func(t *testing.T) {
		_, _, err := From("u", "user").Offset(-1).SQL()
		assert.ErrorIs(t, err, ErrNegativeBound)
	})

	t.Run("negative slice start", func(t *testing.T) {
		_, _, err := From("u", "user").Slice(-1, 5).SQL()
		assert.ErrorIs(t, err, ErrInvalidSlice)
	})

	t.Run("inverted slice", func(t *testing.T) {
		_, _, err := From("u", "user").Slice(5, 2).SQL()
		assert.ErrorIs(t, err, ErrInvalidSlice)
	})

	t.Run("bad lookup surfaces at render", func(t *testing.T) {
		_, _, err := From("u", "user").Where("a__b__c__d", 1).SQL()
		assert.ErrorIs(t, err, ErrInvalidLookup)
	})

	t.Run("first error sticks", func(t *testing.T) {
		q := From("u", 42).Limit(-1).Select("u.id")
		_, _, err := q.SQL()
		assert.ErrorIs(t, err, ErrInvalidSource)
		assert.NotErrorIs(t, err, ErrNegativeBound)
	})
}
