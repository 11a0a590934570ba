package sqlq

// Exp is an opaque raw-SQL fragment used in a value position. Where a plain
// value would be bound as a $N placeholder, an Exp renders verbatim and never
// contributes to the bound-values list. It is the designated escape hatch for
// referencing other columns or aliases inside a condition, such as the join
// keys of a correlated subquery:
//
//	sqlq.Cond("p__user_id", sqlq.Exp(`"u"."id"`))
//	// renders: "p"."user_id" = "u"."id"
type Exp string
