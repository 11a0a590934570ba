package sqlq

import "errors"

// Sentinel errors for builder misuse. These are programmer-input errors
// detected while constructing or rendering a statement, not transient
// failures: nothing is retried and no partial SQL is ever returned alongside
// one. Builder methods record the first error encountered on the returned
// value; SQL surfaces it. All are checkable with errors.Is.
var (
	// ErrNoSources is returned when a Query reaches render with no sources.
	ErrNoSources = errors.New("sqlq: at least one data source is required")

	// ErrNoCTEs is returned by With when no named auxiliary query was given.
	ErrNoCTEs = errors.New("sqlq: at least one CTE must be provided")

	// ErrUnionSize is returned by QueryUnion with fewer than two members.
	ErrUnionSize = errors.New("sqlq: at least two queries must be provided")

	// ErrJoinCondition is returned when a join carries both an ON condition
	// and a USING column list, or neither.
	ErrJoinCondition = errors.New("sqlq: join requires exactly one of ON and USING")

	// ErrInvalidSource is returned when a source or join target is not a
	// table name, a Table, a Query, or a Join.
	ErrInvalidSource = errors.New("sqlq: invalid data source")

	// ErrNegativeBound is returned by Limit and Offset for negative values.
	ErrNegativeBound = errors.New("sqlq: limit and offset must not be negative")

	// ErrInvalidSlice is returned by Slice for an inverted or negative range.
	ErrInvalidSlice = errors.New("sqlq: invalid slice range")

	// ErrInvalidLookup is returned for a lookup key with more than three
	// "__"-separated segments.
	ErrInvalidLookup = errors.New("sqlq: invalid lookup")

	// ErrUnsupportedLookup is returned for an unrecognized lookup keyword.
	ErrUnsupportedLookup = errors.New("sqlq: unsupported lookup")

	// ErrInvalidLookupValue is returned when a lookup value has the wrong
	// shape, such as an empty or unsupported collection for "in".
	ErrInvalidLookupValue = errors.New("sqlq: invalid lookup value")

	// ErrInvalidCondition is returned when a condition tree contains a node
	// that is not an AND, OR, or NOT combinator.
	ErrInvalidCondition = errors.New("sqlq: invalid condition argument")
)
