package graph

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrMaxDepth        = errors.New("maximum nesting depth exceeded")
)

// DefaultMaxDepth bounds recursion for both directions.
const DefaultMaxDepth = 10000
