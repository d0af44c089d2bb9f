// Package graph describes how arbitrary Go values are seen by the serializer:
// which kind of wire value each one becomes, which values carry identity,
// which struct fields count as own properties, and the optional capabilities
// (ToWirer, Waker) a type can expose.
//
// Identity-bearing nodes are non-nil maps, non-empty slices and pointers to
// non-zero-size structs. Two occurrences are the same node when their
// Identity keys are equal.
package graph
