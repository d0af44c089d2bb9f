// Package walker finds the nodes of an object graph that are reachable more
// than once, which the encoder must emit once and reference elsewhere.
package walker

import (
	"fmt"
	"reflect"

	"github.com/zeusync/jetgraph/internal/core/graph"
)

// Node is an identity-bearing value met during the walk.
type Node struct {
	ID    graph.Identity
	Value reflect.Value
}

// Result is the outcome of one walk.
type Result struct {
	// Visited lists every identity-bearing node in first-seen order.
	Visited []Node
	// Duplicates lists nodes reached more than once, in the order the second
	// occurrence was found. The position is the node's reference index.
	Duplicates []Node

	seen      map[graph.Identity]struct{}
	index     map[graph.Identity]int
	projected map[graph.Identity]any
	maxDepth  int
}

// Walk traverses the graph rooted at root depth-first. Nodes implementing
// graph.ToWirer are projected once and their projection is walked in place of
// their fields.
func Walk(root any, maxDepth int) (*Result, error) {
	if maxDepth <= 0 {
		maxDepth = graph.DefaultMaxDepth
	}
	r := &Result{
		seen:      make(map[graph.Identity]struct{}),
		index:     make(map[graph.Identity]int),
		projected: make(map[graph.Identity]any),
		maxDepth:  maxDepth,
	}
	if err := r.visit(reflect.ValueOf(root), 0); err != nil {
		return nil, err
	}
	return r, nil
}

// IndexOf returns the reference index of a duplicate node.
func (r *Result) IndexOf(id graph.Identity) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// Projection returns the memoized ToWire result for a node.
func (r *Result) Projection(id graph.Identity) (any, bool) {
	out, ok := r.projected[id]
	return out, ok
}

func (r *Result) visit(v reflect.Value, depth int) error {
	if depth > r.maxDepth {
		return graph.ErrMaxDepth
	}
	kind, v, err := graph.Classify(v)
	if err != nil {
		return err
	}
	if kind == graph.KindNull || kind == graph.KindCallable || kind.BuiltIn() {
		return nil
	}

	id, hasID := graph.IdentityOf(v)
	if hasID {
		if _, seen := r.seen[id]; seen {
			if _, dup := r.index[id]; !dup {
				r.index[id] = len(r.Duplicates)
				r.Duplicates = append(r.Duplicates, Node{ID: id, Value: v})
			}
			return nil
		}
		r.seen[id] = struct{}{}
		r.Visited = append(r.Visited, Node{ID: id, Value: v})
	}

	out, projected, err := graph.Project(v)
	if err != nil {
		return fmt.Errorf("to wire %s: %w", v.Type(), err)
	}
	if projected {
		if hasID {
			r.projected[id] = out
		}
		return r.visit(reflect.ValueOf(out), depth+1)
	}

	switch kind {
	case graph.KindArray:
		for i := 0; i < v.Len(); i++ {
			if err := r.visit(v.Index(i), depth+1); err != nil {
				return err
			}
		}
	case graph.KindRecord:
		for _, e := range graph.Entries(v) {
			if err := r.visit(e.Value, depth+1); err != nil {
				return err
			}
		}
	case graph.KindStruct:
		s := reflect.Indirect(v)
		for _, f := range graph.FieldsOf(s.Type()) {
			if err := r.visit(s.FieldByIndex(f.Index), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
