// Package encoder flattens an object graph into a wire envelope. Nodes
// reached more than once are written once into the duplicates table and
// replaced by reference markers everywhere they occur.
package encoder

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"time"

	"github.com/zeusync/jetgraph/internal/core/graph"
	"github.com/zeusync/jetgraph/internal/core/observability/log"
	"github.com/zeusync/jetgraph/internal/core/registry"
	"github.com/zeusync/jetgraph/internal/core/walker"
	"github.com/zeusync/jetgraph/internal/core/wire"
)

// ErrInvalidProjection is returned when a registered type projects itself
// into something other than a record.
var ErrInvalidProjection = errors.New("projection of a registered type must be a record")

type Encoder struct {
	reg      *registry.Registry
	log      log.Log
	maxDepth int
}

type Option func(*Encoder)

func WithLogger(l log.Log) Option {
	return func(e *Encoder) { e.log = l }
}

// WithMaxDepth bounds nesting; zero or less means graph.DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(e *Encoder) { e.maxDepth = depth }
}

func New(reg *registry.Registry, opts ...Option) *Encoder {
	e := &Encoder{
		reg:      reg,
		log:      log.NewNop(),
		maxDepth: graph.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reg == nil {
		e.reg = registry.New()
	}
	if e.maxDepth <= 0 {
		e.maxDepth = graph.DefaultMaxDepth
	}
	return e
}

// Encode builds the envelope for root. Root itself is never mutated.
func (e *Encoder) Encode(root any) (*wire.Envelope, error) {
	walked, err := walker.Walk(root, e.maxDepth)
	if err != nil {
		return nil, err
	}

	s := &state{enc: e, walked: walked}
	env := &wire.Envelope{}
	if n := len(walked.Duplicates); n > 0 {
		env.Duplicates = make([]any, n)
		for i, node := range walked.Duplicates {
			if env.Duplicates[i], err = s.encodeNode(node.Value, 0); err != nil {
				return nil, fmt.Errorf("duplicates[%d]: %w", i, err)
			}
		}
	}
	if env.Main, err = s.encode(reflect.ValueOf(root), 0); err != nil {
		return nil, err
	}

	e.log.Debug("graph encoded",
		log.Int("visited", len(walked.Visited)),
		log.Int("duplicates", len(walked.Duplicates)),
	)
	return env, nil
}

type state struct {
	enc    *Encoder
	walked *walker.Result
}

// encode writes v, or a reference marker when v lives in the duplicates table.
func (s *state) encode(v reflect.Value, depth int) (any, error) {
	if depth > s.enc.maxDepth {
		return nil, graph.ErrMaxDepth
	}
	_, cv, err := graph.Classify(v)
	if err != nil {
		return nil, err
	}
	if id, ok := graph.IdentityOf(cv); ok {
		if i, dup := s.walked.IndexOf(id); dup {
			return wire.Ref(i), nil
		}
	}
	return s.encodeNode(v, depth)
}

// encodeNode writes the content of v even when it is a duplicate.
func (s *state) encodeNode(v reflect.Value, depth int) (any, error) {
	kind, v, err := graph.Classify(v)
	if err != nil {
		return nil, err
	}

	switch kind {
	case graph.KindNull, graph.KindCallable:
		return nil, nil
	case graph.KindBool:
		return v.Bool(), nil
	case graph.KindNumber:
		return number(v), nil
	case graph.KindString:
		return v.String(), nil
	case graph.KindDate:
		return map[string]any{
			wire.KeyClass: wire.TagDate,
			"value":       graph.FormatDate(v.Interface().(time.Time)),
		}, nil
	case graph.KindRegex:
		source, flags := graph.RegexpParts(v.Interface().(*regexp.Regexp))
		return map[string]any{
			wire.KeyClass: wire.TagRegExp,
			"source":      source,
			"flags":       flags,
		}, nil
	case graph.KindError:
		name, message := graph.ErrorParts(v.Interface().(error))
		return map[string]any{
			wire.KeyClass: wire.TagError,
			"name":        name,
			"message":     message,
		}, nil
	}

	className, registered := "", false
	if kind == graph.KindStruct {
		className, registered = s.enc.reg.NameForType(v.Type())
	}

	out, projected, err := s.projection(v)
	if err != nil {
		return nil, err
	}
	if projected {
		if !registered {
			return s.encode(reflect.ValueOf(out), depth+1)
		}
		payload, err := s.encodeNode(reflect.ValueOf(out), depth+1)
		if err != nil {
			return nil, err
		}
		obj, ok := payload.(map[string]any)
		if !ok || isMarker(obj) {
			return nil, fmt.Errorf("%w: %s projected to %T", ErrInvalidProjection, className, out)
		}
		obj[wire.KeyClass] = className
		return obj, nil
	}

	switch kind {
	case graph.KindArray:
		items := make([]any, v.Len())
		for i := range items {
			if items[i], err = s.encode(v.Index(i), depth+1); err != nil {
				return nil, err
			}
		}
		return items, nil
	case graph.KindRecord:
		obj := make(map[string]any, v.Len())
		for _, entry := range graph.Entries(v) {
			if callable(entry.Value) {
				continue
			}
			if obj[entry.Key], err = s.encode(entry.Value, depth+1); err != nil {
				return nil, err
			}
		}
		return obj, nil
	case graph.KindStruct:
		sv := reflect.Indirect(v)
		fields := graph.FieldsOf(sv.Type())
		obj := make(map[string]any, len(fields)+1)
		for _, f := range fields {
			fv := sv.FieldByIndex(f.Index)
			if callable(fv) {
				continue
			}
			if obj[f.Name], err = s.encode(fv, depth+1); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", sv.Type(), f.Name, err)
			}
		}
		if registered {
			obj[wire.KeyClass] = className
		}
		return obj, nil
	}
	return nil, fmt.Errorf("%w: %s", graph.ErrUnsupportedType, v.Type())
}

// projection reuses the ToWire result computed during the walk.
func (s *state) projection(v reflect.Value) (any, bool, error) {
	if id, ok := graph.IdentityOf(v); ok {
		if out, done := s.walked.Projection(id); done {
			return out, true, nil
		}
	}
	out, ok, err := graph.Project(v)
	if err != nil {
		return nil, false, fmt.Errorf("to wire %s: %w", v.Type(), err)
	}
	return out, ok, nil
}

func number(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	}
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func callable(v reflect.Value) bool {
	kind, _, _ := graph.Classify(v)
	return kind == graph.KindCallable
}

func isMarker(obj map[string]any) bool {
	_, ok := obj[wire.KeyRef]
	return ok
}
