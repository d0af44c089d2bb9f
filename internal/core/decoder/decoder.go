// Package decoder rebuilds an object graph from a wire envelope. Every
// reference to the same duplicates entry resolves to the same value, so
// sharing and cycles survive the round trip.
package decoder

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/zeusync/jetgraph/internal/core/graph"
	"github.com/zeusync/jetgraph/internal/core/observability/log"
	"github.com/zeusync/jetgraph/internal/core/registry"
	"github.com/zeusync/jetgraph/internal/core/wire"
)

// ErrTypeMismatch is returned when a wire value cannot be stored in the Go
// field or target it is decoded into.
var ErrTypeMismatch = errors.New("type mismatch")

type Decoder struct {
	reg      *registry.Registry
	log      log.Log
	maxDepth int
}

type Option func(*Decoder)

func WithLogger(l log.Log) Option {
	return func(d *Decoder) { d.log = l }
}

// WithMaxDepth bounds nesting; zero or less means graph.DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(d *Decoder) { d.maxDepth = depth }
}

func New(reg *registry.Registry, opts ...Option) *Decoder {
	d := &Decoder{
		reg:      reg,
		log:      log.NewNop(),
		maxDepth: graph.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.reg == nil {
		d.reg = registry.New()
	}
	if d.maxDepth <= 0 {
		d.maxDepth = graph.DefaultMaxDepth
	}
	return d
}

// Decode rebuilds the graph held by env.
//
// Objects without a tag become map[string]any, arrays become []any and
// numbers become float64. Registered classes become pointers to fresh zero
// instances whose fields are then assigned from the payload. Wakeup runs on
// each instance once the whole graph is in place.
func (d *Decoder) Decode(env *wire.Envelope) (any, error) {
	s := newState(d, env)
	out, err := s.run()
	if err != nil {
		return nil, err
	}
	if err = s.complete(); err != nil {
		return nil, err
	}
	if err = s.wake(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeInto is Decode followed by a typed conversion of the result into the
// value target points to. Numbers keep their wire precision on the way.
func (d *Decoder) DecodeInto(env *wire.Envelope, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer, got %T", ErrTypeMismatch, target)
	}

	s := newState(d, env)
	out, err := s.run()
	if err != nil {
		return err
	}
	if err = s.complete(); err != nil {
		return err
	}
	if err = s.into(rv.Elem(), out, env.Main, 0); err != nil {
		return err
	}
	return s.wake()
}

// DecodeTree reads the envelope out of a decoded document and decodes it.
func (d *Decoder) DecodeTree(tree any) (any, error) {
	env, err := wire.FromTree(tree)
	if err != nil {
		return nil, err
	}
	return d.Decode(env)
}
