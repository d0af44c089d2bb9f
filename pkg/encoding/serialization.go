// Package encoding serializes arbitrary Go object graphs, including shared
// and cyclic references, dates, regular expressions, errors and registered
// struct types, and restores them with the same topology.
//
//	type Point struct{ X, Y int }
//
//	_ = encoding.RegisterClass("Point", Point{})
//	s, _ := encoding.Stringify(&Point{1, 2})
//	v, _ := encoding.Parse(s) // v is *Point
package encoding

import (
	"reflect"

	"github.com/zeusync/jetgraph/internal/core/decoder"
	"github.com/zeusync/jetgraph/internal/core/encoder"
	"github.com/zeusync/jetgraph/internal/core/graph"
	"github.com/zeusync/jetgraph/internal/core/observability/log"
	"github.com/zeusync/jetgraph/internal/core/registry"
	"github.com/zeusync/jetgraph/internal/core/wire"
)

// Serializer ties a class registry to an encoder, a decoder and a codec.
// It is safe for concurrent use.
type Serializer struct {
	reg      *registry.Registry
	log      log.Log
	codec    wire.Codec
	maxDepth int

	enc *encoder.Encoder
	dec *decoder.Decoder
}

type Option func(*Serializer)

// WithRegistry shares a registry between serializers.
func WithRegistry(reg *Registry) Option {
	return func(s *Serializer) { s.reg = reg }
}

func WithLogger(l log.Log) Option {
	return func(s *Serializer) { s.log = l }
}

// WithCodec sets the codec used by Marshal and Unmarshal. Stringify and
// Parse always use JSON.
func WithCodec(c Codec) Option {
	return func(s *Serializer) { s.codec = c }
}

func WithMaxDepth(depth int) Option {
	return func(s *Serializer) { s.maxDepth = depth }
}

// New creates a serializer with its own registry unless WithRegistry is given.
func New(opts ...Option) *Serializer {
	s := &Serializer{
		log:      log.NewNop(),
		codec:    wire.JSON{},
		maxDepth: graph.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reg == nil {
		s.reg = registry.New()
	}
	s.enc = encoder.New(s.reg, encoder.WithLogger(s.log), encoder.WithMaxDepth(s.maxDepth))
	s.dec = decoder.New(s.reg, decoder.WithLogger(s.log), decoder.WithMaxDepth(s.maxDepth))
	return s
}

func (s *Serializer) Registry() *Registry { return s.reg }

func (s *Serializer) Codec() Codec { return s.codec }

// RegisterClass associates name with the struct type of prototype.
func (s *Serializer) RegisterClass(name string, prototype any) error {
	return s.reg.Register(name, prototype)
}

// ConstructorFor returns the struct type registered under name.
func (s *Serializer) ConstructorFor(name string) (reflect.Type, bool) {
	return s.reg.ConstructorFor(name)
}

// ClassNameFor returns the registered name v is an instance of.
func (s *Serializer) ClassNameFor(v any) (string, bool) {
	return s.reg.NameFor(v)
}

// Encode flattens v into an envelope without serializing it.
func (s *Serializer) Encode(v any) (*Envelope, error) {
	return s.enc.Encode(v)
}

// Decode rebuilds the graph held by env.
func (s *Serializer) Decode(env *Envelope) (any, error) {
	return s.dec.Decode(env)
}

// DecodeInto rebuilds the graph held by env into the value target points to.
func (s *Serializer) DecodeInto(env *Envelope, target any) error {
	return s.dec.DecodeInto(env, target)
}

// Marshal encodes v with the configured codec.
func (s *Serializer) Marshal(v any, indent ...string) ([]byte, error) {
	return s.marshal(s.codec, v, indent)
}

// Unmarshal decodes data written by Marshal.
func (s *Serializer) Unmarshal(data []byte) (any, error) {
	env, err := wire.Unmarshal(s.codec, data)
	if err != nil {
		return nil, err
	}
	return s.dec.Decode(env)
}

// UnmarshalInto decodes data written by Marshal into target.
func (s *Serializer) UnmarshalInto(data []byte, target any) error {
	env, err := wire.Unmarshal(s.codec, data)
	if err != nil {
		return err
	}
	return s.dec.DecodeInto(env, target)
}

// Stringify returns the JSON text of v. The optional indent is used per
// nesting level.
func (s *Serializer) Stringify(v any, indent ...string) (string, error) {
	data, err := s.marshal(wire.JSON{}, v, indent)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Parse rebuilds a graph from text produced by Stringify.
func (s *Serializer) Parse(text string) (any, error) {
	env, err := wire.Unmarshal(wire.JSON{}, []byte(text))
	if err != nil {
		return nil, err
	}
	return s.dec.Decode(env)
}

// Digest hashes the envelope of v; graphs with the same shape and content
// have the same digest.
func (s *Serializer) Digest(v any) (uint64, error) {
	env, err := s.enc.Encode(v)
	if err != nil {
		return 0, err
	}
	return wire.Digest(env)
}

func (s *Serializer) marshal(c Codec, v any, indent []string) ([]byte, error) {
	env, err := s.enc.Encode(v)
	if err != nil {
		return nil, err
	}
	var space string
	if len(indent) > 0 {
		space = indent[0]
	}
	return wire.Marshal(c, env, space)
}

// ParseWith is Parse followed by a typed conversion into T.
func ParseWith[T any](s *Serializer, text string) (T, error) {
	var out T
	env, err := wire.Unmarshal(wire.JSON{}, []byte(text))
	if err != nil {
		return out, err
	}
	err = s.dec.DecodeInto(env, &out)
	return out, err
}
