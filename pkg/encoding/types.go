package encoding

import (
	"github.com/zeusync/jetgraph/internal/core/decoder"
	"github.com/zeusync/jetgraph/internal/core/encoder"
	"github.com/zeusync/jetgraph/internal/core/graph"
	"github.com/zeusync/jetgraph/internal/core/registry"
	"github.com/zeusync/jetgraph/internal/core/wire"
)

type (
	// ToWirer replaces a value with another before it is encoded.
	ToWirer = graph.ToWirer
	// Waker is called on every restored instance once the graph is rebuilt.
	Waker = graph.Waker
	// Error is what every error value decodes to.
	Error = graph.Error

	Registry          = registry.Registry
	UnknownClassError = registry.UnknownClassError
	Envelope          = wire.Envelope
	Codec             = wire.Codec
)

var (
	ErrFormat            = wire.ErrFormat
	ErrUnknownClass      = registry.ErrUnknownClass
	ErrInvalidName       = registry.ErrInvalidName
	ErrInvalidType       = registry.ErrInvalidType
	ErrUnsupportedType   = graph.ErrUnsupportedType
	ErrMaxDepth          = graph.ErrMaxDepth
	ErrInvalidProjection = encoder.ErrInvalidProjection
	ErrTypeMismatch      = decoder.ErrTypeMismatch
)

// NewRegistry returns an empty class registry for WithRegistry.
func NewRegistry() *Registry {
	return registry.New()
}

// CodecByName resolves "json", "yaml" or "msgpack".
func CodecByName(name string) (Codec, error) {
	return wire.CodecByName(name)
}
