package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/jetgraph/internal/app"
	"github.com/zeusync/jetgraph/internal/config"
	"github.com/zeusync/jetgraph/internal/core/observability/log"
	wirefmt "github.com/zeusync/jetgraph/internal/core/wire"
	"github.com/zeusync/jetgraph/pkg/encoding"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideCodec,
	ProvideSerializer,
	app.New,
	wire.Bind(new(log.Log), new(*log.Logger)),
)

func ProvideLogger(cfg *config.Config) *log.Logger {
	return log.New(cfg.Level())
}

func ProvideCodec(cfg *config.Config) (wirefmt.Codec, error) {
	return wirefmt.CodecByName(cfg.Codec)
}

func ProvideSerializer(cfg *config.Config, logger *log.Logger, codec wirefmt.Codec) *encoding.Serializer {
	return encoding.New(
		encoding.WithLogger(logger),
		encoding.WithCodec(codec),
		encoding.WithMaxDepth(cfg.MaxDepth),
	)
}
