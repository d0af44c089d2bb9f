// Package app runs the batch operations behind the jetgraph command over wire
// documents on disk.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeusync/jetgraph/internal/config"
	"github.com/zeusync/jetgraph/internal/core/observability/log"
	"github.com/zeusync/jetgraph/internal/core/wire"
	"github.com/zeusync/jetgraph/pkg/concurrent"
	"github.com/zeusync/jetgraph/pkg/encoding"
	"github.com/zeusync/jetgraph/pkg/sequence"
)

type App struct {
	cfg *config.Config
	ser *encoding.Serializer
	log log.Log
}

func New(cfg *config.Config, ser *encoding.Serializer, logger log.Log) *App {
	return &App{cfg: cfg, ser: ser, log: logger}
}

// Result is the outcome of one file.
type Result struct {
	Path   string
	Output string
	Digest uint64
	Stats  wire.Stats
	Err    error
}

// Convert rewrites each file with the target codec. Output files keep the
// input base name with the codec name as extension and go to outDir, or next
// to the input when outDir is empty. An empty from guesses the input codec
// from the file extension; an empty to uses the configured codec.
func (a *App) Convert(ctx context.Context, paths []string, from, to, outDir string) ([]Result, error) {
	if to == "" {
		to = a.cfg.Codec
	}
	target, err := wire.CodecByName(to)
	if err != nil {
		return nil, err
	}
	if outDir != "" {
		if err = os.MkdirAll(outDir, 0o755); err != nil {
			return nil, err
		}
	}

	return a.run(ctx, "convert", paths, func(path string) Result {
		res := Result{Path: path}
		env, err := read(path, from)
		if err != nil {
			res.Err = err
			return res
		}
		if res.Stats, err = wire.Validate(env); err != nil {
			res.Err = err
			return res
		}
		data, err := wire.Marshal(target, env, a.cfg.Indent)
		if err != nil {
			res.Err = err
			return res
		}

		res.Output = outputPath(path, outDir, target.Name())
		if sameFile(res.Output, path) {
			res.Err = fmt.Errorf("refusing to overwrite input %s", path)
			return res
		}
		res.Err = os.WriteFile(res.Output, data, 0o644)
		return res
	})
}

// Digest hashes the envelope of each file.
func (a *App) Digest(ctx context.Context, paths []string, from string) ([]Result, error) {
	return a.run(ctx, "digest", paths, func(path string) Result {
		res := Result{Path: path}
		env, err := read(path, from)
		if err != nil {
			res.Err = err
			return res
		}
		res.Digest, res.Err = wire.Digest(env)
		return res
	})
}

// Check validates each file. In strict mode the graph is also rebuilt with
// the serializer's registry, so every class name it does not know fails. The
// injected serializer starts with an empty registry.
func (a *App) Check(ctx context.Context, paths []string, from string) ([]Result, error) {
	return a.run(ctx, "check", paths, func(path string) Result {
		res := Result{Path: path}
		env, err := read(path, from)
		if err != nil {
			res.Err = err
			return res
		}
		if res.Stats, err = wire.Validate(env); err != nil {
			res.Err = err
			return res
		}
		if a.cfg.Strict {
			_, res.Err = a.ser.Decode(env)
		}
		return res
	})
}

func (a *App) run(ctx context.Context, op string, paths []string, fn func(string) Result) ([]Result, error) {
	files := sequence.Distinct(sequence.From(paths).Filter(func(p string) bool { return p != "" }))

	results := concurrent.ParallelMap(ctx, files, a.cfg.Workers, func(ctx context.Context, path string) Result {
		if err := ctx.Err(); err != nil {
			return Result{Path: path, Err: err}
		}
		started := time.Now()
		res := fn(path)
		if res.Err != nil {
			a.log.Error("file failed", log.String("op", op), log.String("path", path), log.Error(res.Err))
		} else {
			a.log.Info("file done", log.String("op", op), log.String("path", path), log.Duration("took", time.Since(started)))
		}
		return res
	})

	failed, _ := sequence.From(results).Partition(func(r Result) bool { return r.Err != nil })
	a.log.Debug("batch finished",
		log.String("op", op),
		log.Int("files", files.Count()),
		log.Int("failed", len(failed)),
	)
	errs := sequence.ToArray(sequence.From(failed), func(r Result) error {
		return fmt.Errorf("%s: %w", r.Path, r.Err)
	})
	return results, errors.Join(errs...)
}

func read(path, from string) (*wire.Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	codec := wire.CodecForPath(path)
	if from != "" {
		if codec, err = wire.CodecByName(from); err != nil {
			return nil, err
		}
	}
	return wire.Unmarshal(codec, data)
}

func outputPath(path, outDir, ext string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + "." + ext
	if outDir == "" {
		return filepath.Join(filepath.Dir(path), base)
	}
	return filepath.Join(outDir, base)
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
