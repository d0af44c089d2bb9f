package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zeusync/jetgraph/internal/app"
	"github.com/zeusync/jetgraph/internal/config"
	"github.com/zeusync/jetgraph/internal/core/wire"
	"github.com/zeusync/jetgraph/internal/injector"
)

const usage = `usage: jetgraph [-config FILE] [-log-level LEVEL] COMMAND [flags] FILE...

commands:
  convert  -from CODEC -to CODEC -out DIR   rewrite documents with another codec
  digest   -from CODEC                      print the digest of each document
  check    -from CODEC -strict              validate documents; -strict also
                                            rebuilds them and rejects any
                                            class-tagged instance
  codecs                                    list the available codecs
`

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("jetgraph", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := global.String("config", "", "YAML or JSON configuration file")
	logLevel := global.String("log-level", "", "debug, info, warn, error or silent")
	if err := global.Parse(args); err != nil {
		return exitUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return exitUsage
	}

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		fmt.Fprintln(stderr, "jetgraph:", err)
		return exitFail
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	if cmd == "codecs" {
		fmt.Fprintln(stdout, strings.Join(wire.CodecNames(), "\n"))
		return exitOK
	}

	flags := flag.NewFlagSet(cmd, flag.ContinueOnError)
	flags.SetOutput(stderr)
	from := flags.String("from", "", "input codec; guessed from the extension when empty")
	to := flags.String("to", "", "output codec for convert; defaults to the configured codec")
	out := flags.String("out", "", "output directory for convert")
	strict := flags.Bool("strict", cfg.Strict, "check: rebuild the graph too; the command registers no classes, so any $className other than a built-in fails")
	if err = flags.Parse(rest); err != nil {
		return exitUsage
	}
	cfg.Strict = *strict

	a, err := injector.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "jetgraph:", err)
		return exitFail
	}

	var results []app.Result
	switch cmd {
	case "convert":
		results, err = a.Convert(ctx, flags.Args(), *from, *to, *out)
	case "digest":
		results, err = a.Digest(ctx, flags.Args(), *from)
	case "check":
		results, err = a.Check(ctx, flags.Args(), *from)
	default:
		fmt.Fprintf(stderr, "jetgraph: unknown command %q\n", cmd)
		global.Usage()
		return exitUsage
	}

	report(stdout, stderr, cmd, results)
	if err != nil {
		if len(results) == 0 {
			fmt.Fprintln(stderr, "jetgraph:", err)
		}
		return exitFail
	}
	return exitOK
}

func loadConfig(path, level string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	if level != "" {
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func report(stdout, stderr io.Writer, cmd string, results []app.Result) {
	for _, res := range results {
		if res.Err != nil {
			var pathErr *os.PathError
			if errors.As(res.Err, &pathErr) {
				fmt.Fprintf(stderr, "%s: %v\n", res.Path, pathErr.Err)
			} else {
				fmt.Fprintf(stderr, "%s: %v\n", res.Path, res.Err)
			}
			continue
		}
		switch cmd {
		case "convert":
			fmt.Fprintf(stdout, "%s -> %s\n", res.Path, res.Output)
		case "digest":
			fmt.Fprintf(stdout, "%016x  %s\n", res.Digest, res.Path)
		case "check":
			fmt.Fprintf(stdout, "ok  %s  nodes=%d refs=%d tagged=%d duplicates=%d\n",
				res.Path, res.Stats.Nodes, res.Stats.Refs, res.Stats.Tagged, res.Stats.Duplicates)
		}
	}
}
