package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/jetgraph/internal/core/graph"
	"github.com/zeusync/jetgraph/internal/core/observability/log"
	"github.com/zeusync/jetgraph/internal/core/wire"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	// Codec is the output codec for convert: json, yaml or msgpack.
	Codec    string `json:"codec" yaml:"codec"`
	Indent   string `json:"indent" yaml:"indent"`
	MaxDepth int    `json:"max_depth" yaml:"max_depth"`
	LogLevel string `json:"log_level" yaml:"log_level"`
	// Workers bounds how many files are processed at once.
	Workers int `json:"workers" yaml:"workers"`
	// Strict makes check rebuild the graph. The command line registers no
	// classes, so a document passes only if it holds plain data and
	// built-ins.
	Strict bool `json:"strict" yaml:"strict"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Codec:    "json",
		Indent:   "  ",
		MaxDepth: graph.DefaultMaxDepth,
		LogLevel: log.LevelInfo.String(),
		Workers:  runtime.NumCPU(),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := wire.CodecByName(c.Codec); err != nil {
		errs = append(errs, fmt.Errorf("codec: %w", err))
	}
	if strings.Trim(c.Indent, " \t") != "" {
		errs = append(errs, fmt.Errorf("indent: only spaces and tabs allowed, got %q", c.Indent))
	}
	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_depth: must be positive, got %d", c.MaxDepth))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers: must be positive, got %d", c.Workers))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level, LevelInfo when it is invalid.
func (c Config) Level() log.Level {
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}

// LoadJSON reads a config from JSON on top of the defaults.
func LoadJSON(r io.Reader) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadYAML reads a config from YAML on top of the defaults.
func LoadYAML(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &c, nil
}

// Load reads path as JSON when it ends in .json and as YAML otherwise, then
// validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c *Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		c, err = LoadJSON(f)
	} else {
		c, err = LoadYAML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err = c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}
