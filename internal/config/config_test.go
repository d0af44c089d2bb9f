package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/jetgraph/internal/core/observability/log"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "json", c.Codec)
	assert.Equal(t, log.LevelInfo, c.Level())
	assert.Positive(t, c.Workers)
}

func TestValidate_CollectsErrors(t *testing.T) {
	c := Config{Codec: "xml", Indent: "--", MaxDepth: 0, Workers: -1, LogLevel: "loud"}
	err := c.Validate()
	require.Error(t, err)
	for _, key := range []string{"codec", "indent", "max_depth", "workers", "log_level"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadYAML_KeepsDefaults(t *testing.T) {
	c, err := LoadYAML(strings.NewReader("codec: yaml\nworkers: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, "yaml", c.Codec)
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, Default().MaxDepth, c.MaxDepth)

	_, err = LoadYAML(strings.NewReader("bogus: 1\n"))
	assert.Error(t, err)

	empty, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default().Codec, empty.Codec)
}

func TestLoadJSON(t *testing.T) {
	c, err := LoadJSON(strings.NewReader(`{"codec":"msgpack","strict":true,"log_level":"debug"}`))
	require.NoError(t, err)
	assert.Equal(t, "msgpack", c.Codec)
	assert.True(t, c.Strict)
	assert.Equal(t, log.LevelDebug, c.Level())

	_, err = LoadJSON(strings.NewReader(`{"nope":1}`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "jetgraph.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("indent: \"\\t\"\n"), 0o600))
	c, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "\t", c.Indent)

	jsonPath := filepath.Join(dir, "jetgraph.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"workers":0}`), 0o600))
	_, err = Load(jsonPath)
	assert.ErrorContains(t, err, "workers")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
