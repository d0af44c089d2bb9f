package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `{"main":[{"$ref":0},{"$ref":0}],"duplicates":[{"$className":"Date","value":"2024-01-01T00:00:00Z"}]}`

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"-log-level", "silent"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "usage: jetgraph")

	code, _, stderr = runCLI(t, "explode")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestRun_Codecs(t *testing.T) {
	code, stdout, _ := runCLI(t, "codecs")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "cbor\njson\nmsgpack\nyaml\n", stdout)
}

func TestRun_ConvertDigestCheck(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(src, []byte(doc), 0o600))
	out := filepath.Join(dir, "out")

	code, stdout, stderr := runCLI(t, "convert", "-to", "yaml", "-out", out, src)
	require.Equal(t, exitOK, code, stderr)
	converted := filepath.Join(out, "doc.yaml")
	assert.Contains(t, stdout, converted)

	_, first, _ := runCLI(t, "digest", src)
	_, second, _ := runCLI(t, "digest", converted)
	assert.Equal(t, strings.Fields(first)[0], strings.Fields(second)[0])

	code, stdout, _ = runCLI(t, "check", "-strict", converted)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "refs=2")
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"main":{"$ref":1}}`), 0o600))

	code, _, stderr := runCLI(t, "check", bad, filepath.Join(dir, "missing.json"))
	assert.Equal(t, exitFail, code)
	assert.Contains(t, stderr, "bad.json")
	assert.Contains(t, stderr, "missing.json")

	code, _, stderr = runCLI(t, "convert", "-to", "xml", bad)
	assert.Equal(t, exitFail, code)
	assert.Contains(t, stderr, "unknown codec")

	cfgPath := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("workers: 0\n"), 0o600))
	code, _, stderr = runCLI(t, "-config", cfgPath, "check", bad)
	assert.Equal(t, exitFail, code)
	assert.Contains(t, stderr, "workers")
}
