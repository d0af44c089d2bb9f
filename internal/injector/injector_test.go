package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/jetgraph/internal/config"
)

func TestInitializeApp(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "silent"

	a, err := InitializeApp(&cfg)
	require.NoError(t, err)
	assert.NotNil(t, a)

	cfg.Codec = "xml"
	_, err = InitializeApp(&cfg)
	assert.Error(t, err)
}
