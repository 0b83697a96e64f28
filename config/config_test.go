package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 0.7, cfg.Routing.ConfidenceThreshold)
	assert.Equal(t, 10, cfg.Memory.MaxTurns)
	assert.Equal(t, 30*time.Minute, cfg.Memory.TTL)
	assert.Equal(t, 3, cfg.Knowledge.RetrieveK)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesLayerOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
model:
  provider: anthropic
routing:
  confidence_threshold: 0.8
memory:
  redis_url: "redis://localhost:6379/0"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, 0.8, cfg.Routing.ConfidenceThreshold)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Memory.RedisURL)
	// untouched sections keep defaults
	assert.Equal(t, 10, cfg.Memory.MaxTurns)
	assert.Equal(t, "data/knowledge", cfg.Knowledge.DocsPath)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
