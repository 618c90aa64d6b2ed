package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwStasiuk/JSON-Database-Engine-Project/config"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.StoreBackend)
	assert.Equal(t, "./data.json", cfg.StorePath)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "port: \"9090\"\nstore_backend: sqlite\nstore_path: /tmp/db.sqlite\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.StoreBackend)
	assert.Equal(t, "/tmp/db.sqlite", cfg.StorePath)
	// Untouched fields keep their defaults.
	assert.Equal(t, "*", cfg.AllowedOrigins)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\n"), 0o644))

	t.Setenv("PORT", "7070")
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "memory", cfg.StoreBackend)
}

func TestBadFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0o644))
	_, err = config.Load(path)
	assert.Error(t, err)
}
