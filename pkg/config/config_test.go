package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "test.yml")
	require.NoError(t, os.WriteFile(p, []byte("env: test\nhttp:\n  port: 8000\nregistry:\n  agent:\n    min_timeout: 10s\n"), 0o644))

	conf := NewConfig(p)
	assert.Equal(t, "test", conf.GetString("env"))
	assert.Equal(t, 8000, conf.GetInt("http.port"))
	assert.Equal(t, "10s", conf.GetString("registry.agent.min_timeout"))
}

func TestNewConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "override.yml")
	require.NoError(t, os.WriteFile(p, []byte("env: override\n"), 0o644))
	t.Setenv("APP_CONF", p)

	conf := NewConfig("does-not-exist.yml")
	assert.Equal(t, "override", conf.GetString("env"))
}
