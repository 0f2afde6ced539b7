package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardcser/dict-mcp/internal/cache"
	"github.com/leonardcser/dict-mcp/internal/config"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := config.LoadFrom(env(map[string]string{
		config.EnvSocket:      "/run/d.sock",
		config.EnvHome:        "/data/dicts",
		config.EnvOpenTimeout: "250ms",
	}))
	require.NoError(t, err)
	assert.Equal(t, config.Config{
		SocketPath:  "/run/d.sock",
		Root:        "/data/dicts",
		OpenTimeout: 250 * time.Millisecond,
	}, cfg)
}

func TestLoadFrom_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg, err := config.LoadFrom(env(nil))
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/.cache/dict-mcp/dict.sock", cfg.SocketPath)
	assert.Equal(t, "/home/tester/.cache/dict-mcp/dictionaries", cfg.Root)
	assert.Equal(t, cache.DefaultOpenTimeout, cfg.OpenTimeout)
}

func TestLoadFrom_BadTimeout(t *testing.T) {
	for _, v := range []string{"soon", "-1s", "0"} {
		_, err := config.LoadFrom(env(map[string]string{config.EnvOpenTimeout: v}))
		assert.Error(t, err, v)
	}
}
