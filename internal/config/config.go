// Package config resolves runtime settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"

	"github.com/leonardcser/dict-mcp/internal/cache"
	"github.com/leonardcser/dict-mcp/internal/dictionary"
)

const (
	EnvSocket      = "DICT_MCP_SOCK"
	EnvHome        = "DICT_MCP_HOME"
	EnvOpenTimeout = "DICT_MCP_OPEN_TIMEOUT"
)

type Config struct {
	// SocketPath is where the daemon listens.
	SocketPath string
	// Root is the dictionaries directory.
	Root string
	// OpenTimeout bounds the wait for a dictionary file lock.
	OpenTimeout time.Duration
}

// Load reads the process environment.
func Load() (Config, error) { return LoadFrom(os.Getenv) }

// LoadFrom reads settings through getenv, falling back to paths under
// ~/.cache/dict-mcp.
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Config{
		SocketPath:  getenv(EnvSocket),
		Root:        getenv(EnvHome),
		OpenTimeout: cache.DefaultOpenTimeout,
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = defaultSocketPath()
	}
	if cfg.Root == "" {
		root, err := dictionary.DefaultRoot()
		if err != nil {
			return Config{}, err
		}
		cfg.Root = root
	}
	if v := getenv(EnvOpenTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, zerr.With(zerr.New("invalid open timeout"), EnvOpenTimeout, v)
		}
		cfg.OpenTimeout = d
	}
	return cfg, nil
}

func defaultSocketPath() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".cache", "dict-mcp", "dict.sock")
}
