// Package logger is a small leveled logger backed by log/slog. It writes to a
// file once initialized and to stderr before that.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// Environment variables configuring the log file path and minimum level.
const (
	envLogPath  = "DICT_MCP_LOG"
	envLogLevel = "DICT_MCP_LOG_LEVEL"
)

var (
	mu      sync.RWMutex
	level   = new(slog.LevelVar)
	std     = newLogger(os.Stderr)
	logFile *os.File
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// InitFromEnv initializes the logger using DICT_MCP_LOG or a default path
// next to the executable.
func InitFromEnv() error {
	if lvl := os.Getenv(envLogLevel); lvl != "" {
		SetLevel(ParseLevel(lvl))
	}
	path := os.Getenv(envLogPath)
	if path == "" {
		if exePath, err := os.Executable(); err == nil {
			path = filepath.Join(filepath.Dir(exePath), "dict-mcp.log")
		} else {
			path = "./dict-mcp.log"
		}
	}
	return Init(path)
}

// Init points the logger at the file at path, creating parent directories
// and appending to existing content. Calling it again is a no-op.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		return nil
	}
	if err := ensureParentDir(path); err != nil {
		return zerr.With(zerr.Wrap(err, "creating log directory"), "path", path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "opening log file"), "path", path)
	}
	logFile = f
	std = newLogger(f)
	return nil
}

// SetOutput redirects logging to w. A nil w restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	mu.Lock()
	defer mu.Unlock()
	std = newLogger(w)
}

// SetLevel sets the minimum level that is written.
func SetLevel(l slog.Level) { level.Set(l) }

// ParseLevel maps debug, info, warn and error to slog levels; anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close closes the underlying log file, if open, and falls back to stderr.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	std = newLogger(os.Stderr)
	return err
}

// Debugf logs diagnostic messages.
func Debugf(format string, args ...any) { write(slog.LevelDebug, format, args...) }

// Infof logs informational messages.
func Infof(format string, args ...any) { write(slog.LevelInfo, format, args...) }

// Warnf logs warnings.
func Warnf(format string, args ...any) { write(slog.LevelWarn, format, args...) }

// Errorf logs errors.
func Errorf(format string, args ...any) { write(slog.LevelError, format, args...) }

// Error logs err with any metadata attached to its chain.
func Error(ctx context.Context, err error) {
	if err == nil {
		return
	}
	zerr.Log(ctx, current(), err)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

func write(l slog.Level, format string, args ...any) {
	lg := current()
	if !lg.Enabled(context.Background(), l) {
		return
	}
	lg.Log(context.Background(), l, fmt.Sprintf(format, args...))
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
