package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/leonardcser/dict-mcp/internal/logger"
)

// DefaultOpenTimeout bounds how long Open waits for bolt's file lock before
// reporting the file as held by someone else.
const DefaultOpenTimeout = 1 * time.Second

// handle is one open bolt database. mu is the per-store access lock: every
// typed Store over the same handle shares it.
type handle struct {
	path string
	db   *bolt.DB
	mu   sync.RWMutex

	refs    int
	release func(*handle) error
}

func openHandle(path string, timeout time.Duration, mustExist bool) (*handle, error) {
	if mustExist {
		if _, err := os.Stat(path); err != nil {
			return nil, fail(ErrOpen, err, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fail(ErrOpen, err, path)
	}
	if timeout <= 0 {
		timeout = DefaultOpenTimeout
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fail(ErrOpen, err, path)
	}
	return &handle{path: path, db: db}, nil
}

func closePrivate(h *handle) error { return h.db.Close() }

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Timeout bounds the wait for bolt's file lock. Defaults to DefaultOpenTimeout.
	Timeout time.Duration
}

// Registry hands out shared handles keyed by path so a database file is
// opened at most once per process. Opens are serialized; a handle is closed
// when its last Store is closed, or on Shutdown.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*handle
	timeout time.Duration
	closed  bool
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts RegistryOptions) *Registry {
	return &Registry{
		handles: make(map[string]*handle),
		timeout: opts.Timeout,
	}
}

func registryKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (r *Registry) acquire(path string, mustExist bool) (*handle, error) {
	key := registryKey(path)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fail(ErrClosed, errors.New("shutdown"), path)
	}
	if h, ok := r.handles[key]; ok {
		h.refs++
		return h, nil
	}
	h, err := openHandle(key, r.timeout, mustExist)
	if err != nil {
		return nil, err
	}
	h.refs = 1
	h.release = r.release
	r.handles[key] = h
	logger.Debugf("registry: opened %s", key)
	return h, nil
}

func (r *Registry) release(h *handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.refs <= 0 {
		// already closed by Shutdown
		return nil
	}
	h.refs--
	if h.refs > 0 {
		return nil
	}
	if r.handles[h.path] == h {
		delete(r.handles, h.path)
	}
	logger.Debugf("registry: closing %s", h.path)
	if err := h.db.Close(); err != nil {
		return fail(ErrIO, err, h.path)
	}
	return nil
}

// Len reports the number of handles currently open.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Shutdown closes every open handle and rejects further opens. Stores still
// holding a lease must not be used afterwards.
func (r *Registry) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	var errs []error
	for key, h := range r.handles {
		h.mu.Lock()
		if err := h.db.Close(); err != nil {
			errs = append(errs, fail(ErrIO, err, key))
		}
		h.refs = 0
		h.mu.Unlock()
		delete(r.handles, key)
	}
	return errors.Join(errs...)
}
