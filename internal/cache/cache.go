// Package cache provides a persistent, typed key-value cache on top of bbolt.
// Every entry is stamped with its creation time and checked against the
// store's Expiration whenever it is read.
package cache

import (
	"errors"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/leonardcser/dict-mcp/internal/logger"
)

// Options configures a Store.
type Options[K, V any] struct {
	// Bucket is the name of the Bolt bucket to use. Defaults to "cache".
	Bucket string
	// Expiration applies to every entry of the store.
	Expiration Expiration
	// Keys and Values encode keys and values. Decode must not retain its input.
	Keys   Codec[K]
	Values Codec[V]
	// Now is the clock used to stamp and age entries. Defaults to time.Now.
	Now func() time.Time
	// Timeout bounds the wait for bolt's file lock on private opens.
	// Shared opens use the registry's timeout.
	Timeout time.Duration
	// MustExist makes opening fail with ErrOpen instead of creating the file.
	MustExist bool
}

// Store is a persistent KV cache with expiry-on-read semantics.
// It is safe for concurrent use by multiple goroutines.
type Store[K, V any] struct {
	h      *handle
	bucket []byte
	expiry Expiration
	keys   Codec[K]
	values Codec[V]
	now    func() time.Time

	closeOnce sync.Once
	closeErr  error
}

// Open opens (creating if needed) a Store with its own bolt handle. Opening a
// path that is already open elsewhere fails with ErrOpen once the lock
// timeout elapses.
func Open[K, V any](path string, opts Options[K, V]) (*Store[K, V], error) {
	h, err := openHandle(path, opts.Timeout, opts.MustExist)
	if err != nil {
		return nil, err
	}
	h.refs = 1
	h.release = closePrivate
	s, err := newStore(h, opts)
	if err != nil {
		_ = h.db.Close()
		return nil, err
	}
	return s, nil
}

// OpenShared opens a Store through r, reusing the handle if the path is
// already open in this process. Close returns the lease.
func OpenShared[K, V any](r *Registry, path string, opts Options[K, V]) (*Store[K, V], error) {
	h, err := r.acquire(path, opts.MustExist)
	if err != nil {
		return nil, err
	}
	s, err := newStore(h, opts)
	if err != nil {
		_ = h.release(h)
		return nil, err
	}
	return s, nil
}

func newStore[K, V any](h *handle, opts Options[K, V]) (*Store[K, V], error) {
	if opts.Keys == nil || opts.Values == nil {
		return nil, fail(ErrCodec, errors.New("key and value codecs are required"), h.path)
	}
	bucket := []byte("cache")
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	h.mu.Lock()
	err := h.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	h.mu.Unlock()
	if err != nil {
		return nil, fail(ErrIO, err, h.path)
	}

	return &Store[K, V]{
		h:      h,
		bucket: bucket,
		expiry: opts.Expiration,
		keys:   opts.Keys,
		values: opts.Values,
		now:    now,
	}, nil
}

// Path returns the location of the underlying database file.
func (s *Store[K, V]) Path() string { return s.h.path }

// Expiration returns the store's expiration policy.
func (s *Store[K, V]) Expiration() Expiration { return s.expiry }

// Close releases the store's handle. It is safe to call more than once.
func (s *Store[K, V]) Close() error {
	if s == nil || s.h == nil {
		return nil
	}
	s.closeOnce.Do(func() { s.closeErr = s.h.release(s.h) })
	return s.closeErr
}

type readState int

const (
	missing readState = iota
	live
	expired
)

// Get returns the value for key if present and not expired. An expired
// entry is deleted before returning; failure to delete it is only logged.
func (s *Store[K, V]) Get(key K) (V, bool, error) {
	var zero V
	kb, err := s.key(key)
	if err != nil {
		return zero, false, err
	}
	v, state, err := s.read(kb)
	if err != nil {
		return zero, false, err
	}
	switch state {
	case live:
		return v, true, nil
	case expired:
		if err := s.evict(kb); err != nil {
			logger.Warnf("cache: [%s] failed to remove expired key %v: %v", s.h.path, key, err)
		}
	}
	return zero, false, nil
}

func (s *Store[K, V]) read(kb []byte) (V, readState, error) {
	var (
		v     V
		state = missing
	)
	s.h.mu.RLock()
	defer s.h.mu.RUnlock()
	err := s.h.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get(kb)
		if raw == nil {
			return nil
		}
		created, payload, err := decodeEntry(raw)
		if err != nil {
			return fail(ErrCodec, err, s.h.path)
		}
		if s.expiry.Expired(created, s.now()) {
			state = expired
			return nil
		}
		if v, err = s.values.Decode(payload); err != nil {
			return fail(ErrCodec, err, s.h.path)
		}
		state = live
		return nil
	})
	if err != nil {
		return v, missing, s.classify(err)
	}
	return v, state, nil
}

// evict deletes kb if it is still expired. The check is repeated under the
// write lock so a value written after the read is never removed.
func (s *Store[K, V]) evict(kb []byte) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	err := s.h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		raw := b.Get(kb)
		if raw == nil {
			return nil
		}
		created, _, err := decodeEntry(raw)
		if err != nil || !s.expiry.Expired(created, s.now()) {
			return nil
		}
		return b.Delete(kb)
	})
	return s.classify(err)
}

// Insert stores value under key unless a live value is already present, in
// which case the existing mapping wins and the call is a no-op.
func (s *Store[K, V]) Insert(key K, value V) error {
	kb, vb, err := s.encode(key, value)
	if err != nil {
		return err
	}

	var exists bool
	s.h.mu.Lock()
	err = s.h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		now := s.now()
		if raw := b.Get(kb); raw != nil {
			created, _, err := decodeEntry(raw)
			if err != nil {
				return fail(ErrCodec, err, s.h.path)
			}
			if !s.expiry.Expired(created, now) {
				exists = true
				return nil
			}
		}
		return b.Put(kb, encodeEntry(now, vb))
	})
	s.h.mu.Unlock()
	if err != nil {
		return s.classify(err)
	}
	if exists {
		logger.Debugf("cache: [%s] value already exists for key %v", s.h.path, key)
	}
	return nil
}

// Put stores value under key unconditionally and restarts its lifetime.
func (s *Store[K, V]) Put(key K, value V) error {
	kb, vb, err := s.encode(key, value)
	if err != nil {
		return err
	}
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	err = s.h.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(kb, encodeEntry(s.now(), vb))
	})
	return s.classify(err)
}

// Modify atomically replaces the value under key with fn's result. fn
// receives the current live value, if any. An error from fn aborts the
// write and is returned unchanged.
func (s *Store[K, V]) Modify(key K, fn func(current V, found bool) (V, error)) error {
	kb, err := s.key(key)
	if err != nil {
		return err
	}

	var fnErr error
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	err = s.h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		now := s.now()

		var (
			current V
			found   bool
		)
		if raw := b.Get(kb); raw != nil {
			created, payload, err := decodeEntry(raw)
			if err != nil {
				return fail(ErrCodec, err, s.h.path)
			}
			if !s.expiry.Expired(created, now) {
				if current, err = s.values.Decode(payload); err != nil {
					return fail(ErrCodec, err, s.h.path)
				}
				found = true
			}
		}

		next, err := fn(current, found)
		if err != nil {
			fnErr = err
			return err
		}
		vb, err := s.values.Encode(next)
		if err != nil {
			return fail(ErrCodec, err, s.h.path)
		}
		return b.Put(kb, encodeEntry(now, vb))
	})
	if fnErr != nil {
		return fnErr
	}
	return s.classify(err)
}

// Remove deletes key. A missing key is not an error.
func (s *Store[K, V]) Remove(key K) error {
	kb, err := s.key(key)
	if err != nil {
		return err
	}
	logger.Debugf("cache: [%s] removing key %v", s.h.path, key)
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	err = s.h.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(kb)
	})
	return s.classify(err)
}

// GetAll scans the whole store and returns the live entries in key order.
// Expired entries are skipped but left in place.
func (s *Store[K, V]) GetAll() (GetManyResult[K, V], error) {
	var out GetManyResult[K, V]
	s.h.mu.RLock()
	defer s.h.mu.RUnlock()
	err := s.h.db.View(func(tx *bolt.Tx) error {
		now := s.now()
		return tx.Bucket(s.bucket).ForEach(func(k, raw []byte) error {
			created, payload, err := decodeEntry(raw)
			if err != nil {
				return fail(ErrCodec, err, s.h.path)
			}
			if s.expiry.Expired(created, now) {
				return nil
			}
			key, err := s.keys.Decode(k)
			if err != nil {
				return fail(ErrCodec, err, s.h.path)
			}
			value, err := s.values.Decode(payload)
			if err != nil {
				return fail(ErrCodec, err, s.h.path)
			}
			out.Found = append(out.Found, Pair[K, V]{Key: key, Value: value})
			out.FoundKeys = append(out.FoundKeys, key)
			return nil
		})
	})
	if err != nil {
		return GetManyResult[K, V]{}, s.classify(err)
	}
	return out, nil
}

// Len returns the number of stored entries, expired ones included.
func (s *Store[K, V]) Len() (int, error) {
	var n int
	s.h.mu.RLock()
	defer s.h.mu.RUnlock()
	err := s.h.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return n, s.classify(err)
}

// key encodes k. bolt cannot store an empty key, so one is a codec error.
func (s *Store[K, V]) key(k K) ([]byte, error) {
	kb, err := s.keys.Encode(k)
	if err != nil {
		return nil, fail(ErrCodec, err, s.h.path)
	}
	if len(kb) == 0 {
		return nil, fail(ErrCodec, errEmptyKey, s.h.path)
	}
	return kb, nil
}

func (s *Store[K, V]) encode(key K, value V) ([]byte, []byte, error) {
	kb, err := s.key(key)
	if err != nil {
		return nil, nil, err
	}
	vb, err := s.values.Encode(value)
	if err != nil {
		return nil, nil, fail(ErrCodec, err, s.h.path)
	}
	return kb, vb, nil
}

// classify tags untyped bolt errors as ErrIO.
func (s *Store[K, V]) classify(err error) error {
	if err == nil || errors.Is(err, ErrCodec) || errors.Is(err, ErrIO) {
		return err
	}
	return fail(ErrIO, err, s.h.path)
}
