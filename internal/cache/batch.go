package cache

import (
	"context"

	"go.trai.ch/zerr"
)

// Pair is a key with its value.
type Pair[K, V any] struct {
	Key   K
	Value V
}

// GetManyResult partitions the keys of a batch lookup. Found and FoundKeys
// have the same length and order; FoundKeys and NotFoundKeys together hold
// every requested key exactly once per request.
type GetManyResult[K, V any] struct {
	Found        []Pair[K, V]
	FoundKeys    []K
	NotFoundKeys []K
}

// GetMany looks keys up one at a time, in order, and partitions them into
// found and not found. It stops at the first failure.
func (s *Store[K, V]) GetMany(ctx context.Context, keys []K) (GetManyResult[K, V], error) {
	out := GetManyResult[K, V]{
		Found:        make([]Pair[K, V], 0, len(keys)/2),
		FoundKeys:    make([]K, 0, len(keys)/2),
		NotFoundKeys: make([]K, 0, len(keys)/2),
	}
	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return GetManyResult[K, V]{}, err
		}
		value, ok, err := s.Get(key)
		if err != nil {
			return GetManyResult[K, V]{}, zerr.With(zerr.Wrap(err, "aggregating many results"), "index", i)
		}
		if !ok {
			out.NotFoundKeys = append(out.NotFoundKeys, key)
			continue
		}
		out.FoundKeys = append(out.FoundKeys, key)
		out.Found = append(out.Found, Pair[K, V]{Key: key, Value: value})
	}
	return out, nil
}

// Update inserts every pair one at a time, in order, with Insert's
// insert-if-absent semantics. Re-running it after a partial failure is safe.
func (s *Store[K, V]) Update(ctx context.Context, pairs []Pair[K, V]) error {
	for i, p := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Insert(p.Key, p.Value); err != nil {
			return zerr.With(zerr.Wrap(err, "updating results"), "index", i)
		}
	}
	return nil
}
