package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leonardcser/dict-mcp/internal/cache"
)

func TestExpiration(t *testing.T) {
	t0 := time.Unix(1000, 0)
	tests := []struct {
		name    string
		policy  cache.Expiration
		now     time.Time
		expired bool
	}{
		{"never, far future", cache.Never(), t0.Add(100 * 365 * 24 * time.Hour), false},
		{"zero value is never", cache.Expiration{}, t0.Add(time.Hour), false},
		{"before deadline", cache.After(time.Minute), t0.Add(59 * time.Second), false},
		{"at deadline", cache.After(time.Minute), t0.Add(time.Minute), true},
		{"after deadline", cache.After(time.Minute), t0.Add(2 * time.Minute), true},
		{"zero ttl", cache.After(0), t0, true},
		{"negative ttl clamps to zero", cache.After(-time.Second), t0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, tt.policy.Expired(t0, tt.now))
		})
	}
}

func TestExpiration_TTL(t *testing.T) {
	d, ok := cache.Never().TTL()
	assert.False(t, ok)
	assert.Zero(t, d)

	d, ok = cache.After(time.Hour).TTL()
	assert.True(t, ok)
	assert.Equal(t, time.Hour, d)

	assert.Equal(t, "never", cache.Never().String())
	assert.Equal(t, "after 1h0m0s", cache.After(time.Hour).String())
}
