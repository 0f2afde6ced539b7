package cache

import "time"

// Expiration decides whether an entry created at some instant is still live.
// The zero value never expires.
type Expiration struct {
	ttl     time.Duration
	bounded bool
}

// Never returns a policy under which entries live forever.
func Never() Expiration { return Expiration{} }

// After returns a policy under which entries expire once ttl has elapsed
// since they were written. Negative durations are treated as zero.
func After(ttl time.Duration) Expiration {
	if ttl < 0 {
		ttl = 0
	}
	return Expiration{ttl: ttl, bounded: true}
}

// TTL reports the lifetime and whether the policy expires at all.
func (e Expiration) TTL() (time.Duration, bool) { return e.ttl, e.bounded }

// Expired reports whether an entry created at created is dead at now.
// An entry is dead from created+ttl onwards.
func (e Expiration) Expired(created, now time.Time) bool {
	if !e.bounded {
		return false
	}
	return !now.Before(created.Add(e.ttl))
}

func (e Expiration) String() string {
	if !e.bounded {
		return "never"
	}
	return "after " + e.ttl.String()
}
