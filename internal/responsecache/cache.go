// Package responsecache memoizes composed replies for a short TTL.
package responsecache

import (
	"context"
	"time"
)

// DefaultTTL is how long a reply stays fresh.
const DefaultTTL = 120 * time.Second

// Value is a cached reply.
type Value struct {
	Text      string    `json:"text"`
	FollowUp  bool      `json:"followUp"`
	Outcome   string    `json:"outcome,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	// Degraded marks a reply produced while a dependency was failing.
	// It is returned to the caller but never stored.
	Degraded bool `json:"-"`
}

// Builder computes a reply on a cache miss.
type Builder func(ctx context.Context) (Value, error)

// Cache returns the stored value for key while it is fresh and otherwise
// calls build at most once per key at a time. Builder errors are returned
// and never cached.
type Cache interface {
	GetOrCompute(ctx context.Context, key string, build Builder) (Value, error)
}

func fresh(v Value, now time.Time, ttl time.Duration) bool {
	return now.Sub(v.CreatedAt) <= ttl
}
