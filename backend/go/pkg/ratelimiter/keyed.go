package ratelimiter

import (
	"time"

	"Concierge/backend/go/pkg/util"
)

// Keyed holds one limiter per key, typically a client IP. A limiter is dropped once it
// is older than the TTL or falls out of the LRU, and the key starts fresh on its next
// request.
type Keyed struct {
	limiters *util.LRUCache[string, RateLimiter]
	factory  func() RateLimiter
}

// NewKeyed creates a registry holding at most maxKeys limiters built by factory.
func NewKeyed(factory func() RateLimiter, maxKeys int, idleTTL time.Duration) (*Keyed, error) {
	cache, err := util.NewLRU[string, RateLimiter](util.CacheConfig{Capacity: maxKeys, TTL: idleTTL})
	if err != nil {
		return nil, err
	}
	return &Keyed{limiters: cache, factory: factory}, nil
}

// Allow consults the limiter of key, creating it on first use.
func (k *Keyed) Allow(key string) bool {
	return k.limiters.GetOrCreate(key, k.factory).Allow()
}

// Len is the number of keys currently tracked.
func (k *Keyed) Len() int {
	return k.limiters.Len()
}
