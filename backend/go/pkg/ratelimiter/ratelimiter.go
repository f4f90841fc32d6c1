// Package ratelimiter provides request rate limiting algorithms and a per-client registry.
package ratelimiter

import "time"

// RateLimiter is the interface for rate limiting.
// It defines a single method, Allow, which returns true if a request is allowed,
// and false otherwise.
type RateLimiter interface {
	// Allow returns true if the request is allowed, otherwise returns false.
	Allow() bool
}

// Clock returns the current time. Limiters use time.Now unless one is supplied.
type Clock func() time.Time
