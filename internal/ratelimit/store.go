// Package ratelimit implements fixed-window request limiting for the public
// endpoints. Two window classes exist: a global per-IP budget across the API
// and a tighter one for login attempts, which runs before any credential
// check. Store failures fail open so a degraded limiter never takes the
// service down with it.
package ratelimit

import (
	"context"
	"time"
)

// Store counts hits per key within a fixed window. Implementations reset
// the count when the window elapses and report when the current window ends.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Result describes one limiter decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds; meaningful only when not allowed
}
