package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default fixed-window counter, suitable for the
// single-process deployment this service targets.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	count   int64
	resetAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, windowSize time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(windowSize)}
		s.windows[key] = w
	}
	w.count++

	// Opportunistic pruning keeps the map from growing with one-off IPs.
	if len(s.windows) > 4096 {
		for k, other := range s.windows {
			if now.After(other.resetAt) {
				delete(s.windows, k)
			}
		}
	}

	return w.count, w.resetAt, nil
}
