package ratelimit

import (
	"sync"
	"time"
)

// FixedWindow is a single-process limiter used when redis is not
// configured. Windows are tracked per key in memory, so counts reset on
// restart and are not shared across instances.
type FixedWindow struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	buckets map[string]*windowState

	now func() time.Time
}

type windowState struct {
	start time.Time
	count int
}

func NewFixedWindow(window time.Duration, limit int) *FixedWindow {
	if window <= 0 {
		window = time.Second
	}
	if limit <= 0 {
		limit = 1
	}
	return &FixedWindow{
		window:  window,
		limit:   limit,
		buckets: make(map[string]*windowState),
		now:     time.Now,
	}
}

// Allow takes one slot from the key's current window.
func (w *FixedWindow) Allow(key string) bool {
	if w == nil {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	state, ok := w.buckets[key]
	if !ok || now.Sub(state.start) >= w.window {
		w.buckets[key] = &windowState{start: now, count: 1}
		w.compact(now)
		return true
	}

	if state.count >= w.limit {
		return false
	}
	state.count++
	return true
}

// compact drops stale windows so the map does not grow with one entry per
// user forever. Called under the lock.
func (w *FixedWindow) compact(now time.Time) {
	if len(w.buckets) < 4096 {
		return
	}
	for key, state := range w.buckets {
		if now.Sub(state.start) >= w.window {
			delete(w.buckets, key)
		}
	}
}
