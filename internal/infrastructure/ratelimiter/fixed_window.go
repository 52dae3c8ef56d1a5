package ratelimiter

import (
	"sync"
	"time"
)

type windowCount struct {
	count   int
	resetAt time.Time
}

// FixedWindow caps how many commands one user may issue per aligned window.
// It complements the token bucket, which is keyed by client address.
type FixedWindow struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	counts    map[string]*windowCount
	now       func() time.Time
	stop      chan struct{}
	closeOnce sync.Once
}

func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	fw := &FixedWindow{
		limit:  limit,
		window: window,
		counts: make(map[string]*windowCount),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go fw.sweep()
	return fw
}

// Allow counts one event for key. When the limit is hit it returns false and
// the time left until the window resets.
func (fw *FixedWindow) Allow(key string) (bool, time.Duration) {
	now := fw.now()

	fw.mu.Lock()
	defer fw.mu.Unlock()

	c, ok := fw.counts[key]
	if !ok || !now.Before(c.resetAt) {
		fw.counts[key] = &windowCount{count: 1, resetAt: now.Truncate(fw.window).Add(fw.window)}
		return true, 0
	}

	if c.count >= fw.limit {
		return false, c.resetAt.Sub(now)
	}
	c.count++
	return true, 0
}

func (fw *FixedWindow) sweep() {
	ticker := time.NewTicker(fw.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fw.removeExpired()
		case <-fw.stop:
			return
		}
	}
}

func (fw *FixedWindow) removeExpired() {
	now := fw.now()

	fw.mu.Lock()
	defer fw.mu.Unlock()

	for key, c := range fw.counts {
		if !now.Before(c.resetAt) {
			delete(fw.counts, key)
		}
	}
}

func (fw *FixedWindow) Close() {
	fw.closeOnce.Do(func() {
		close(fw.stop)
	})
}
