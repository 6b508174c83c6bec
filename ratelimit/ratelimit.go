// Package ratelimit provides a sliding window rate limiter for the auth
// endpoints.
package ratelimit

import (
	"sync"
	"time"
)

// bucket counts requests in the current and previous fixed windows. The
// effective rate is the previous count weighted by window overlap plus the
// current count, which approximates a true sliding window without keeping
// per-request timestamps.
type bucket struct {
	windowStart time.Time
	current     int
	previous    int
}

// Limiter tracks request rates per key and rejects requests over the limit.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration

	lastSweep time.Time
}

// New creates a new rate limiter allowing limit requests per window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		buckets:   make(map[string]*bucket),
		limit:     limit,
		window:    window,
		lastSweep: time.Now(),
	}
}

// Allow reports whether a request for the given key should proceed, and
// counts it if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > 10*l.window {
		l.sweep(now)
		l.lastSweep = now
	}

	b := l.buckets[key]
	if b == nil {
		b = &bucket{windowStart: now}
		l.buckets[key] = b
	}
	b.roll(now, l.window)

	if b.weighted(now, l.window) >= float64(l.limit) {
		return false
	}
	b.current++
	return true
}

// Reset clears the rate limit for a key, used after a successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// roll advances the bucket's windows to cover now.
func (b *bucket) roll(now time.Time, window time.Duration) {
	elapsed := now.Sub(b.windowStart)
	switch {
	case elapsed >= 2*window:
		b.windowStart = now
		b.previous = 0
		b.current = 0
	case elapsed >= window:
		b.windowStart = b.windowStart.Add(window)
		b.previous = b.current
		b.current = 0
	}
}

// weighted returns the sliding-window request estimate. Must follow roll.
func (b *bucket) weighted(now time.Time, window time.Duration) float64 {
	overlap := 1 - float64(now.Sub(b.windowStart))/float64(window)
	if overlap < 0 {
		overlap = 0
	}
	return float64(b.previous)*overlap + float64(b.current)
}

// sweep drops buckets idle for two full windows. Must hold mu.
func (l *Limiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.windowStart) >= 2*l.window {
			delete(l.buckets, key)
		}
	}
}
