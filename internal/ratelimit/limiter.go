package ratelimit

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum spacing between two fetches of the same key.
const DefaultCooldown = 60 * time.Second

// Limiter gates fetches per key: a key may be fetched again once Cooldown has
// elapsed since its last recorded fetch. The zero value is not usable; use
// New.
type Limiter struct {
	Cooldown time.Duration

	mu        sync.Mutex
	lastFetch map[string]time.Time
}

// New returns a limiter with the given cooldown. A non-positive cooldown
// falls back to DefaultCooldown.
func New(cooldown time.Duration) *Limiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Limiter{
		Cooldown:  cooldown,
		lastFetch: make(map[string]time.Time),
	}
}

// ShouldFetch reports whether key may be fetched at now and, if so, records
// now as its last fetch.
func (l *Limiter) ShouldFetch(key string, now time.Time) bool {
	_, ok := l.Reserve(key, now)
	return ok
}

// Reserve is ShouldFetch returning a cancel func that restores the previous
// state of key, for callers whose fetch failed. Cancel is a no-op once a
// later reservation for the same key has been recorded.
func (l *Limiter) Reserve(key string, now time.Time) (cancel func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	previous, seen := l.lastFetch[key]
	if seen && now.Sub(previous) < l.Cooldown {
		return func() {}, false
	}
	l.lastFetch[key] = now

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if current, ok := l.lastFetch[key]; !ok || !current.Equal(now) {
				return
			}
			if seen {
				l.lastFetch[key] = previous
			} else {
				delete(l.lastFetch, key)
			}
		})
	}, true
}

// LastFetch returns the recorded fetch time for key.
func (l *Limiter) LastFetch(key string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.lastFetch[key]
	return t, ok
}

// Len returns the number of keys with a recorded fetch.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lastFetch)
}
