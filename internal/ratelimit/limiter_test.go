package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func TestShouldFetchCooldown(t *testing.T) {
	l := New(0)
	require.Equal(t, DefaultCooldown, l.Cooldown)

	require.True(t, l.ShouldFetch("a", t0))
	require.False(t, l.ShouldFetch("a", t0.Add(5*time.Second)))
	require.False(t, l.ShouldFetch("a", t0.Add(59*time.Second)))
	require.True(t, l.ShouldFetch("a", t0.Add(60*time.Second)), "exactly one cooldown later is allowed")
	require.False(t, l.ShouldFetch("a", t0.Add(61*time.Second)))

	last, ok := l.LastFetch("a")
	require.True(t, ok)
	require.Equal(t, t0.Add(60*time.Second), last)
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(time.Minute)
	require.True(t, l.ShouldFetch("pmp3g/daily/16/58", t0))
	require.True(t, l.ShouldFetch("pmp3g/hourly/16/58", t0))
	require.True(t, l.ShouldFetch("pmp3g/daily/17/58", t0))
	require.Equal(t, 3, l.Len())
}

func TestReserveCancelRestoresState(t *testing.T) {
	l := New(time.Minute)

	cancel, ok := l.Reserve("k", t0)
	require.True(t, ok)
	cancel()
	_, seen := l.LastFetch("k")
	require.False(t, seen, "cancelled first reservation leaves no trace")

	require.True(t, l.ShouldFetch("k", t0))
	cancel, ok = l.Reserve("k", t0.Add(2*time.Minute))
	require.True(t, ok)
	cancel()
	cancel()
	last, _ := l.LastFetch("k")
	require.Equal(t, t0, last, "cancel restores the previous fetch time")
}

func TestStaleCancelIsIgnored(t *testing.T) {
	l := New(time.Minute)

	stale, ok := l.Reserve("k", t0)
	require.True(t, ok)
	// A later reservation for the same key wins.
	l.lastFetch["k"] = t0.Add(time.Minute)
	stale()

	last, _ := l.LastFetch("k")
	require.Equal(t, t0.Add(time.Minute), last)
}

func TestReserveConcurrent(t *testing.T) {
	l := New(time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := l.Reserve("k", t0); ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, granted)
}
