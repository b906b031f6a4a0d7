package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type attemptSpy struct {
	outcomes []string
}

func (a *attemptSpy) ObserveAttempt(outcome string) { a.outcomes = append(a.outcomes, outcome) }

// newTestClient returns a client whose cooldown waits are recorded instead
// of slept.
func newTestClient(opts ...Option) (*Client, *[]time.Duration) {
	c := NewClient(nil, opts...)
	var waits []time.Duration
	c.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return c, &waits
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	var accept atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept.Store(r.Header.Get("Accept"))
		if hits.Add(1) <= 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"timeSeries":[]}`))
	}))
	defer srv.Close()

	spy := &attemptSpy{}
	c, waits := newTestClient(WithMetrics(spy))

	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.JSONEq(t, `{"timeSeries":[]}`, string(body))
	require.Equal(t, int32(4), hits.Load())
	require.Equal(t, "application/json", accept.Load())
	require.Equal(t, []time.Duration{DefaultCooldown, DefaultCooldown, DefaultCooldown}, *waits)
	require.Equal(t, []string{"status_5xx", "status_5xx", "status_5xx", "success"}, spy.outcomes)
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, waits := newTestClient()
	_, err := c.Fetch(context.Background(), srv.URL)

	require.Equal(t, int32(4), hits.Load(), "no fifth attempt")
	require.Len(t, *waits, 3)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, 4, fetchErr.Attempts)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	require.True(t, statusErr.Temporary())
	require.Equal(t, "500, message='Internal Server Error', url='"+srv.URL+"'", statusErr.Error())
}

func TestFetchRetriesClientErrorsToo(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := newTestClient(WithRetry(2, time.Millisecond))
	_, err := c.Fetch(context.Background(), srv.URL)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 404, statusErr.StatusCode)
	require.False(t, statusErr.Temporary())
	require.Equal(t, int32(3), hits.Load())
}

func TestFetchRejectsInvalidJSON(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	spy := &attemptSpy{}
	c, _ := newTestClient(WithMetrics(spy))
	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, `{}`, string(body))
	require.Equal(t, []string{"invalid_json", "success"}, spy.outcomes)
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, _ := newTestClient(WithRetry(1, 0))
	_, err := c.Fetch(context.Background(), url)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, url, transportErr.URL)
}

func TestFetchStopsOnCancelledContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	// Real sleep with a long cooldown; the context deadline must cut it short.
	c := NewClient(srv.Client(), WithRetry(3, time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := c.Fetch(ctx, srv.URL)
	require.Less(t, time.Since(started), 10*time.Second)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, int32(1), hits.Load())
}

func TestFetchCircuitBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cb := NewCircuitBreaker("smhi", 2, time.Minute)
	c, _ := newTestClient(WithRetry(3, 0), WithCircuitBreaker(cb))

	_, err := c.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.Equal(t, int32(2), hits.Load())

	_, err = c.Fetch(context.Background(), srv.URL)
	require.True(t, errors.Is(err, ErrCircuitOpen))
	require.Equal(t, int32(2), hits.Load(), "open breaker issues no request")
}
