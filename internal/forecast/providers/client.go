package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the number of attempts after the first one.
	DefaultRetries = 3
	// DefaultCooldown is the fixed wait before each retry.
	DefaultCooldown = 7 * time.Second
)

// RetryConfig controls the fixed-interval retry loop.
type RetryConfig struct {
	Retries  int
	Cooldown time.Duration
}

// AttemptRecorder observes individual HTTP attempts.
type AttemptRecorder interface {
	ObserveAttempt(outcome string)
}

// Client fetches JSON documents with bounded retries and an optional circuit
// breaker. It implements forecast.Fetcher.
type Client struct {
	httpClient *http.Client
	retry      RetryConfig
	circuit    *gobreaker.CircuitBreaker
	metrics    AttemptRecorder
	logger     *zap.Logger

	// wait sleeps between attempts; replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithRetry overrides the retry count and cooldown.
func WithRetry(retries int, cooldown time.Duration) Option {
	return func(c *Client) {
		c.retry = RetryConfig{Retries: retries, Cooldown: cooldown}
	}
}

// WithCircuitBreaker guards every attempt with cb.
func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) { c.circuit = cb }
}

// WithMetrics records attempt outcomes.
func WithMetrics(m AttemptRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client. A nil httpClient gets one with DefaultTimeout.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	c := &Client{
		httpClient: httpClient,
		retry:      RetryConfig{Retries: DefaultRetries, Cooldown: DefaultCooldown},
		logger:     zap.NewNop(),
		wait:       sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewCircuitBreaker returns a breaker that opens after maxFailures
// consecutive failed attempts and stays open for openTimeout.
func NewCircuitBreaker(name string, maxFailures uint32, openTimeout time.Duration) *gobreaker.CircuitBreaker {
	if maxFailures == 0 {
		maxFailures = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
}

// Fetch GETs url and returns its JSON body. Any failed attempt, whatever the
// status code, is retried after the cooldown until the retries are used up.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.httpClient == nil {
		return nil, errNoHTTPClient
	}
	if c.retry.Retries < 0 {
		return nil, fmt.Errorf("invalid retry count %d", c.retry.Retries)
	}

	maxAttempts := c.retry.Retries + 1
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &FetchError{URL: url, Attempts: attempt - 1, Err: err}
		}

		c.logger.Debug("fetching", zap.String("url", url), zap.Int("attempt", attempt))
		body, err := c.attempt(ctx, url)
		if err == nil {
			c.observe("success")
			return body, nil
		}

		if errors.Is(err, ErrCircuitOpen) {
			c.observe("circuit_open")
			return nil, &FetchError{URL: url, Attempts: attempt - 1, Err: err}
		}
		c.observe(outcome(err))

		if attempt >= maxAttempts {
			c.logger.Warn("fetch failed", zap.String("url", url), zap.Int("attempts", attempt), zap.Error(err))
			return nil, &FetchError{URL: url, Attempts: attempt, Err: err}
		}

		c.logger.Debug("retrying fetch",
			zap.String("url", url),
			zap.Int("retry", attempt),
			zap.Duration("cooldown", c.retry.Cooldown),
			zap.Error(err))
		if werr := c.wait(ctx, c.retry.Cooldown); werr != nil {
			return nil, &FetchError{URL: url, Attempts: attempt, Err: werr}
		}
	}
}

func (c *Client) attempt(ctx context.Context, url string) ([]byte, error) {
	if c.circuit == nil {
		return c.get(ctx, url)
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.get(ctx, url)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T from circuit breaker", result)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Reason: reason(resp), URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w (url %s)", ErrInvalidJSON, url)
	}
	return body, nil
}

// reason extracts the reason phrase from a status line such as
// "404 Not Found".
func reason(resp *http.Response) string {
	phrase := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if phrase == "" {
		phrase = http.StatusText(resp.StatusCode)
	}
	return phrase
}

func outcome(err error) string {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return "status_" + strconv.Itoa(statusErr.StatusCode/100) + "xx"
	case errors.Is(err, ErrInvalidJSON):
		return "invalid_json"
	default:
		return "transport_error"
	}
}

func (c *Client) observe(outcome string) {
	if c.metrics != nil {
		c.metrics.ObserveAttempt(outcome)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
