package cmd

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/point-forecast/internal/archive"
	"github.com/i474232898/point-forecast/internal/config"
	"github.com/i474232898/point-forecast/internal/forecast"
	"github.com/i474232898/point-forecast/internal/forecast/providers"
	"github.com/i474232898/point-forecast/internal/metrics"
	"github.com/i474232898/point-forecast/internal/ratelimit"
	"github.com/i474232898/point-forecast/internal/store"
)

// stack is everything a facade needs, built once per process.
type stack struct {
	deps     forecast.Deps
	limiter  *ratelimit.Limiter
	payloads *store.MemoryStore
	recorder *metrics.Recorder
}

func newStack(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*stack, error) {
	recorder := metrics.NewRecorder()

	opts := []providers.Option{
		providers.WithRetry(cfg.FetchRetries, cfg.FetchRetryCooldown),
		providers.WithLogger(logger.Named("fetcher")),
		providers.WithMetrics(recorder),
	}
	if cfg.BreakerEnabled {
		opts = append(opts, providers.WithCircuitBreaker(
			providers.NewCircuitBreaker("smhi", cfg.BreakerMaxFailures, cfg.BreakerOpenTimeout)))
	}
	// Shared HTTP client for outbound SMHI calls.
	client := providers.NewClient(&http.Client{Timeout: cfg.FetchTimeout}, opts...)

	rt := &stack{
		limiter:  ratelimit.New(cfg.RateLimitCooldown),
		payloads: store.NewMemoryStore(),
		recorder: recorder,
	}
	rt.deps = forecast.Deps{
		Fetcher:   client,
		Gate:      rt.limiter,
		Payloads:  rt.payloads,
		Flights:   &singleflight.Group{},
		Endpoints: forecast.Endpoints{BaseURL: cfg.SMHIBaseURL},
		Metrics:   recorder,
		Logger:    logger.Named("forecast"),
	}

	if cfg.ArchiveEnabled() {
		storage, err := archive.NewMinIOClient(ctx, archive.MinIOConfig{
			Endpoint:  cfg.ArchiveEndpoint,
			AccessKey: cfg.ArchiveAccessKey,
			SecretKey: cfg.ArchiveSecretKey,
			Bucket:    cfg.ArchiveBucket,
			UseSSL:    cfg.ArchiveUseSSL,
		})
		if err != nil {
			return nil, err
		}
		rt.deps.Archiver = archive.NewArchiver(storage)
		logger.Info("archiving raw payloads",
			zap.String("endpoint", cfg.ArchiveEndpoint),
			zap.String("bucket", cfg.ArchiveBucket))
	}

	return rt, nil
}

func (rt *stack) stats() map[string]int {
	return map[string]int{
		"rate_limited_keys": rt.limiter.Len(),
		"stored_payloads":   rt.payloads.Len(),
	}
}
