package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/i474232898/point-forecast/internal/forecast"
)

// Recorder is the Prometheus implementation of forecast.Recorder and
// providers.AttemptRecorder. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	fetchAttempts *prometheus.CounterVec
	requests      *prometheus.CounterVec
	errors        *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewRecorder creates a Recorder on its own registry, with the Go runtime
// and process collectors registered alongside.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "point_forecast_fetch_attempts_total",
			Help: "HTTP attempts against the forecast API by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "point_forecast_requests_total",
			Help: "Successful forecast calls by payload source (fetched or reused).",
		}, []string{"family", "class", "source"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "point_forecast_errors_total",
			Help: "Failed forecast calls.",
		}, []string{"family", "class"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "point_forecast_duration_seconds",
			Help:    "Duration of successful forecast calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"family", "class"}),
	}

	registry.MustRegister(r.fetchAttempts)
	registry.MustRegister(r.requests)
	registry.MustRegister(r.errors)
	registry.MustRegister(r.duration)

	return r
}

// Registry returns the registry backing /metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveAttempt counts one HTTP attempt.
func (r *Recorder) ObserveAttempt(outcome string) {
	if r == nil {
		return
	}
	r.fetchAttempts.WithLabelValues(outcome).Inc()
}

// ObserveRequest counts one successful forecast call.
func (r *Recorder) ObserveRequest(family forecast.Family, class forecast.Class, reused bool) {
	if r == nil {
		return
	}
	source := "fetched"
	if reused {
		source = "reused"
	}
	r.requests.WithLabelValues(string(family), string(class), source).Inc()
}

// ObserveError counts one failed forecast call.
func (r *Recorder) ObserveError(family forecast.Family, class forecast.Class) {
	if r == nil {
		return
	}
	r.errors.WithLabelValues(string(family), string(class)).Inc()
}

// ObserveDuration records how long a forecast call took.
func (r *Recorder) ObserveDuration(family forecast.Family, class forecast.Class, d time.Duration) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(string(family), string(class)).Observe(d.Seconds())
}
