package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/point-forecast/internal/forecast"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.ObserveAttempt("status_5xx")
	r.ObserveAttempt("status_5xx")
	r.ObserveAttempt("success")
	r.ObserveRequest(forecast.FamilyPoint, forecast.ClassDaily, false)
	r.ObserveRequest(forecast.FamilyPoint, forecast.ClassDaily, true)
	r.ObserveRequest(forecast.FamilyPoint, forecast.ClassDaily, true)
	r.ObserveError(forecast.FamilyFire, forecast.ClassHourly)
	r.ObserveDuration(forecast.FamilyPoint, forecast.ClassDaily, 20*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(r.fetchAttempts.WithLabelValues("status_5xx")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.fetchAttempts.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("pmp3g", "daily", "fetched")))
	require.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("pmp3g", "daily", "reused")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("fwif1g", "hourly")))
	require.Equal(t, 1, testutil.CollectAndCount(r.duration, "point_forecast_duration_seconds"))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.ObserveAttempt("success")
		r.ObserveRequest(forecast.FamilyPoint, forecast.ClassHourly, false)
		r.ObserveError(forecast.FamilyPoint, forecast.ClassHourly)
		r.ObserveDuration(forecast.FamilyPoint, forecast.ClassHourly, time.Second)
	})
	require.Nil(t, r.Registry())
}
