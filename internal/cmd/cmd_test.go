package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/point-forecast/internal/forecast"
	"github.com/i474232898/point-forecast/internal/forecast/forecasttest"
)

var start = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func TestParsePoint(t *testing.T) {
	lon, lat, err := parsePoint(" 16.15035 , 58.570784")
	require.NoError(t, err)
	require.Equal(t, "16.15035", lon)
	require.Equal(t, "58.570784", lat)

	for _, bad := range []string{"16.15035", ",58", "16,", ""} {
		_, _, err := parsePoint(bad)
		require.Error(t, err, bad)
	}
}

func TestQueryFlagsValidate(t *testing.T) {
	require.NoError(t, (&queryFlags{points: []string{"16,58"}, output: "json"}).validate())
	require.Error(t, (&queryFlags{points: []string{"16,58"}, output: "yaml"}).validate())
	require.Error(t, (&queryFlags{points: []string{"16;58"}, output: "table"}).validate())
}

func smhiServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	point := forecasttest.PointPayload(forecasttest.Times(start, 48, 18, 3*time.Hour)...)
	fire := forecasttest.FirePayload(false, forecasttest.Times(start, 1, 4, 24*time.Hour)...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if strings.Contains(r.URL.Path, "/fwif1g/") {
			_, _ = w.Write(fire)
			return
		}
		_, _ = w.Write(point)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("SMHI_BASE_URL", srv.URL)
	t.Setenv("FETCH_RETRIES", "0")
	t.Setenv("LOG_LEVEL", "error")
	return srv, &hits
}

func TestForecastCommandJSON(t *testing.T) {
	_, hits := smhiServer(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"forecast", "daily", "--point", "16.15035,58.570784", "--point", "17,59", "--output", "json"})
	require.NoError(t, rootCmd.Execute())

	var results []pointResult[forecast.Record]
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)
	require.Equal(t, forecast.Coordinate{Lon: "16.15035", Lat: "58.570784"}, results[0].Coordinate)
	require.Equal(t, forecast.Coordinate{Lon: "17", Lat: "59"}, results[1].Coordinate)
	require.Len(t, results[0].Records, 6)
	require.Equal(t, int32(2), hits.Load())
}

func TestFireCommandTable(t *testing.T) {
	smhiServer(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"fire", "daily", "--point", "16,58"})
	require.NoError(t, rootCmd.Execute())

	require.Contains(t, out.String(), "daily forecast, lon 16 lat 58")
	require.Contains(t, out.String(), "2025-05-05T10:00:00Z")
}
