// Package forecasttest builds SMHI payloads and scripted fetchers for tests.
package forecasttest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/point-forecast/internal/forecast"
)

// ApprovedTime is stamped on every generated payload.
const ApprovedTime = "2025-05-01T10:04:31Z"

// Times returns hourly valid times from start followed by tail times spaced
// step apart.
func Times(start time.Time, hourly, tail int, step time.Duration) []time.Time {
	times := make([]time.Time, 0, hourly+tail)
	t := start
	for i := 0; i < hourly; i++ {
		times = append(times, t)
		t = t.Add(time.Hour)
	}
	t = t.Add(-time.Hour)
	for i := 0; i < tail; i++ {
		t = t.Add(step)
		times = append(times, t)
	}
	return times
}

// PointSeries builds a point forecast with one entry per valid time, keeping
// each time's UTC offset. Entry i
// has temperature i, and pmean equal to the whole hours since the previous
// entry, so every normalized mean precipitation is 1 mm/h.
func PointSeries(validTimes ...time.Time) forecast.RawSeries {
	raw := forecast.RawSeries{ApprovedTime: ApprovedTime, ReferenceTime: ApprovedTime}
	var previous time.Time
	for i, vt := range validTimes {
		gap := 1.0
		if !previous.IsZero() {
			gap = vt.Sub(previous).Hours()
		}
		previous = vt
		raw.TimeSeries = append(raw.TimeSeries, forecast.RawEntry{
			ValidTime: vt.Format(time.RFC3339),
			Parameters: params(map[string]float64{
				"t": float64(i), "r": 80, "msl": 1013.2, "tstm": 1,
				"tcc_mean": 4, "lcc_mean": 2, "mcc_mean": 1, "hcc_mean": 8,
				"pcat": 3, "wd": 225, "ws": 4.2, "vis": 50, "gust": 9.1,
				"pmin": 0, "pmean": gap, "pmedian": gap, "pmax": 2 * gap,
				"spp": -9, "Wsymb2": 3,
			}),
		})
	}
	return raw
}

// PointPayload is PointSeries encoded as JSON.
func PointPayload(validTimes ...time.Time) []byte {
	return mustJSON(PointSeries(validTimes...))
}

// FirePayload builds a fire forecast. Hourly payloads carry prec1h, daily
// payloads prec24h.
func FirePayload(hourly bool, validTimes ...time.Time) []byte {
	raw := forecast.RawSeries{ApprovedTime: ApprovedTime, ReferenceTime: ApprovedTime}
	for i, vt := range validTimes {
		values := map[string]float64{
			"fwiindex": 2, "fwi": 7.5, "isi": 2.1, "bui": 18.4, "ffmc": 84.2,
			"dmc": 12.3, "dc": 140.6, "t": float64(i), "wd": 270, "ws": 3.5, "r": 55,
		}
		if hourly {
			values["prec1h"] = 0.2
			values["grassfire"] = 3
		} else {
			values["prec24h"] = 4.8
			values["rn24h"] = 4.1
			values["forestdry"] = 2
		}
		raw.TimeSeries = append(raw.TimeSeries, forecast.RawEntry{
			ValidTime:  vt.Format(time.RFC3339),
			Parameters: params(values),
		})
	}
	return mustJSON(raw)
}

func params(values map[string]float64) []forecast.RawParameter {
	out := make([]forecast.RawParameter, 0, len(values))
	for name, v := range values {
		out = append(out, forecast.RawParameter{Name: name, Values: []float64{v}})
	}
	return out
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// ErrNoResponse is returned by a Fetcher with nothing scripted.
var ErrNoResponse = errors.New("forecasttest: no scripted response")

// Fetcher is a scripted forecast.Fetcher. Each call pops the next response;
// once they run out the last one repeats.
type Fetcher struct {
	mu        sync.Mutex
	responses []Response
	urls      []string
	delay     time.Duration
}

// Response is one scripted Fetch result.
type Response struct {
	Body []byte
	Err  error
}

// NewFetcher returns a Fetcher that replays responses in order.
func NewFetcher(responses ...Response) *Fetcher {
	return &Fetcher{responses: responses}
}

// SetDelay makes every Fetch take at least d, like a slow upstream.
func (f *Fetcher) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Fetch implements forecast.Fetcher. The call is recorded before the delay,
// and the delay is cut short by ctx.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	delay := f.delay
	var r Response
	ok := len(f.responses) > 0
	if ok {
		r = f.responses[0]
		if len(f.responses) > 1 {
			f.responses = f.responses[1:]
		}
	}
	f.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if !ok {
		return nil, ErrNoResponse
	}
	return r.Body, r.Err
}

// Calls returns the number of Fetch calls so far.
func (f *Fetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}

// URLs returns every URL fetched, in order.
func (f *Fetcher) URLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at t.
func NewClock(t time.Time) *Clock { return &Clock{now: t} }

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
