package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoPayload is returned when the gate is closed for a key but no payload
// was ever stored for it, so there is nothing to reuse.
var ErrNoPayload = errors.New("rate limited and no stored payload to reuse")

// Deps are the collaborators shared by facades. Fetcher is required. A nil
// Gate lets every call fetch; a nil PayloadStore disables reuse.
//
// Flights coalesces concurrent calls for the same key so that only the
// caller holding the gate fetches and the rest wait for its result. Facades
// sharing a Gate should share Flights too.
type Deps struct {
	Fetcher   Fetcher
	Gate      Gate
	Payloads  PayloadStore
	Flights   *singleflight.Group
	Endpoints Endpoints
	Clock     func() time.Time
	Archiver  Archiver
	Metrics   Recorder
	Logger    *zap.Logger
}

// PointForecast serves the meteorological point forecast for one coordinate.
type PointForecast struct {
	src *source
}

// NewPointForecast canonicalizes lon/lat once; every URL and rate-limit key
// derived later uses the canonical form.
func NewPointForecast(lon, lat string, deps Deps) (*PointForecast, error) {
	src, err := newSource(FamilyPoint, lon, lat, deps)
	if err != nil {
		return nil, err
	}
	return &PointForecast{src: src}, nil
}

// Coordinate returns the canonical coordinate.
func (p *PointForecast) Coordinate() Coordinate {
	return p.src.coord
}

// Daily returns the first record followed by one record per local noon.
func (p *PointForecast) Daily(ctx context.Context) ([]Record, error) {
	return p.Forecast(ctx, ClassDaily)
}

// TwiceDaily returns the first record followed by one record per local
// midnight and noon.
func (p *PointForecast) TwiceDaily(ctx context.Context) ([]Record, error) {
	return p.Forecast(ctx, ClassTwiceDaily)
}

// Hourly returns the leading run of hourly records.
func (p *PointForecast) Hourly(ctx context.Context) ([]Record, error) {
	return p.Forecast(ctx, ClassHourly)
}

// Forecast dispatches on class.
func (p *PointForecast) Forecast(ctx context.Context, class Class) ([]Record, error) {
	var view func([]Record) []Record
	switch class {
	case ClassDaily:
		view = Daily
	case ClassTwiceDaily:
		view = TwiceDaily
	case ClassHourly:
		view = Hourly
	default:
		return nil, fmt.Errorf("unsupported point forecast class %q", class)
	}
	return load(ctx, p.src, class, Normalize, func(records []Record) []Record {
		return view(SortByValidTime(records))
	})
}

// source is the fetch side shared by the point and fire facades.
type source struct {
	family Family
	coord  Coordinate
	deps   Deps
	logger *zap.Logger
}

func newSource(family Family, lon, lat string, deps Deps) (*source, error) {
	if deps.Fetcher == nil {
		return nil, errors.New("forecast: fetcher is required")
	}
	coord, err := NewCoordinate(lon, lat)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &source{
		family: family,
		coord:  coord,
		deps:   deps,
		logger: logger.With(zap.String("family", string(family)), zap.String("lon", coord.Lon), zap.String("lat", coord.Lat)),
	}, nil
}

// load runs gate -> fetch -> normalize -> view for one class and wraps any
// failure in a ForecastError.
func load[T any](ctx context.Context, s *source, class Class, normalize func([]byte) ([]T, error), view func([]T) []T) ([]T, error) {
	started := time.Now()
	key := Key{Family: s.family, Class: class, Coordinate: s.coord}

	body, reused, err := s.payload(ctx, key)
	if err != nil {
		return nil, s.fail(key, err)
	}

	records, err := normalize(body)
	if err != nil {
		return nil, s.fail(key, err)
	}

	out := view(records)
	if m := s.deps.Metrics; m != nil {
		m.ObserveRequest(s.family, class, reused)
		m.ObserveDuration(s.family, class, time.Since(started))
	}
	s.logger.Debug("forecast ready",
		zap.String("class", string(class)),
		zap.Bool("reused", reused),
		zap.Int("records", len(records)),
		zap.Int("emitted", len(out)))
	return out, nil
}

// payload returns the raw document for key, either freshly fetched or the
// stored copy when the gate is closed. Concurrent calls for one key join the
// call already in flight; reused reports whether this caller did not fetch.
func (s *source) payload(ctx context.Context, key Key) ([]byte, bool, error) {
	url, err := s.deps.Endpoints.URL(key.Family, key.Class, key.Coordinate)
	if err != nil {
		return nil, false, err
	}

	id := key.String()
	if s.deps.Flights == nil {
		return s.fetchOrReuse(ctx, key, url)
	}

	var leader bool
	ch := s.deps.Flights.DoChan(id, func() (interface{}, error) {
		leader = true
		body, reused, err := s.fetchOrReuse(ctx, key, url)
		return flight{body: body, reused: reused}, err
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		f := res.Val.(flight)
		if !leader {
			s.logger.Debug("joined in-flight fetch", zap.String("key", id))
		}
		return f.body, f.reused || !leader, nil
	}
}

type flight struct {
	body   []byte
	reused bool
}

// fetchOrReuse consults the gate once. Only a caller granted the gate calls
// the Fetcher; a failed fetch releases the gate again.
func (s *source) fetchOrReuse(ctx context.Context, key Key, url string) ([]byte, bool, error) {
	id := key.String()
	now := s.now()
	cancel, allowed := s.reserve(id, now)
	if !allowed {
		if s.deps.Payloads != nil {
			if cached, ok := s.deps.Payloads.Latest(id); ok {
				s.logger.Debug("rate limited, reusing payload", zap.String("key", id))
				return cached, true, nil
			}
		}
		return nil, false, ErrNoPayload
	}

	body, err := s.deps.Fetcher.Fetch(ctx, url)
	if err != nil {
		cancel()
		return nil, false, err
	}

	if s.deps.Payloads != nil {
		s.deps.Payloads.Save(id, body)
	}
	if s.deps.Archiver != nil {
		if err := s.deps.Archiver.Archive(ctx, key, now, body); err != nil {
			s.logger.Warn("archive payload failed", zap.String("key", id), zap.Error(err))
		}
	}
	return body, false, nil
}

func (s *source) reserve(id string, now time.Time) (func(), bool) {
	if s.deps.Gate == nil {
		return func() {}, true
	}
	return s.deps.Gate.Reserve(id, now)
}

func (s *source) fail(key Key, err error) error {
	if m := s.deps.Metrics; m != nil {
		m.ObserveError(key.Family, key.Class)
	}
	s.logger.Warn("forecast failed", zap.String("class", string(key.Class)), zap.Error(err))
	return &ForecastError{Family: key.Family, Class: key.Class, Coordinate: key.Coordinate, Err: err}
}

func (s *source) now() time.Time {
	if s.deps.Clock != nil {
		return s.deps.Clock()
	}
	return time.Now().UTC()
}
