package forecast

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// FireRecord is one instant of the fire weather index forecast.
//
// https://opendata.smhi.se/apidocs/metfcst/parameters.html#fire-risk-forecast
type FireRecord struct {
	ValidTime time.Time `json:"valid_time"`

	FWIIndex  int     `json:"fwiindex"` // fire risk class, 1 very small .. 6 extremely large
	FWI       float64 `json:"fwi"`
	ISI       float64 `json:"isi"`
	BUI       float64 `json:"bui"`
	FFMC      float64 `json:"ffmc"`
	DMC       float64 `json:"dmc"`
	DC        float64 `json:"dc"`
	GrassFire int     `json:"grassfire"`
	RN24H     float64 `json:"rn24h"`
	ForestDry int     `json:"forestdry"`

	Temperature   float64 `json:"temperature"`    // Celsius
	WindDirection int     `json:"wind_direction"` // degrees
	WindSpeed     float64 `json:"wind_speed"`     // m/s
	Humidity      int     `json:"humidity"`       // percent
	Precipitation float64 `json:"precipitation"`  // mm, 24h on daily series, 1h on hourly series
}

// NormalizeFire decodes a fire forecast payload. The daily and hourly series
// carry different parameter sets, so absent parameters stay zero.
func NormalizeFire(payload []byte) ([]FireRecord, error) {
	raw, err := decodeSeries(payload)
	if err != nil {
		return nil, err
	}
	if err := validateSeries(raw); err != nil {
		return nil, err
	}

	records := make([]FireRecord, 0, len(raw.TimeSeries))
	for i, entry := range raw.TimeSeries {
		validTime, err := parseValidTime(entry.ValidTime)
		if err != nil {
			return nil, &MalformedDataError{Reason: fmt.Sprintf("entry %d", i), Err: err}
		}
		p := flatten(entry)

		precipitation := p.optional("prec24h")
		if v, ok := p.values["prec1h"]; ok {
			precipitation = v
		}

		records = append(records, FireRecord{
			ValidTime:     validTime,
			FWIIndex:      int(p.optional("fwiindex")),
			FWI:           p.optional("fwi"),
			ISI:           p.optional("isi"),
			BUI:           p.optional("bui"),
			FFMC:          p.optional("ffmc"),
			DMC:           p.optional("dmc"),
			DC:            p.optional("dc"),
			GrassFire:     int(p.optional("grassfire")),
			RN24H:         p.optional("rn24h"),
			ForestDry:     int(p.optional("forestdry")),
			Temperature:   p.optional("t"),
			WindDirection: int(p.optional("wd")),
			WindSpeed:     p.optional("ws"),
			Humidity:      int(p.optional("r")),
			Precipitation: precipitation,
		})
	}
	return records, nil
}

// FirePointForecast serves the fire weather index forecast for one
// coordinate. It shares the gate, payload store and fetcher with
// PointForecast but uses its own keys.
type FirePointForecast struct {
	src *source
}

// NewFirePointForecast canonicalizes lon/lat once.
func NewFirePointForecast(lon, lat string, deps Deps) (*FirePointForecast, error) {
	src, err := newSource(FamilyFire, lon, lat, deps)
	if err != nil {
		return nil, err
	}
	return &FirePointForecast{src: src}, nil
}

// Coordinate returns the canonical coordinate.
func (f *FirePointForecast) Coordinate() Coordinate {
	return f.src.coord
}

// Daily returns every entry of the daily fire series in time order.
func (f *FirePointForecast) Daily(ctx context.Context) ([]FireRecord, error) {
	return f.Forecast(ctx, ClassDaily)
}

// Hourly returns the leading run of hourly fire records.
func (f *FirePointForecast) Hourly(ctx context.Context) ([]FireRecord, error) {
	return f.Forecast(ctx, ClassHourly)
}

// Forecast dispatches on class.
func (f *FirePointForecast) Forecast(ctx context.Context, class Class) ([]FireRecord, error) {
	var view func([]FireRecord) []FireRecord
	switch class {
	case ClassDaily:
		view = sortFire
	case ClassHourly:
		view = func(records []FireRecord) []FireRecord { return leadingHourlyRun(sortFire(records), fireValidTime) }
	default:
		return nil, fmt.Errorf("unsupported fire forecast class %q", class)
	}
	return load(ctx, f.src, class, NormalizeFire, view)
}

func sortFire(records []FireRecord) []FireRecord {
	sorted := make([]FireRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ValidTime.Before(sorted[j].ValidTime)
	})
	return sorted
}

func fireValidTime(r FireRecord) time.Time { return r.ValidTime }
