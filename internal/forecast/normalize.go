package forecast

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// frozenNoPrecipitation is the spp value SMHI uses when no precipitation is
// expected at all.
const frozenNoPrecipitation = -9

// Normalize decodes a point forecast payload and converts it to records, one
// per raw entry, in provider order.
func Normalize(payload []byte) ([]Record, error) {
	raw, err := decodeSeries(payload)
	if err != nil {
		return nil, err
	}
	return NormalizeSeries(raw)
}

// NormalizeSeries converts an already decoded payload to records.
//
// SMHI reports precipitation accumulated over the interval since the previous
// entry. Entries further into the future are spaced several hours apart, so
// the precipitation fields are divided by the interval width to get back to
// mm/h.
func NormalizeSeries(raw RawSeries) ([]Record, error) {
	if err := validateSeries(raw); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(raw.TimeSeries))
	var previous time.Time
	for i, entry := range raw.TimeSeries {
		validTime, err := parseValidTime(entry.ValidTime)
		if err != nil {
			return nil, &MalformedDataError{Reason: fmt.Sprintf("entry %d", i), Err: err}
		}

		hours := hoursBetween(previous, validTime)
		p := flatten(entry)

		temperature := p.float("t")
		record := Record{
			ValidTime:             validTime,
			Temperature:           temperature,
			TemperatureMax:        temperature,
			TemperatureMin:        temperature,
			Humidity:              p.int("r"),
			Pressure:              p.float("msl"),
			Thunder:               p.int("tstm"),
			TotalCloud:            cloudPercent(p.float("tcc_mean")),
			LowCloud:              cloudPercent(p.float("lcc_mean")),
			MediumCloud:           cloudPercent(p.float("mcc_mean")),
			HighCloud:             cloudPercent(p.float("hcc_mean")),
			PrecipitationCategory: p.int("pcat"),
			WindDirection:         p.int("wd"),
			WindSpeed:             p.float("ws"),
			Visibility:            p.float("vis"),
			WindGust:              p.float("gust"),
			MinPrecipitation:      p.float("pmin") / hours,
			MeanPrecipitation:     p.float("pmean") / hours,
			MedianPrecipitation:   p.float("pmedian") / hours,
			MaxPrecipitation:      p.float("pmax") / hours,
			FrozenPrecipitation:   frozenPercent(p.int("spp")),
			Symbol:                p.int("Wsymb2"),
		}
		if err := p.err(); err != nil {
			return nil, &MalformedDataError{Reason: fmt.Sprintf("entry %d (%s)", i, entry.ValidTime), Err: err}
		}

		records = append(records, record)
		previous = validTime
	}
	return records, nil
}

// SortByValidTime returns a copy of records ordered by valid time.
func SortByValidTime(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ValidTime.Before(sorted[j].ValidTime)
	})
	return sorted
}

func decodeSeries(payload []byte) (RawSeries, error) {
	var raw RawSeries
	if err := json.Unmarshal(payload, &raw); err != nil {
		return RawSeries{}, &MalformedDataError{Reason: "decode payload", Err: err}
	}
	return raw, nil
}

// validateSeries rejects payloads without entries or without any of the
// approved/reference time metadata.
func validateSeries(raw RawSeries) error {
	if len(raw.TimeSeries) == 0 {
		return &MalformedDataError{Reason: msgMissingSeries}
	}
	if strings.TrimSpace(raw.ApprovedTime) == "" && strings.TrimSpace(raw.ReferenceTime) == "" {
		return &MalformedDataError{Reason: msgMissingSeries}
	}
	return nil
}

func parseValidTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid validTime %q: %w", s, err)
	}
	return t, nil
}

// hoursBetween returns the width of the reporting interval in whole hours,
// rounding half to even. The first entry counts as one hour. Intervals that
// round to zero or less are treated as one hour.
func hoursBetween(previous, current time.Time) float64 {
	if previous.IsZero() {
		return 1
	}
	hours := math.RoundToEven(current.Sub(previous).Hours())
	if hours < 1 {
		return 1
	}
	return hours
}

// cloudPercent maps cloud cover in eighths (0-8) to percent.
func cloudPercent(eighths float64) int {
	return int(math.RoundToEven(100 * eighths / 8))
}

func frozenPercent(spp int) int {
	if spp == frozenNoPrecipitation {
		return 0
	}
	return spp
}

// parameters is a flattened name -> first value view of a raw entry. Lookups
// of missing names are collected so a whole record can be checked at once.
type parameters struct {
	values  map[string]float64
	missing []string
}

func flatten(entry RawEntry) *parameters {
	values := make(map[string]float64, len(entry.Parameters))
	for _, param := range entry.Parameters {
		if len(param.Values) == 0 {
			continue
		}
		values[param.Name] = param.Values[0]
	}
	return &parameters{values: values}
}

func (p *parameters) float(name string) float64 {
	v, ok := p.values[name]
	if !ok {
		p.missing = append(p.missing, name)
	}
	return v
}

// int truncates toward zero.
func (p *parameters) int(name string) int {
	return int(p.float(name))
}

func (p *parameters) optional(name string) float64 {
	return p.values[name]
}

func (p *parameters) err() error {
	if len(p.missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing parameters %s", strings.Join(p.missing, ", "))
}
