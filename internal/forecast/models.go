package forecast

import (
	"fmt"
	"time"
)

// Family identifies an SMHI forecast product family.
type Family string

const (
	// FamilyPoint is the meteorological point forecast (pmp3g).
	FamilyPoint Family = "pmp3g"
	// FamilyFire is the fire weather index forecast (fwif1g).
	FamilyFire Family = "fwif1g"
)

// Class selects both the aggregation applied to a series and the URL it is
// fetched from.
type Class string

const (
	ClassDaily      Class = "daily"
	ClassTwiceDaily Class = "twice-daily"
	ClassHourly     Class = "hourly"
)

// Key identifies one rate-limited fetch: a canonical coordinate pair plus the
// family and class of forecast requested for it.
type Key struct {
	Family     Family
	Class      Class
	Coordinate Coordinate
}

// String returns the canonical string form used by the rate limiter and the
// payload store.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.Family, k.Class, k.Coordinate.Lon, k.Coordinate.Lat)
}

// Record is one instant of a normalized point forecast.
//
// https://opendata.smhi.se/apidocs/metfcst/parameters.html
type Record struct {
	ValidTime time.Time `json:"valid_time"`

	Temperature    float64 `json:"temperature"`     // Celsius
	TemperatureMax float64 `json:"temperature_max"` // Celsius
	TemperatureMin float64 `json:"temperature_min"` // Celsius
	Humidity       int     `json:"humidity"`        // percent
	Pressure       float64 `json:"pressure"`        // hPa
	Thunder        int     `json:"thunder"`         // percent

	TotalCloud  int `json:"total_cloud"`  // percent
	LowCloud    int `json:"low_cloud"`    // percent
	MediumCloud int `json:"medium_cloud"` // percent
	HighCloud   int `json:"high_cloud"`   // percent

	// PrecipitationCategory: 0 none, 1 snow, 2 snow and rain, 3 rain,
	// 4 drizzle, 5 freezing rain, 6 freezing drizzle.
	PrecipitationCategory int `json:"precipitation_category"`

	WindDirection int     `json:"wind_direction"` // degrees
	WindSpeed     float64 `json:"wind_speed"`     // m/s
	Visibility    float64 `json:"visibility"`     // km
	WindGust      float64 `json:"wind_gust"`      // m/s

	MinPrecipitation    float64 `json:"min_precipitation"`    // mm/h
	MeanPrecipitation   float64 `json:"mean_precipitation"`   // mm/h
	MedianPrecipitation float64 `json:"median_precipitation"` // mm/h
	MaxPrecipitation    float64 `json:"max_precipitation"`    // mm/h

	// TotalPrecipitation is only set on records emitted by Daily and
	// TwiceDaily, where it holds the accumulated mean precipitation in mm.
	TotalPrecipitation *float64 `json:"total_precipitation,omitempty"`

	FrozenPrecipitation int `json:"frozen_precipitation"` // percent

	// Symbol is the SMHI weather symbol (Wsymb2), 1 clear sky .. 27 heavy snowfall.
	Symbol int `json:"symbol"`
}

// RawSeries is the provider payload as returned by the SMHI API.
type RawSeries struct {
	ApprovedTime  string     `json:"approvedTime"`
	ReferenceTime string     `json:"referenceTime"`
	TimeSeries    []RawEntry `json:"timeSeries"`
}

// RawEntry is one timestamped set of parameters.
type RawEntry struct {
	ValidTime  string         `json:"validTime"`
	Parameters []RawParameter `json:"parameters"`
}

// RawParameter holds the values of a single named parameter. Point forecasts
// always carry exactly one value per parameter.
type RawParameter struct {
	Name      string    `json:"name"`
	LevelType string    `json:"levelType,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	Values    []float64 `json:"values"`
}
