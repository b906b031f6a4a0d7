package forecast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const coordinateScale = 1e6

// Coordinate is a canonical longitude/latitude pair. Both values are rounded
// to six decimal digits and kept in their shortest string form so they can be
// used verbatim in URLs and keys.
type Coordinate struct {
	Lon string `json:"lon"`
	Lat string `json:"lat"`
}

// NewCoordinate parses and canonicalizes a longitude/latitude pair.
func NewCoordinate(lon, lat string) (Coordinate, error) {
	clon, err := Canonicalize(lon)
	if err != nil {
		return Coordinate{}, fmt.Errorf("longitude: %w", err)
	}
	clat, err := Canonicalize(lat)
	if err != nil {
		return Coordinate{}, fmt.Errorf("latitude: %w", err)
	}
	return Coordinate{Lon: clon, Lat: clat}, nil
}

// CoordinateFromFloat canonicalizes an already parsed pair.
func CoordinateFromFloat(lon, lat float64) Coordinate {
	return Coordinate{Lon: formatCoordinate(lon), Lat: formatCoordinate(lat)}
}

// Canonicalize rounds a decimal coordinate to six digits. It is idempotent:
// Canonicalize("16.1234567") == "16.123457" == Canonicalize("16.123457").
func Canonicalize(value string) (string, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", fmt.Errorf("invalid coordinate %q: %w", value, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("invalid coordinate %q", value)
	}
	return formatCoordinate(v), nil
}

func formatCoordinate(v float64) string {
	rounded := math.Round(v*coordinateScale) / coordinateScale
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
