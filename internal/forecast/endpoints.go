package forecast

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the SMHI open data forecast host.
const DefaultBaseURL = "https://opendata-download-metfcst.smhi.se"

const (
	pointForecastPath = "/api/category/pmp3g/version/2/geotype/point/lon/%s/lat/%s/data.json"
	fireForecastPath  = "/api/category/fwif1g/version/1/%s/geotype/point/lon/%s/lat/%s/data.json"
)

// Endpoints builds request URLs against a base host.
type Endpoints struct {
	BaseURL string
}

// URL returns the data URL for a family/class at a canonical coordinate.
// Every point forecast class shares one document; fire classes each have
// their own.
func (e Endpoints) URL(family Family, class Class, c Coordinate) (string, error) {
	base := strings.TrimRight(e.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	switch family {
	case FamilyPoint:
		switch class {
		case ClassDaily, ClassTwiceDaily, ClassHourly:
			return base + fmt.Sprintf(pointForecastPath, c.Lon, c.Lat), nil
		}
	case FamilyFire:
		switch class {
		case ClassDaily, ClassHourly:
			return base + fmt.Sprintf(fireForecastPath, class, c.Lon, c.Lat), nil
		}
	}
	return "", fmt.Errorf("unsupported forecast %s/%s", family, class)
}
