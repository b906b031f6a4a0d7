package archive

import (
	"fmt"
	"time"

	"github.com/i474232898/point-forecast/internal/forecast"
)

// Prefix is the top-level folder for every archived payload.
const Prefix = "smhi"

// ObjectKey locates one archived payload.
type ObjectKey struct {
	Family     forecast.Family
	Class      forecast.Class
	Coordinate forecast.Coordinate
	Date       string // YYYY-MM-DD, UTC fetch date
	RunID      string
}

// NewObjectKey builds the key for a payload fetched at fetchedAt.
func NewObjectKey(key forecast.Key, fetchedAt time.Time, runID string) ObjectKey {
	return ObjectKey{
		Family:     key.Family,
		Class:      key.Class,
		Coordinate: key.Coordinate,
		Date:       fetchedAt.UTC().Format(time.DateOnly),
		RunID:      runID,
	}
}

func (k ObjectKey) Key() string {
	return fmt.Sprintf("%s/%s/%s/%s_%s/%s/%s.json",
		Prefix, k.Family, k.Class, k.Coordinate.Lon, k.Coordinate.Lat, k.Date, k.RunID)
}
