package forecast

import "fmt"

// MalformedDataError reports a payload that is structurally unusable. It is
// never retried.
type MalformedDataError struct {
	Reason string
	Err    error
}

func (e *MalformedDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *MalformedDataError) Unwrap() error { return e.Err }

const msgMissingSeries = "No time series, approved time or reference time in data"

// ForecastError is the single error type returned by the facades. Callers
// that need the cause (a fetch failure or a malformed payload) use errors.As
// on the wrapped error.
type ForecastError struct {
	Family     Family
	Class      Class
	Coordinate Coordinate
	Err        error
}

func (e *ForecastError) Error() string {
	return fmt.Sprintf("%s %s forecast for lon %s lat %s: %v",
		e.Family, e.Class, e.Coordinate.Lon, e.Coordinate.Lat, e.Err)
}

func (e *ForecastError) Unwrap() error { return e.Err }
