package forecast

import "time"

// Hourly returns the leading run of records spaced exactly one hour apart.
// It stops at the first gap of any other width, so the result is always a
// prefix of records.
func Hourly(records []Record) []Record {
	return leadingHourlyRun(records, func(r Record) time.Time { return r.ValidTime })
}

func leadingHourlyRun[T any](records []T, validTime func(T) time.Time) []T {
	if len(records) == 0 {
		return []T{}
	}

	run := []T{records[0]}
	previous := validTime(records[0])
	for _, r := range records[1:] {
		if validTime(r).Sub(previous) != time.Hour {
			break
		}
		run = append(run, r)
		previous = validTime(r)
	}
	return run
}

// Daily keeps the first record and one record per local noon. Each emitted
// noon record carries the sum of mean precipitation of the records skipped
// since the previous emission.
func Daily(records []Record) []Record {
	return aggregateAt(records, 12)
}

// TwiceDaily is Daily with emissions at local midnight and noon.
func TwiceDaily(records []Record) []Record {
	return aggregateAt(records, 0, 12)
}

// aggregateAt folds records into the first record plus one record per
// boundary hour. The sum is not weighted by interval width; mean
// precipitation is already normalized to mm/h per record.
func aggregateAt(records []Record, boundaryHours ...int) []Record {
	if len(records) == 0 {
		return []Record{}
	}

	isBoundary := func(t time.Time) bool {
		for _, h := range boundaryHours {
			if t.Hour() == h {
				return true
			}
		}
		return false
	}

	out := []Record{records[0]}
	var sum float64
	for _, r := range records[1:] {
		if !isBoundary(r.ValidTime) {
			sum += r.MeanPrecipitation
			continue
		}
		out = append(out, withTotalPrecipitation(r, sum))
		sum = 0
	}
	return out
}

// withTotalPrecipitation copies r and patches the accumulated total.
func withTotalPrecipitation(r Record, total float64) Record {
	patched := r
	patched.TotalPrecipitation = &total
	return patched
}
