package forecast

import (
	"context"
	"time"
)

// Fetcher retrieves the JSON document at url. Implementations own retries
// and timeouts.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Gate decides whether a key may be fetched now. When ok is true the fetch
// is recorded; cancel undoes that record if the fetch fails.
type Gate interface {
	Reserve(key string, now time.Time) (cancel func(), ok bool)
}

// PayloadStore keeps the most recent raw payload per key so it can be reused
// while the gate is closed.
type PayloadStore interface {
	Save(key string, payload []byte)
	Latest(key string) ([]byte, bool)
}

// Archiver receives every freshly fetched payload. Errors are logged by the
// caller and never fail a forecast.
type Archiver interface {
	Archive(ctx context.Context, key Key, fetchedAt time.Time, payload []byte) error
}

// Recorder observes facade calls.
type Recorder interface {
	ObserveRequest(family Family, class Class, reused bool)
	ObserveError(family Family, class Class)
	ObserveDuration(family Family, class Class, d time.Duration)
}
