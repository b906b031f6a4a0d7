package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"
)

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("geocoding is not configured")

// ErrNotFound is returned when the address has no match.
var ErrNotFound = errors.New("location not found")

// Resolver turns a city/country pair into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, city, country string) (lon, lat float64, err error)
}

// GoogleResolver resolves addresses through the Google geocoding API.
type GoogleResolver struct {
	mu     sync.Mutex
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleResolver configures the geocoder package with apiKey. An empty
// key yields a resolver that always fails with ErrNotConfigured.
func NewGoogleResolver(apiKey string) *GoogleResolver {
	if apiKey == "" {
		return &GoogleResolver{}
	}
	geocoder.ApiKey = apiKey
	return &GoogleResolver{lookup: geocoder.Geocoding}
}

// Resolve looks up city in country. The geocoder package keeps global state,
// so lookups are serialized.
func (r *GoogleResolver) Resolve(ctx context.Context, city, country string) (float64, float64, error) {
	if r == nil || r.lookup == nil {
		return 0, 0, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	loc, err := r.lookup(geocoder.Address{
		City:    strings.TrimSpace(city),
		Country: strings.TrimSpace(country),
	})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %s, %s: %w", city, country, err)
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return 0, 0, fmt.Errorf("geocode %s, %s: %w", city, country, ErrNotFound)
	}
	return loc.Longitude, loc.Latitude, nil
}
