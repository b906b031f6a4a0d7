package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/require"
)

func TestResolverWithoutKey(t *testing.T) {
	_, _, err := NewGoogleResolver("").Resolve(context.Background(), "Linköping", "SE")
	require.ErrorIs(t, err, ErrNotConfigured)

	var nilResolver *GoogleResolver
	_, _, err = nilResolver.Resolve(context.Background(), "Linköping", "SE")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolverReturnsLonLat(t *testing.T) {
	var got geocoder.Address
	r := &GoogleResolver{lookup: func(a geocoder.Address) (geocoder.Location, error) {
		got = a
		return geocoder.Location{Latitude: 58.41, Longitude: 15.62}, nil
	}}

	lon, lat, err := r.Resolve(context.Background(), " Linköping ", "Sweden")
	require.NoError(t, err)
	require.Equal(t, 15.62, lon)
	require.Equal(t, 58.41, lat)
	require.Equal(t, "Linköping", got.City)
	require.Equal(t, "Sweden", got.Country)
}

func TestResolverErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	r := &GoogleResolver{lookup: func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, boom
	}}
	_, _, err := r.Resolve(context.Background(), "Nowhere", "XX")
	require.ErrorIs(t, err, boom)

	r = &GoogleResolver{lookup: func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, nil
	}}
	_, _, err = r.Resolve(context.Background(), "Nowhere", "XX")
	require.ErrorIs(t, err, ErrNotFound)
}
