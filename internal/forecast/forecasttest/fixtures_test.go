package forecasttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetcherWithoutResponsesFails(t *testing.T) {
	f := NewFetcher()
	_, err := f.Fetch(context.Background(), "https://example.invalid")
	require.ErrorIs(t, err, ErrNoResponse)
	require.Equal(t, 1, f.Calls())
}

func TestFetcherRepeatsLastResponse(t *testing.T) {
	f := NewFetcher(Response{Body: []byte(`1`)}, Response{Body: []byte(`2`)})
	for _, want := range []string{"1", "2", "2"} {
		body, err := f.Fetch(context.Background(), "u")
		require.NoError(t, err)
		require.Equal(t, want, string(body))
	}
}
