package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLatest(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.Latest("pmp3g/daily/16/58")
	require.False(t, ok)

	s.Save("pmp3g/daily/16/58", []byte(`{"v":1}`))
	s.Save("pmp3g/daily/16/58", []byte(`{"v":2}`))
	s.Save("pmp3g/hourly/16/58", []byte(`{"v":3}`))

	got, ok := s.Latest("pmp3g/daily/16/58")
	require.True(t, ok)
	require.Equal(t, []byte(`{"v":2}`), got)
	require.Equal(t, 2, s.Len())
}
