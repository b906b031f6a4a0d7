package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/point-forecast/internal/forecast"
)

func TestObjectKey_Key(t *testing.T) {
	key := forecast.Key{
		Family:     forecast.FamilyPoint,
		Class:      forecast.ClassDaily,
		Coordinate: forecast.Coordinate{Lon: "16.15035", Lat: "58.570784"},
	}
	fetchedAt := time.Date(2025, 3, 12, 23, 30, 0, 0, time.FixedZone("CET", 3600))

	got := NewObjectKey(key, fetchedAt, "01890c24-905b-7122-b170-b60814e6ee06").Key()
	want := "smhi/pmp3g/daily/16.15035_58.570784/2025-03-12/01890c24-905b-7122-b170-b60814e6ee06.json"

	if got != want {
		t.Fatalf("Key() = %s, want %s", got, want)
	}
}

type memoryStorage struct {
	objects map[string][]byte
	err     error
}

func (m *memoryStorage) Put(_ context.Context, key string, reader io.Reader, size int64) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	m.objects[key] = data
	return nil
}

func TestArchiverWritesPayload(t *testing.T) {
	storage := &memoryStorage{objects: map[string][]byte{}}
	a := NewArchiver(storage)
	a.newID = func() (uuid.UUID, error) {
		return uuid.MustParse("01890c24-905b-7122-b170-b60814e6ee06"), nil
	}

	key := forecast.Key{
		Family:     forecast.FamilyFire,
		Class:      forecast.ClassHourly,
		Coordinate: forecast.Coordinate{Lon: "16", Lat: "58"},
	}
	err := a.Archive(context.Background(), key, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), []byte(`{"a":1}`))
	require.NoError(t, err)

	require.Equal(t, []byte(`{"a":1}`),
		storage.objects["smhi/fwif1g/hourly/16_58/2025-06-01/01890c24-905b-7122-b170-b60814e6ee06.json"])
}

func TestArchiverWrapsStorageError(t *testing.T) {
	boom := errors.New("bucket gone")
	a := NewArchiver(&memoryStorage{err: boom})

	err := a.Archive(context.Background(), forecast.Key{}, time.Now(), []byte(`{}`))
	require.ErrorIs(t, err, boom)
}
