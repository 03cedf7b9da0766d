package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "calib.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calib.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Re-opening applies the schema again without error.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	var version int
	require.NoError(t, s2.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestCreateRun_UniqueSortableIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r1, err := s.CreateRun(ctx, "hash-a", "first")
	require.NoError(t, err)
	r2, err := s.CreateRun(ctx, "hash-a", "second")
	require.NoError(t, err)

	assert.NotEqual(t, r1.ID, r2.ID)
	assert.Less(t, r1.ID, r2.ID, "UUIDv7 run IDs sort by creation order")
}

func TestWriteRecord_ReadRunRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "hash-a", "nightly")
	require.NoError(t, err)

	axis := int64(1)
	require.NoError(t, s.WriteRecord(ctx, run.ID, Record{
		ValueName: "conv1",
		Min:       -1.5,
		Max:       1.5,
		Axis:      &axis,
		AxisMinMax: [][2]float64{
			{-1, 1},
			{-0.5, 0.5},
		},
	}))
	require.NoError(t, s.WriteRecord(ctx, run.ID, Record{
		ValueName: "act0",
		Min:       0,
		Max:       6,
	}))

	got, records, err := s.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, got)

	// Deterministic ordering by value name.
	require.Len(t, records, 2)
	assert.Equal(t, "act0", records[0].ValueName)
	assert.Nil(t, records[0].Axis)
	assert.Empty(t, records[0].AxisMinMax)

	assert.Equal(t, "conv1", records[1].ValueName)
	require.NotNil(t, records[1].Axis)
	assert.Equal(t, int64(1), *records[1].Axis)
	assert.Equal(t, [][2]float64{{-1, 1}, {-0.5, 0.5}}, records[1].AxisMinMax)
}

func TestWriteRecord_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "hash-a", "")
	require.NoError(t, err)

	rec := Record{ValueName: "v", Min: -1, Max: 1}
	require.NoError(t, s.WriteRecord(ctx, run.ID, rec))
	require.NoError(t, s.WriteRecord(ctx, run.ID, rec), "duplicate writes are silently ignored")

	_, records, err := s.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestReadRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.ReadRun(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestLatestRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LatestRun(ctx, "hash-a")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.CreateRun(ctx, "hash-a", "old")
	require.NoError(t, err)
	newest, err := s.CreateRun(ctx, "hash-a", "new")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "hash-b", "other module")
	require.NoError(t, err)

	got, err := s.LatestRun(ctx, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, newest.ID, got.ID)
}
