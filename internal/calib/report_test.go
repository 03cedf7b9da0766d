package calib

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quantir/internal/store"
)

func writeReport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "calib.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadReport(t *testing.T) {
	path := writeReport(t, `
label: nightly
stats:
  - value: in
    min: -1.0
    max: 1.0
    axis: 1
    axis_min_max:
      - [-1.0, 1.0]
      - [-0.5, 0.5]
  - value: out
    min: 0.0
    max: 6.0
`)

	report, err := LoadReport(path)
	require.NoError(t, err)

	assert.Equal(t, "nightly", report.Label)
	require.Len(t, report.Stats, 2)
	assert.Equal(t, "in", report.Stats[0].Value)
	require.NotNil(t, report.Stats[0].Axis)
	assert.Equal(t, int64(1), *report.Stats[0].Axis)
	assert.Len(t, report.Stats[0].AxisMinMax, 2)
	assert.Nil(t, report.Stats[1].Axis)
}

func TestLoadReport_Invalid(t *testing.T) {
	_, err := LoadReport(writeReport(t, `stats: []`))
	assert.ErrorContains(t, err, "no stats entries")

	_, err = LoadReport(writeReport(t, `
stats:
  - min: -1.0
    max: 1.0
`))
	assert.ErrorContains(t, err, "missing value name")

	_, err = LoadReport(writeReport(t, `
stats:
  - value: in
    min: -1.0
    max: 1.0
    axis: 0
    axis_min_max:
      - [-1.0, 1.0, 0.0]
`))
	assert.ErrorContains(t, err, "[min, max] pair")

	_, err = LoadReport(writeReport(t, `
stats:
  - value: in
    min: -1.0
    max: 1.0
    axis_min_max:
      - [-1.0, 1.0]
`))
	assert.ErrorContains(t, err, "no axis")
}

func TestImport_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	report := &Report{
		Label: "run",
		Stats: []Entry{
			{Value: "in", Min: -1, Max: 1},
		},
	}
	run, err := Import(ctx, s, report, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, "hash-a", run.ModuleHash)

	_, records, err := s.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "in", records[0].ValueName)
}

func TestImport_RejectsPinnedMismatch(t *testing.T) {
	s := openTestStore(t)

	report := &Report{
		ModuleHash: "hash-a",
		Stats:      []Entry{{Value: "in", Min: -1, Max: 1}},
	}
	_, err := Import(context.Background(), s, report, "hash-b")
	assert.ErrorContains(t, err, "pinned to module hash-a")
}
