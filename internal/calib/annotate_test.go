package calib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quantir/internal/ir"
	"github.com/roach88/quantir/internal/quant"
	"github.com/roach88/quantir/internal/store"
)

func annotateModule() *ir.Module {
	in := &ir.Value{Name: "in", Type: ir.TensorType{Elem: ir.F32, Shape: []int64{4, 5, 6}}}
	cast := ir.NewStorageCast(in, ir.TensorType{
		Elem:  ir.UniformQuantizedType{Storage: ir.I8, Expressed: ir.F32, Scale: 0.5},
		Shape: []int64{4, 5, 6},
	})
	cast.Result.Name = "q"
	return &ir.Module{Name: "m", Args: []*ir.Value{in}, Ops: []ir.Op{cast}}
}

func TestAnnotate_ArgGetsStatsAtFront(t *testing.T) {
	m := annotateModule()

	inserted, err := Annotate(m, []store.Record{
		{ValueName: "in", Min: -1, Max: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	require.Len(t, m.Ops, 2)
	stats, ok := m.Ops[0].(*ir.StatisticsOp)
	require.True(t, ok, "argument stats go before all ops")
	assert.Same(t, m.Args[0], stats.Arg)
	assert.Equal(t, []float64{-1, 1}, stats.LayerStats.Values)
}

func TestAnnotate_ResultGetsStatsAfterDef(t *testing.T) {
	m := annotateModule()

	inserted, err := Annotate(m, []store.Record{
		{ValueName: "q", Min: -2, Max: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	require.Len(t, m.Ops, 2)
	_, isCast := m.Ops[0].(*ir.StorageCastOp)
	assert.True(t, isCast)
	stats, ok := m.Ops[1].(*ir.StatisticsOp)
	require.True(t, ok, "result stats go right after the defining op")
	assert.Equal(t, "q", stats.Arg.Name)
}

func TestAnnotate_AxisRecord(t *testing.T) {
	m := annotateModule()
	axis := int64(1)

	inserted, err := Annotate(m, []store.Record{
		{
			ValueName: "in",
			Min:       -1,
			Max:       1,
			Axis:      &axis,
			// Shape [4,5,6], axis 1: six trailing slices.
			AxisMinMax: [][2]float64{{-1, 1}, {-1, 1}, {-1, 1}, {-1, 1}, {-1, 1}, {-1, 1}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	stats := m.Ops[0].(*ir.StatisticsOp)
	require.NotNil(t, stats.AxisStats)
	assert.Equal(t, []int64{6, 2}, stats.AxisStats.Shape)
	assert.NoError(t, quant.VerifyStatistics(stats))
}

func TestAnnotate_UnknownValue(t *testing.T) {
	m := annotateModule()

	_, err := Annotate(m, []store.Record{{ValueName: "nope", Min: 0, Max: 1}})
	assert.ErrorContains(t, err, `no value named "nope"`)
	assert.Len(t, m.Ops, 1, "module untouched on failure")
}

func TestAnnotate_BadRecordRejectsBatch(t *testing.T) {
	m := annotateModule()
	axis := int64(1)

	// Wrong slice count: shape [4,5,6] axis 1 needs 6 pairs, not 5.
	_, err := Annotate(m, []store.Record{
		{ValueName: "in", Min: -1, Max: 1},
		{
			ValueName:  "q",
			Min:        -1,
			Max:        1,
			Axis:       &axis,
			AxisMinMax: [][2]float64{{-1, 1}, {-1, 1}, {-1, 1}, {-1, 1}, {-1, 1}},
		},
	})
	require.Error(t, err)
	assert.True(t, quant.HasCode(err, quant.ErrAxisStatsBadShape))
	assert.Len(t, m.Ops, 1, "no partial insertion")
}
