package calib

import (
	"fmt"

	"github.com/roach88/quantir/internal/ir"
	"github.com/roach88/quantir/internal/quant"
	"github.com/roach88/quantir/internal/store"
)

// Annotate inserts a quant.stats op after each named value's definition
// point, carrying the record's observed ranges. Every generated op is
// checked with the statistics verifier before the module is touched, so
// a record that does not fit the value's shape rejects the whole batch.
//
// Returns the number of operations inserted.
func Annotate(m *ir.Module, records []store.Record) (int, error) {
	byName := valuesByName(m)

	type insertion struct {
		after ir.Op // nil inserts at the front (module argument)
		op    *ir.StatisticsOp
	}
	var insertions []insertion

	for _, rec := range records {
		val, ok := byName[rec.ValueName]
		if !ok {
			return 0, fmt.Errorf("annotate: module has no value named %q", rec.ValueName)
		}

		layer := ir.LayerStats(ir.F32, rec.Min, rec.Max)
		var axisStats *ir.FloatsAttr
		if len(rec.AxisMinMax) > 0 {
			attr := ir.AxisStats(ir.F32, rec.AxisMinMax)
			axisStats = &attr
		}

		op := ir.NewStatistics(val, layer, axisStats, rec.Axis)
		if err := quant.VerifyStatistics(op); err != nil {
			return 0, fmt.Errorf("annotate %q: %w", rec.ValueName, err)
		}
		insertions = append(insertions, insertion{after: val.Def, op: op})
	}

	for _, ins := range insertions {
		insertAfter(m, ins.after, ins.op)
	}
	return len(insertions), nil
}

// valuesByName indexes the module's named values: arguments plus op
// results. Unnamed values cannot be annotated.
func valuesByName(m *ir.Module) map[string]*ir.Value {
	byName := make(map[string]*ir.Value)
	for _, arg := range m.Args {
		if arg.Name != "" {
			byName[arg.Name] = arg
		}
	}
	for _, op := range m.Ops {
		for _, res := range ir.Results(op) {
			if res.Name != "" {
				byName[res.Name] = res
			}
		}
	}
	return byName
}

func insertAfter(m *ir.Module, after ir.Op, op ir.Op) {
	if after == nil {
		m.Ops = append([]ir.Op{op}, m.Ops...)
		return
	}
	for i, o := range m.Ops {
		if o == after {
			m.Ops = append(m.Ops[:i+1], append([]ir.Op{op}, m.Ops[i+1:]...)...)
			return
		}
	}
	m.Ops = append(m.Ops, op)
}
