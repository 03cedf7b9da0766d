package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/quantir/internal/ir"
)

// CompileModule parses a CUE value into an ir.Module.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// Module format:
//
//	module: "name"
//	values: {
//	    in: {tensor: {shape: [4, 5, 6], of: {float: 32}}}
//	}
//	ops: [
//	    {stats: {arg: "in", layer: [-1.0, 1.0], axis: 1, axis_stats: [[-1.0, 1.0], ...]}},
//	    {scast: {arg: "in", to: {quant: {...}}, result: "q"}},
//	    {region: {inputs: [...], input_specs: [...], outputs: [...], output_specs: [...]}},
//	]
//
// Entries of values become module arguments. Ops may name their results
// so later ops can reference them; references to undefined names fail.
// CompileModule performs no structural verification beyond name
// resolution - that is the quant verifiers' job.
func CompileModule(v cue.Value) (*ir.Module, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &ir.Module{}
	if nameVal := v.LookupPath(cue.ParsePath("module")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		m.Name = name
	}

	// scope maps value names to their IR values; ops extend it with
	// their named results.
	scope := make(map[string]*ir.Value)

	if valuesVal := v.LookupPath(cue.ParsePath("values")); valuesVal.Exists() {
		iter, err := valuesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			label := iter.Label()
			t, err := compileType(iter.Value())
			if err != nil {
				return nil, err
			}
			arg := &ir.Value{Name: label, Type: t}
			m.Args = append(m.Args, arg)
			scope[label] = arg
		}
	}

	if opsVal := v.LookupPath(cue.ParsePath("ops")); opsVal.Exists() {
		iter, err := opsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			if err := compileOp(iter.Value(), i, m, scope); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// LoadModuleFile reads and compiles a single CUE module file.
func LoadModuleFile(path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CompileError{Field: "file", Message: err.Error()}
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileModule(v)
}

func compileOp(v cue.Value, index int, m *ir.Module, scope map[string]*ir.Value) error {
	if sv := v.LookupPath(cue.ParsePath("stats")); sv.Exists() {
		return compileStats(sv, index, m, scope)
	}
	if sv := v.LookupPath(cue.ParsePath("scast")); sv.Exists() {
		return compileStorageCast(sv, index, m, scope)
	}
	if rv := v.LookupPath(cue.ParsePath("region")); rv.Exists() {
		return compileRegion(rv, index, m, scope)
	}
	return &CompileError{
		Field:   fmt.Sprintf("ops[%d]", index),
		Message: "unrecognized op (expected stats, scast, or region)",
		Pos:     v.Pos(),
	}
}

func compileStats(v cue.Value, index int, m *ir.Module, scope map[string]*ir.Value) error {
	arg, err := resolveValue(v, "arg", index, scope)
	if err != nil {
		return err
	}

	elem := ir.Type(ir.F32)
	if ev := v.LookupPath(cue.ParsePath("elem")); ev.Exists() {
		if elem, err = compileType(ev); err != nil {
			return err
		}
	}

	layer, err := float64List(v.LookupPath(cue.ParsePath("layer")))
	if err != nil {
		return err
	}
	layerStats := ir.FloatsAttr{
		Elem:   elem,
		Shape:  []int64{int64(len(layer))},
		Values: layer,
	}

	var axisStats *ir.FloatsAttr
	if asVal := v.LookupPath(cue.ParsePath("axis_stats")); asVal.Exists() {
		attr, err := compileFloatRows(asVal, elem)
		if err != nil {
			return err
		}
		axisStats = attr
	}

	var axis *int64
	if axVal := v.LookupPath(cue.ParsePath("axis")); axVal.Exists() {
		n, err := axVal.Int64()
		if err != nil {
			return formatCUEError(err)
		}
		axis = &n
	}

	op := ir.NewStatistics(arg, layerStats, axisStats, axis)
	m.Ops = append(m.Ops, op)
	return bindResult(v, op.Result, scope)
}

func compileStorageCast(v cue.Value, index int, m *ir.Module, scope map[string]*ir.Value) error {
	arg, err := resolveValue(v, "arg", index, scope)
	if err != nil {
		return err
	}
	toVal := v.LookupPath(cue.ParsePath("to"))
	if !toVal.Exists() {
		return &CompileError{
			Field:   fmt.Sprintf("ops[%d].scast.to", index),
			Message: "scast requires a result type",
			Pos:     v.Pos(),
		}
	}
	to, err := compileType(toVal)
	if err != nil {
		return err
	}
	op := ir.NewStorageCast(arg, to)
	m.Ops = append(m.Ops, op)
	return bindResult(v, op.Result, scope)
}

func compileRegion(v cue.Value, index int, m *ir.Module, scope map[string]*ir.Value) error {
	var inputs []*ir.Value
	if inVal := v.LookupPath(cue.ParsePath("inputs")); inVal.Exists() {
		iter, err := inVal.List()
		if err != nil {
			return formatCUEError(err)
		}
		for iter.Next() {
			name, err := iter.Value().String()
			if err != nil {
				return formatCUEError(err)
			}
			val, ok := scope[name]
			if !ok {
				return &CompileError{
					Field:   fmt.Sprintf("ops[%d].region.inputs", index),
					Message: fmt.Sprintf("undefined value %q", name),
					Pos:     iter.Value().Pos(),
				}
			}
			inputs = append(inputs, val)
		}
	}

	inputSpecs, err := compileSpecs(v.LookupPath(cue.ParsePath("input_specs")))
	if err != nil {
		return err
	}
	outputSpecs, err := compileSpecs(v.LookupPath(cue.ParsePath("output_specs")))
	if err != nil {
		return err
	}

	var resultTypes []ir.Type
	var resultNames []string
	if outVal := v.LookupPath(cue.ParsePath("outputs")); outVal.Exists() {
		iter, err := outVal.List()
		if err != nil {
			return formatCUEError(err)
		}
		for iter.Next() {
			out := iter.Value()
			typeVal := out.LookupPath(cue.ParsePath("type"))
			if !typeVal.Exists() {
				return &CompileError{
					Field:   fmt.Sprintf("ops[%d].region.outputs", index),
					Message: "region output requires a type",
					Pos:     out.Pos(),
				}
			}
			t, err := compileType(typeVal)
			if err != nil {
				return err
			}
			resultTypes = append(resultTypes, t)

			name := ""
			if nameVal := out.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
				if name, err = nameVal.String(); err != nil {
					return formatCUEError(err)
				}
			}
			resultNames = append(resultNames, name)
		}
	}

	op := ir.NewRegion(inputs, resultTypes, inputSpecs, outputSpecs)
	for i, name := range resultNames {
		if name == "" {
			continue
		}
		op.Results[i].Name = name
		scope[name] = op.Results[i]
	}
	m.Ops = append(m.Ops, op)
	return nil
}

// compileSpecs parses a list of type descriptions into TypeAttrs.
func compileSpecs(v cue.Value) ([]ir.Attribute, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var specs []ir.Attribute
	for iter.Next() {
		t, err := compileType(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, ir.TypeAttr{Type: t})
	}
	return specs, nil
}

// compileFloatRows parses a list of equal-length float lists into a
// rank-2 FloatsAttr. Ragged rows are rejected here; shape constraints
// beyond rectangularity are the verifier's job.
func compileFloatRows(v cue.Value, elem ir.Type) (*ir.FloatsAttr, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var rows [][]float64
	for iter.Next() {
		row, err := float64List(iter.Value())
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	width := int64(0)
	if len(rows) > 0 {
		width = int64(len(rows[0]))
	}
	attr := &ir.FloatsAttr{Elem: elem, Shape: []int64{int64(len(rows)), width}}
	for i, row := range rows {
		if int64(len(row)) != width {
			return nil, &CompileError{
				Field:   "axis_stats",
				Message: fmt.Sprintf("row %d has %d entries, want %d", i, len(row), width),
				Pos:     v.Pos(),
			}
		}
		attr.Values = append(attr.Values, row...)
	}
	return attr, nil
}

func resolveValue(v cue.Value, field string, index int, scope map[string]*ir.Value) (*ir.Value, error) {
	nameVal := v.LookupPath(cue.ParsePath(field))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   fmt.Sprintf("ops[%d].%s", index, field),
			Message: "missing operand reference",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	val, ok := scope[name]
	if !ok {
		return nil, &CompileError{
			Field:   fmt.Sprintf("ops[%d].%s", index, field),
			Message: fmt.Sprintf("undefined value %q", name),
			Pos:     nameVal.Pos(),
		}
	}
	return val, nil
}

func bindResult(v cue.Value, result *ir.Value, scope map[string]*ir.Value) error {
	resVal := v.LookupPath(cue.ParsePath("result"))
	if !resVal.Exists() {
		return nil
	}
	name, err := resVal.String()
	if err != nil {
		return formatCUEError(err)
	}
	result.Name = name
	scope[name] = result
	return nil
}
