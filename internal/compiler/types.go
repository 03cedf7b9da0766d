package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/quantir/internal/ir"
)

// compileType parses a structural CUE type description into an ir.Type.
//
// Recognized forms:
//
//	{float: 32}                               f32
//	{int: 8} / {uint: 8}                      i8 / ui8
//	{tensor: {shape: [4, 5], of: <type>}}     tensor<4x5x...>
//	{vector: {shape: [4], of: <type>}}        vector<4x...>
//	{quant: {storage, expressed, scale, zero_point}}
//	{quant_per_axis: {storage, expressed, scales, zero_points, axis}}
//	{calibrated: {expressed, min, max}}
//	{any_quant: {storage, expressed}}
func compileType(v cue.Value) (ir.Type, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	if fv := v.LookupPath(cue.ParsePath("float")); fv.Exists() {
		width, err := fv.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.FloatType{Width: int(width)}, nil
	}
	if iv := v.LookupPath(cue.ParsePath("int")); iv.Exists() {
		width, err := iv.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IntType{Width: int(width)}, nil
	}
	if uv := v.LookupPath(cue.ParsePath("uint")); uv.Exists() {
		width, err := uv.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IntType{Width: int(width), Unsigned: true}, nil
	}
	if tv := v.LookupPath(cue.ParsePath("tensor")); tv.Exists() {
		elem, shape, err := compileShaped(tv)
		if err != nil {
			return nil, err
		}
		return ir.TensorType{Elem: elem, Shape: shape}, nil
	}
	if vv := v.LookupPath(cue.ParsePath("vector")); vv.Exists() {
		elem, shape, err := compileShaped(vv)
		if err != nil {
			return nil, err
		}
		return ir.VectorType{Elem: elem, Shape: shape}, nil
	}
	if qv := v.LookupPath(cue.ParsePath("quant")); qv.Exists() {
		return compileUniform(qv)
	}
	if qv := v.LookupPath(cue.ParsePath("quant_per_axis")); qv.Exists() {
		return compilePerAxis(qv)
	}
	if cv := v.LookupPath(cue.ParsePath("calibrated")); cv.Exists() {
		return compileCalibrated(cv)
	}
	if av := v.LookupPath(cue.ParsePath("any_quant")); av.Exists() {
		storage, expressed, err := compileStorageExpressed(av)
		if err != nil {
			return nil, err
		}
		return ir.AnyQuantizedType{Storage: storage, Expressed: expressed}, nil
	}

	return nil, &CompileError{
		Field:   "type",
		Message: "unrecognized type description (expected float, int, uint, tensor, vector, quant, quant_per_axis, calibrated, or any_quant)",
		Pos:     v.Pos(),
	}
}

func compileShaped(v cue.Value) (ir.Type, []int64, error) {
	shape, err := int64List(v.LookupPath(cue.ParsePath("shape")))
	if err != nil {
		return nil, nil, err
	}
	ofVal := v.LookupPath(cue.ParsePath("of"))
	if !ofVal.Exists() {
		return nil, nil, &CompileError{Field: "of", Message: "shaped type requires an element type", Pos: v.Pos()}
	}
	elem, err := compileType(ofVal)
	if err != nil {
		return nil, nil, err
	}
	return elem, shape, nil
}

func compileUniform(v cue.Value) (ir.Type, error) {
	storage, expressed, err := compileStorageExpressed(v)
	if err != nil {
		return nil, err
	}
	scale, err := v.LookupPath(cue.ParsePath("scale")).Float64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	zeroPoint := int64(0)
	if zpVal := v.LookupPath(cue.ParsePath("zero_point")); zpVal.Exists() {
		if zeroPoint, err = zpVal.Int64(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	return ir.UniformQuantizedType{
		Storage:   storage,
		Expressed: expressed,
		Scale:     scale,
		ZeroPoint: zeroPoint,
	}, nil
}

func compilePerAxis(v cue.Value) (ir.Type, error) {
	storage, expressed, err := compileStorageExpressed(v)
	if err != nil {
		return nil, err
	}
	scales, err := float64List(v.LookupPath(cue.ParsePath("scales")))
	if err != nil {
		return nil, err
	}
	zeroPoints, err := int64List(v.LookupPath(cue.ParsePath("zero_points")))
	if err != nil {
		return nil, err
	}
	axis, err := v.LookupPath(cue.ParsePath("axis")).Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return ir.UniformQuantizedPerAxisType{
		Storage:      storage,
		Expressed:    expressed,
		Scales:       scales,
		ZeroPoints:   zeroPoints,
		QuantizedDim: axis,
	}, nil
}

func compileCalibrated(v cue.Value) (ir.Type, error) {
	expressedVal := v.LookupPath(cue.ParsePath("expressed"))
	if !expressedVal.Exists() {
		return nil, &CompileError{Field: "expressed", Message: "calibrated type requires an expressed type", Pos: v.Pos()}
	}
	expressed, err := compileType(expressedVal)
	if err != nil {
		return nil, err
	}
	min, err := v.LookupPath(cue.ParsePath("min")).Float64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	max, err := v.LookupPath(cue.ParsePath("max")).Float64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return ir.CalibratedQuantizedType{Expressed: expressed, Min: min, Max: max}, nil
}

func compileStorageExpressed(v cue.Value) (ir.Type, ir.Type, error) {
	storageVal := v.LookupPath(cue.ParsePath("storage"))
	if !storageVal.Exists() {
		return nil, nil, &CompileError{Field: "storage", Message: "quantized type requires a storage type", Pos: v.Pos()}
	}
	storage, err := compileType(storageVal)
	if err != nil {
		return nil, nil, err
	}
	expressedVal := v.LookupPath(cue.ParsePath("expressed"))
	if !expressedVal.Exists() {
		return nil, nil, &CompileError{Field: "expressed", Message: "quantized type requires an expressed type", Pos: v.Pos()}
	}
	expressed, err := compileType(expressedVal)
	if err != nil {
		return nil, nil, err
	}
	return storage, expressed, nil
}

func int64List(v cue.Value) ([]int64, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []int64
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, n)
	}
	return out, nil
}

func float64List(v cue.Value) ([]float64, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []float64
	for iter.Next() {
		f, err := iter.Value().Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, f)
	}
	return out, nil
}
