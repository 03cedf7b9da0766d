package quant

import (
	"github.com/roach88/quantir/internal/ir"
)

// Verify dispatches an operation to its registered verifier.
// Storage casts have no structural constraints beyond construction.
func Verify(op ir.Op) error {
	switch o := op.(type) {
	case *ir.RegionOp:
		return VerifyRegion(o)
	case *ir.StatisticsOp:
		return VerifyStatistics(o)
	case *ir.StorageCastOp:
		return nil
	default:
		return verr(op.OpName(), ErrUnsupportedOp, "no verifier registered for op kind %T", op)
	}
}

// VerifyRegion checks that a region operation carries one specification
// per operand and per result, and that every specification is valid
// against its paired type. Fails fast on the first violation; the index
// in the message identifies the blamed slot.
func VerifyRegion(op *ir.RegionOp) error {
	name := op.OpName()

	// There are specifications for both inputs and outputs.
	if len(op.Inputs) != len(op.InputSpecs) || len(op.Results) != len(op.OutputSpecs) {
		return verr(name, ErrArityMismatch,
			"has unmatched operands/results number and spec attributes number")
	}

	for i, in := range op.Inputs {
		if !IsValidSpec(op.InputSpecs[i], in.Type) {
			return verr(name, ErrIncompatibleInputSpec,
				"has incompatible specification %s and input type %s at index %d",
				op.InputSpecs[i], in.Type, i)
		}
	}
	for i, out := range op.Results {
		if !IsValidSpec(op.OutputSpecs[i], out.Type) {
			return verr(name, ErrIncompatibleOutputSpec,
				"has incompatible specification %s and output type %s at index %d",
				op.OutputSpecs[i], out.Type, i)
		}
	}
	return nil
}

// VerifyStatistics checks the shape and element-type constraints on a
// statistics annotation.
//
// Layer statistics are a whole-tensor [min, max] pair: float element
// type, shape exactly [2]. Axis statistics, when present, require an
// axis in [0, rank) of the argument and hold one [min, max] pair per
// slice along it: float element type, shape exactly [sliceSize, 2],
// where sliceSize is the product of the argument's dimensions strictly
// after the axis (empty product = 1).
func VerifyStatistics(op *ir.StatisticsOp) error {
	name := op.OpName()

	tensor, ok := op.Arg.Type.(ir.TensorType)
	if !ok {
		return verr(name, ErrNonTensorArg, "arg needs to be tensor type, got %s", op.Arg.Type)
	}

	// Verify layerStats attribute.
	if _, ok := op.LayerStats.Elem.(ir.FloatType); !ok {
		return verr(name, ErrLayerStatsNotFloat,
			"layerStats must have a floating point element type, got %s", op.LayerStats.Elem)
	}
	if op.LayerStats.Rank() != 1 || op.LayerStats.Dim(0) != 2 {
		return verr(name, ErrLayerStatsBadShape, "layerStats must have shape [2]")
	}

	// Verify axisStats (optional) attribute.
	if op.AxisStats != nil {
		if op.Axis == nil {
			return verr(name, ErrMissingAxis, "axis must be specified for axisStats")
		}
		if *op.Axis < 0 || *op.Axis >= int64(tensor.Rank()) {
			return verr(name, ErrAxisOutOfRange,
				"axis %d is out of range for arg of rank %d", *op.Axis, tensor.Rank())
		}

		sliceSize := trailingSliceSize(tensor.Shape, *op.Axis)

		if _, ok := op.AxisStats.Elem.(ir.FloatType); !ok {
			return verr(name, ErrAxisStatsNotFloat,
				"axisStats must have a floating point element type, got %s", op.AxisStats.Elem)
		}
		if op.AxisStats.Rank() != 2 || op.AxisStats.Dim(1) != 2 ||
			op.AxisStats.Dim(0) != sliceSize {
			return verr(name, ErrAxisStatsBadShape,
				"axisStats must have shape [N,2] where N = the slice size defined by the axis dim (expected N=%d)",
				sliceSize)
		}
	}
	return nil
}

// trailingSliceSize is the product of the dimensions strictly after
// axis. The last axis yields 1 (empty product). Callers bound-check
// axis against the shape's rank first.
func trailingSliceSize(shape []int64, axis int64) int64 {
	size := int64(1)
	for i := axis + 1; i < int64(len(shape)); i++ {
		size *= shape[i]
	}
	return size
}
