package quant

import "github.com/roach88/quantir/internal/ir"

// FoldStorageCast matches x -> [scast -> scast] -> y, returning x as the
// replacement for the second cast when the casts invert each other.
//
// The rule is a single-step peephole: it never chases chains longer than
// two. A chain of three or more collapses pairwise as the caller
// re-applies the rule after each fold (see dialect.Normalize).
//
// Returns (nil, false) when no simplification applies; that is a normal
// outcome, not an error.
func FoldStorageCast(op *ir.StorageCastOp) (*ir.Value, bool) {
	src, ok := op.Arg.Def.(*ir.StorageCastOp)
	if !ok {
		return nil, false
	}
	if !ir.Equal(src.Arg.Type, op.Result.Type) {
		return nil, false
	}
	return src.Arg, true
}
