// Package dialect binds the quant verifiers and folder into a static
// registration table and drives them across whole modules.
//
// The host-facing hooks are plain functions keyed by op name: verifiers
// run after construction or parsing, folders run during normalization.
// There is no hidden global state; Quant() builds a fresh table.
package dialect

import (
	"github.com/roach88/quantir/internal/ir"
	"github.com/roach88/quantir/internal/quant"
)

// VerifyFunc checks one operation, returning nil or a verification error.
type VerifyFunc func(ir.Op) error

// FoldFunc attempts a local simplification of one operation. It returns
// the replacement value and true when the operation folds away.
type FoldFunc func(ir.Op) (*ir.Value, bool)

// Dialect is a registration table mapping op names to their hooks.
type Dialect struct {
	Name      string
	Verifiers map[string]VerifyFunc
	Folders   map[string]FoldFunc
}

// Quant returns the quantization dialect table: verifiers for the region
// and statistics operations, and the storage-cast folder.
func Quant() *Dialect {
	return &Dialect{
		Name: "quant",
		Verifiers: map[string]VerifyFunc{
			(&ir.RegionOp{}).OpName():      quant.Verify,
			(&ir.StatisticsOp{}).OpName():  quant.Verify,
			(&ir.StorageCastOp{}).OpName(): quant.Verify,
		},
		Folders: map[string]FoldFunc{
			(&ir.StorageCastOp{}).OpName(): foldStorageCast,
		},
	}
}

func foldStorageCast(op ir.Op) (*ir.Value, bool) {
	scast, ok := op.(*ir.StorageCastOp)
	if !ok {
		return nil, false
	}
	return quant.FoldStorageCast(scast)
}

// VerifyModule runs every registered verifier over the module's ops.
// Returns all errors found (does not fail-fast); per-op verifiers still
// blame only the first violated constraint of their op.
func (d *Dialect) VerifyModule(m *ir.Module) []error {
	var errs []error
	for _, op := range m.Ops {
		verify, ok := d.Verifiers[op.OpName()]
		if !ok {
			continue
		}
		if err := verify(op); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Normalize applies the registered folders across the module until no
// more apply, rewriting uses and dropping folded ops. Each fold step is
// local; longer storage-cast chains collapse pairwise across iterations.
// Returns the number of operations folded away.
func (d *Dialect) Normalize(m *ir.Module) int {
	folded := 0
	for {
		changed := false
		for _, op := range m.Ops {
			fold, ok := d.Folders[op.OpName()]
			if !ok {
				continue
			}
			replacement, ok := fold(op)
			if !ok {
				continue
			}
			for _, result := range ir.Results(op) {
				m.ReplaceAllUses(result, replacement)
			}
			m.RemoveOp(op)
			folded++
			changed = true
			break // op list mutated; rescan from the top
		}
		if !changed {
			return folded
		}
	}
}
