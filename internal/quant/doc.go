// Package quant implements the quantization dialect's structural checks
// and its one algebraic simplification.
//
// The package contains three verifiers and a folder:
//   - IsValidSpec: spec-vs-expressed-type compatibility predicate
//   - VerifyRegion: arity and per-slot spec checks on region operations
//   - VerifyStatistics: shape/type checks on statistics annotations
//   - FoldStorageCast: collapses a pair of inverse storage casts
//
// All functions are pure, read-only queries over IR the caller owns.
// Nothing here allocates, mutates, or destroys IR nodes; verifiers
// return verdicts and the folder returns a replacement value that the
// caller applies (see dialect.Normalize).
package quant
