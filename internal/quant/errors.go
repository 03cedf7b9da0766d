package quant

import (
	"errors"
	"fmt"
)

// Verification error codes (Q100-Q199)
const (
	// General verification errors (Q100)
	ErrUnsupportedOp = "Q100" // op kind has no registered verifier

	// Region operation errors (Q101-Q109)
	ErrArityMismatch          = "Q101" // operand/result count vs spec count
	ErrIncompatibleInputSpec  = "Q102" // input spec fails the checker
	ErrIncompatibleOutputSpec = "Q103" // output spec fails the checker

	// Statistics operation errors (Q110-Q119)
	ErrNonTensorArg       = "Q110" // statistics operand is not a tensor
	ErrLayerStatsNotFloat = "Q111" // layer stats element type not float
	ErrLayerStatsBadShape = "Q112" // layer stats shape is not [2]
	ErrMissingAxis        = "Q113" // axis stats given without axis
	ErrAxisStatsNotFloat  = "Q114" // axis stats element type not float
	ErrAxisStatsBadShape  = "Q115" // axis stats shape is not [sliceSize, 2]
	ErrAxisOutOfRange     = "Q116" // axis is negative or >= the arg's rank
)

// VerificationError represents a structural verification failure on a
// single operation. Verification is deterministic over immutable IR, so
// these are never retried; the CLI surfaces them as diagnostics.
type VerificationError struct {
	Op      string `json:"op"`      // dialect op name, e.g. "quant.stats"
	Code    string `json:"code"`    // Q1xx code
	Message string `json:"message"` // violated constraint
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Op, e.Message)
}

// HasCode reports whether err is (or wraps) a VerificationError with the
// given code.
func HasCode(err error, code string) bool {
	var ve *VerificationError
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}

func verr(op, code, format string, args ...any) *VerificationError {
	return &VerificationError{
		Op:      op,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
