package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quantir/internal/compiler"
	"github.com/roach88/quantir/internal/dialect"
	"github.com/roach88/quantir/internal/ir"
	"github.com/roach88/quantir/internal/quant"
)

// ValidationReport holds the result of validating one module file.
type ValidationReport struct {
	Module string                     `json:"module"`
	Hash   string                     `json:"hash"`
	Ops    int                        `json:"ops"`
	Valid  bool                       `json:"valid"`
	Errors []*quant.VerificationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <module.cue>",
		Short: "Compile a module file and run the dialect verifiers",
		Long: `Compile a CUE module file to IR and verify every operation.

All verification failures are reported, one line per operation, with the
Q-code of the violated constraint. Exit code 1 means the module did not
verify; exit code 2 means the file could not be compiled at all.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	m, err := compiler.LoadModuleFile(path)
	if err != nil {
		formatter.Error("CMD", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "compile failed", Err: err}
	}
	formatter.VerboseLog("compiled %s: %d args, %d ops", path, len(m.Args), len(m.Ops))

	report := verifyModule(m)
	if done, err := formatter.JSON(report); done || err != nil {
		if err == nil && !report.Valid {
			return &ExitError{Code: ExitFailure, Message: "module did not verify"}
		}
		return err
	}

	if report.Valid {
		fmt.Fprintf(formatter.Writer, "module %q: OK (%d ops)\n", report.Module, report.Ops)
		return nil
	}
	for _, verr := range report.Errors {
		fmt.Fprintln(formatter.Writer, verr.Error())
	}
	return &ExitError{Code: ExitFailure, Message: "module did not verify"}
}

func verifyModule(m *ir.Module) ValidationReport {
	report := ValidationReport{
		Module: m.Name,
		Hash:   ir.Hash(m),
		Ops:    len(m.Ops),
	}
	for _, err := range dialect.Quant().VerifyModule(m) {
		if verr, ok := err.(*quant.VerificationError); ok {
			report.Errors = append(report.Errors, verr)
		} else {
			report.Errors = append(report.Errors, &quant.VerificationError{
				Op: "unknown", Code: quant.ErrUnsupportedOp, Message: err.Error(),
			})
		}
	}
	report.Valid = len(report.Errors) == 0
	return report
}
