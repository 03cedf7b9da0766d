package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quantir/internal/compiler"
	"github.com/roach88/quantir/internal/dialect"
	"github.com/roach88/quantir/internal/printer"
)

// NormalizeReport holds the result of normalizing one module file.
type NormalizeReport struct {
	Module string `json:"module"`
	Folded int    `json:"folded"`
	Text   string `json:"text"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <module.cue>",
		Short: "Fold inverse storage casts and print the module",
		Long: `Compile a CUE module file, verify it, apply the storage-cast folder
to fixpoint, and print the resulting module.

The folder collapses back-to-back casts that invert each other; longer
chains collapse pairwise across iterations. The module must verify
before normalization runs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runNormalize(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	m, err := compiler.LoadModuleFile(path)
	if err != nil {
		formatter.Error("CMD", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "compile failed", Err: err}
	}

	if report := verifyModule(m); !report.Valid {
		for _, verr := range report.Errors {
			fmt.Fprintln(formatter.Writer, verr.Error())
		}
		return &ExitError{Code: ExitFailure, Message: "module did not verify"}
	}

	folded := dialect.Quant().Normalize(m)
	formatter.VerboseLog("folded %d ops", folded)

	report := NormalizeReport{Module: m.Name, Folded: folded, Text: printer.Print(m)}
	if done, err := formatter.JSON(report); done || err != nil {
		return err
	}
	fmt.Fprint(formatter.Writer, report.Text)
	return nil
}
