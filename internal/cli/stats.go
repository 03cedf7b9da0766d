package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quantir/internal/calib"
	"github.com/roach88/quantir/internal/compiler"
	"github.com/roach88/quantir/internal/ir"
	"github.com/roach88/quantir/internal/printer"
	"github.com/roach88/quantir/internal/store"
)

// NewStatsCommand creates the stats command group.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Manage calibration statistics",
	}
	cmd.AddCommand(newStatsImportCommand(rootOpts))
	cmd.AddCommand(newStatsAnnotateCommand(rootOpts))
	return cmd
}

// ImportReport holds the result of importing one calibration report.
type ImportReport struct {
	Run        string `json:"run"`
	ModuleHash string `json:"module_hash"`
	Records    int    `json:"records"`
}

func newStatsImportCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath, modulePath string

	cmd := &cobra.Command{
		Use:   "import <report.yaml>",
		Short: "Import a calibration report into the store",
		Long: `Import a YAML calibration report as a new run in the store.

The run is keyed by the content hash of the target module, so annotate
can refuse statistics recorded against a different module revision.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatsImport(rootOpts, args[0], modulePath, dbPath, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "calib.db", "calibration store path")
	cmd.Flags().StringVar(&modulePath, "module", "", "target module file (required)")
	_ = cmd.MarkFlagRequired("module")
	return cmd
}

func runStatsImport(opts *RootOptions, reportPath, modulePath, dbPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	m, err := compiler.LoadModuleFile(modulePath)
	if err != nil {
		formatter.Error("CMD", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "compile failed", Err: err}
	}
	hash := ir.Hash(m)

	report, err := calib.LoadReport(reportPath)
	if err != nil {
		formatter.Error("CMD", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "load report failed", Err: err}
	}

	s, err := store.Open(dbPath)
	if err != nil {
		formatter.Error("CMD", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "open store failed", Err: err}
	}
	defer s.Close()

	run, err := calib.Import(cmd.Context(), s, report, hash)
	if err != nil {
		formatter.Error("CMD", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "import failed", Err: err}
	}

	result := ImportReport{Run: run.ID, ModuleHash: hash, Records: len(report.Stats)}
	if done, err := formatter.JSON(result); done || err != nil {
		return err
	}
	fmt.Fprintf(formatter.Writer, "imported %d records as run %s\n", result.Records, result.Run)
	return nil
}

// AnnotateReport holds the result of annotating one module.
type AnnotateReport struct {
	Module   string `json:"module"`
	Run      string `json:"run"`
	Inserted int    `json:"inserted"`
	Text     string `json:"text"`
}

func newStatsAnnotateCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath, runID string

	cmd := &cobra.Command{
		Use:   "annotate <module.cue>",
		Short: "Attach stored statistics to a module as quant.stats ops",
		Long: `Read a calibration run from the store and insert a quant.stats op
after each recorded value's definition, then print the module.

Without --run, the latest run recorded for the module's content hash is
used. A run recorded against a different module revision is rejected.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatsAnnotate(rootOpts, args[0], dbPath, runID, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "calib.db", "calibration store path")
	cmd.Flags().StringVar(&runID, "run", "", "calibration run ID (default: latest for module)")
	return cmd
}

func runStatsAnnotate(opts *RootOptions, modulePath, dbPath, runID string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	m, err := compiler.LoadModuleFile(modulePath)
	if err != nil {
		formatter.Error("CMD", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "compile failed", Err: err}
	}
	hash := ir.Hash(m)

	s, err := store.Open(dbPath)
	if err != nil {
		formatter.Error("CMD", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "open store failed", Err: err}
	}
	defer s.Close()

	ctx := cmd.Context()
	var run store.Run
	var records []store.Record
	if runID == "" {
		if run, err = s.LatestRun(ctx, hash); err != nil {
			formatter.Error("CMD", err.Error(), nil)
			return &ExitError{Code: ExitCommandError, Message: "no calibration run", Err: err}
		}
		runID = run.ID
	}
	run, records, err = s.ReadRun(ctx, runID)
	if err != nil {
		formatter.Error("CMD", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "read run failed", Err: err}
	}
	if run.ModuleHash != hash {
		msg := fmt.Sprintf("run %s was recorded against module %s, target module is %s",
			run.ID, run.ModuleHash, hash)
		formatter.Error("CMD", msg, nil)
		return &ExitError{Code: ExitCommandError, Message: "module hash mismatch"}
	}

	inserted, err := calib.Annotate(m, records)
	if err != nil {
		formatter.Error("CMD", err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: "annotate failed", Err: err}
	}
	formatter.VerboseLog("inserted %d stats ops from run %s", inserted, run.ID)

	result := AnnotateReport{Module: m.Name, Run: run.ID, Inserted: inserted, Text: printer.Print(m)}
	if done, err := formatter.JSON(result); done || err != nil {
		return err
	}
	fmt.Fprint(formatter.Writer, result.Text)
	return nil
}
