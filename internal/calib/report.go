package calib

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quantir/internal/store"
)

// Report is a parsed calibration report file.
type Report struct {
	// ModuleHash optionally pins the report to a module revision.
	// Import rejects the report if it does not match the target module.
	ModuleHash string `yaml:"module_hash,omitempty"`

	// Label names the calibration run (e.g. "nightly", "imagenet-val").
	Label string `yaml:"label,omitempty"`

	// Stats lists observed ranges per value.
	Stats []Entry `yaml:"stats"`
}

// Entry is the observed statistics for one named value.
type Entry struct {
	// Value names a module argument or op result.
	Value string `yaml:"value"`

	// Min and Max are the whole-tensor observed range.
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`

	// Axis selects the dimension for per-slice statistics.
	Axis *int64 `yaml:"axis,omitempty"`

	// AxisMinMax holds one [min, max] pair per slice along Axis.
	AxisMinMax [][]float64 `yaml:"axis_min_max,omitempty"`
}

// LoadReport reads and structurally validates a calibration report.
// Shape constraints against the target module are not checked here;
// Annotate verifies the generated statistics ops instead.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}

	if len(report.Stats) == 0 {
		return nil, fmt.Errorf("report %s has no stats entries", path)
	}
	for i, entry := range report.Stats {
		if entry.Value == "" {
			return nil, fmt.Errorf("report %s: stats[%d] missing value name", path, i)
		}
		for j, pair := range entry.AxisMinMax {
			if len(pair) != 2 {
				return nil, fmt.Errorf("report %s: stats[%d].axis_min_max[%d] must be a [min, max] pair",
					path, i, j)
			}
		}
		if len(entry.AxisMinMax) > 0 && entry.Axis == nil {
			return nil, fmt.Errorf("report %s: stats[%d] has axis_min_max but no axis", path, i)
		}
	}
	return &report, nil
}

// Import writes a report into the store as a new calibration run
// against the given module hash.
func Import(ctx context.Context, s *store.Store, report *Report, moduleHash string) (store.Run, error) {
	if report.ModuleHash != "" && report.ModuleHash != moduleHash {
		return store.Run{}, fmt.Errorf("report is pinned to module %s, target module is %s",
			report.ModuleHash, moduleHash)
	}

	run, err := s.CreateRun(ctx, moduleHash, report.Label)
	if err != nil {
		return store.Run{}, err
	}
	for _, entry := range report.Stats {
		rec := store.Record{
			ValueName: entry.Value,
			Min:       entry.Min,
			Max:       entry.Max,
			Axis:      entry.Axis,
		}
		for _, pair := range entry.AxisMinMax {
			rec.AxisMinMax = append(rec.AxisMinMax, [2]float64{pair[0], pair[1]})
		}
		if err := s.WriteRecord(ctx, run.ID, rec); err != nil {
			return store.Run{}, err
		}
	}
	return run, nil
}
