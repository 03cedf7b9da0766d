package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Run identifies one calibration run against one module revision.
type Run struct {
	ID         string `json:"id"`
	ModuleHash string `json:"module_hash"`
	Label      string `json:"label,omitempty"`
}

// Record holds the observed statistics for one named value.
//
// Min/Max are the whole-tensor range. AxisMinMax, when non-empty, holds
// one [min, max] pair per slice along Axis; Axis must then be set.
type Record struct {
	ValueName  string
	Min, Max   float64
	Axis       *int64
	AxisMinMax [][2]float64
}

// CreateRun inserts a new calibration run for the given module hash.
// Run IDs are UUIDv7 so runs sort by creation order.
func (s *Store) CreateRun(ctx context.Context, moduleHash, label string) (Run, error) {
	run := Run{
		ID:         uuid.Must(uuid.NewV7()).String(),
		ModuleHash: moduleHash,
		Label:      label,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, module_hash, label) VALUES (?, ?, ?)
	`, run.ID, run.ModuleHash, run.Label)
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// WriteRecord inserts the statistics for one value into a run.
// Uses ON CONFLICT DO NOTHING for idempotency - re-importing the same
// report is a no-op. The layer row and axis rows are written in one
// transaction so a record is never half-visible.
func (s *Store) WriteRecord(ctx context.Context, runID string, rec Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	defer tx.Rollback()

	var axis any
	if rec.Axis != nil {
		axis = *rec.Axis
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO layer_stats (run_id, value_name, min, max, axis)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, runID, rec.ValueName, rec.Min, rec.Max, axis)
	if err != nil {
		return fmt.Errorf("write record %q: %w", rec.ValueName, err)
	}

	for slice, pair := range rec.AxisMinMax {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO axis_stats (run_id, value_name, slice, min, max)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, runID, rec.ValueName, slice, pair[0], pair[1])
		if err != nil {
			return fmt.Errorf("write record %q slice %d: %w", rec.ValueName, slice, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write record %q: %w", rec.ValueName, err)
	}
	return nil
}
