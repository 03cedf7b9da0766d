package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID does not exist in the store.
var ErrRunNotFound = errors.New("calibration run not found")

// ReadRun returns a run and its records.
// Records are ordered deterministically: ORDER BY value_name COLLATE
// BINARY ASC, with axis slices in slice order.
//
// Returns an empty slice (not nil) when the run has no records.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, []Record, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, module_hash, label FROM runs WHERE id = ?
	`, runID).Scan(&run.ID, &run.ModuleHash, &run.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("read run: %w", err)
	}

	records, err := s.readRecords(ctx, runID)
	if err != nil {
		return Run{}, nil, err
	}
	return run, records, nil
}

// LatestRun returns the most recent run recorded for a module hash.
// UUIDv7 run IDs sort by creation time, so MAX(id) is the latest.
func (s *Store) LatestRun(ctx context.Context, moduleHash string) (Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, module_hash, label FROM runs
		WHERE module_hash = ?
		ORDER BY id COLLATE BINARY DESC
		LIMIT 1
	`, moduleHash).Scan(&run.ID, &run.ModuleHash, &run.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: no runs for module %s", ErrRunNotFound, moduleHash)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

func (s *Store) readRecords(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value_name, min, max, axis FROM layer_stats
		WHERE run_id = ?
		ORDER BY value_name COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query layer stats: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var axis sql.NullInt64
		if err := rows.Scan(&rec.ValueName, &rec.Min, &rec.Max, &axis); err != nil {
			return nil, fmt.Errorf("scan layer stats: %w", err)
		}
		if axis.Valid {
			v := axis.Int64
			rec.Axis = &v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate layer stats: %w", err)
	}

	for i := range records {
		pairs, err := s.readAxisPairs(ctx, runID, records[i].ValueName)
		if err != nil {
			return nil, err
		}
		records[i].AxisMinMax = pairs
	}
	return records, nil
}

func (s *Store) readAxisPairs(ctx context.Context, runID, valueName string) ([][2]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT min, max FROM axis_stats
		WHERE run_id = ? AND value_name = ?
		ORDER BY slice ASC
	`, runID, valueName)
	if err != nil {
		return nil, fmt.Errorf("query axis stats: %w", err)
	}
	defer rows.Close()

	var pairs [][2]float64
	for rows.Next() {
		var min, max float64
		if err := rows.Scan(&min, &max); err != nil {
			return nil, fmt.Errorf("scan axis stats: %w", err)
		}
		pairs = append(pairs, [2]float64{min, max})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate axis stats: %w", err)
	}
	return pairs, nil
}
