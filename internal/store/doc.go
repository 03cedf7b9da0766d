// Package store provides durable storage for calibration statistics.
//
// Observed value ranges (whole-tensor and per-axis min/max pairs) are
// recorded per calibration run and keyed by the content hash of the
// module they were observed against, so stale statistics can never be
// attached to a different module revision.
//
// Storage is SQLite with WAL mode for concurrent read access.
package store
