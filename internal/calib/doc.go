// Package calib imports calibration reports and attaches their
// statistics to modules as quant.stats operations.
//
// A calibration report is a YAML file listing observed [min, max]
// ranges per named value, optionally with per-axis slice ranges:
//
//	module_hash: <hash>   # optional; pins the report to a module revision
//	label: nightly
//	stats:
//	  - value: in
//	    min: -1.0
//	    max: 1.0
//	    axis: 1
//	    axis_min_max:
//	      - [-1.0, 1.0]
//	      - [-0.5, 0.5]
//
// Import writes a report into the store; Annotate reads a run back and
// inserts a verified statistics op after each named value's definition.
package calib
