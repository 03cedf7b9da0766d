// Package ir provides the intermediate representation types for quantir.
//
// This package contains type, attribute, and operation definitions only.
// All other internal packages import ir; ir imports nothing internal. This
// ensures IR remains the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Type, Attribute, and Op are sealed interfaces (marker methods)
//   - Quantized types carry their expressed type; compatibility checks
//     live on the type, not on the verifiers that consume them
//   - Operations never mutate their operands; rewrites go through
//     Module.ReplaceAllUses so use chains stay consistent
package ir
