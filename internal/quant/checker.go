package quant

import "github.com/roach88/quantir/internal/ir"

// IsValidSpec reports whether a quantization specification attribute is
// compatible with the expressed type of the slot it annotates.
//
// Rules, in order:
//  1. Only type-valued attributes are specifications.
//  2. The carried type must be element-level: container types (tensor,
//     vector) are rejected outright.
//  3. A quantized spec is valid iff it declares expressed as its
//     compatible expressed type.
//  4. A plain numeric spec is valid iff it equals expressed, or the
//     element type of expressed when expressed is a container.
//
// IsValidSpec is a pure function with no side effects.
func IsValidSpec(spec ir.Attribute, expressed ir.Type) bool {
	typeAttr, ok := spec.(ir.TypeAttr)
	if !ok {
		return false
	}
	t := typeAttr.Type
	if t == nil || ir.IsContainer(t) {
		return false
	}

	// The spec is either a quantized type compatible with the expressed
	// type, or a primitive type equal to the (element type of) the
	// expressed type.
	if quantized, ok := t.(ir.QuantizedType); ok {
		return quantized.IsCompatibleExpressedType(expressed)
	}
	return ir.Equal(t, ir.ElementType(expressed))
}
