package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is a sealed interface over the quantir type system.
// Only types in this package implement it. The marker method pattern
// prevents external implementations and enables exhaustive type switches
// in the verifiers and the printer.
//
// Type kinds:
//   - FloatType, IntType: scalar numeric types
//   - TensorType, VectorType: shaped container types
//   - AnyQuantizedType, UniformQuantizedType, UniformQuantizedPerAxisType,
//     CalibratedQuantizedType: quantized types (see QuantizedType)
type Type interface {
	typeNode() // Marker method - seals interface to this package
	String() string
}

// QuantizedType is the common interface of the four quantized type kinds.
//
// A quantized type represents a real value via a storage encoding plus
// metadata, relative to a declared expressed (pre-quantization) type.
type QuantizedType interface {
	Type

	// StorageType returns the underlying storage type, or nil when the
	// type carries no storage encoding (CalibratedQuantizedType).
	StorageType() Type

	// ExpressedType returns the declared expressed type.
	ExpressedType() Type

	// IsCompatibleExpressedType reports whether candidate could have its
	// values expressed by this type. Shaped candidates are compared by
	// element type.
	IsCompatibleExpressedType(candidate Type) bool
}

// FloatType is a floating point scalar type of the given bit width.
type FloatType struct {
	Width int // 16, 32, or 64
}

func (FloatType) typeNode() {}

func (t FloatType) String() string { return fmt.Sprintf("f%d", t.Width) }

// F32 and F64 are the common expressed types.
var (
	F16 = FloatType{Width: 16}
	F32 = FloatType{Width: 32}
	F64 = FloatType{Width: 64}
)

// IntType is an integer scalar type of the given bit width.
type IntType struct {
	Width    int
	Unsigned bool
}

func (IntType) typeNode() {}

func (t IntType) String() string {
	if t.Unsigned {
		return fmt.Sprintf("ui%d", t.Width)
	}
	return fmt.Sprintf("i%d", t.Width)
}

// I8 and I32 are the common storage types.
var (
	I8  = IntType{Width: 8}
	UI8 = IntType{Width: 8, Unsigned: true}
	I16 = IntType{Width: 16}
	I32 = IntType{Width: 32}
)

// TensorType is a shaped container over a scalar or quantized element type.
type TensorType struct {
	Elem  Type
	Shape []int64
}

func (TensorType) typeNode() {}

func (t TensorType) String() string { return shapedString("tensor", t.Shape, t.Elem) }

// Rank returns the number of dimensions.
func (t TensorType) Rank() int { return len(t.Shape) }

// VectorType is a fixed-shape vector container.
type VectorType struct {
	Elem  Type
	Shape []int64
}

func (VectorType) typeNode() {}

func (t VectorType) String() string { return shapedString("vector", t.Shape, t.Elem) }

// AnyQuantizedType declares storage and expressed types without fixing
// scale or zero point. Used as a placeholder spec before calibration
// picks concrete parameters.
type AnyQuantizedType struct {
	Storage   Type
	Expressed Type
}

func (AnyQuantizedType) typeNode() {}

func (t AnyQuantizedType) StorageType() Type   { return t.Storage }
func (t AnyQuantizedType) ExpressedType() Type { return t.Expressed }

func (t AnyQuantizedType) IsCompatibleExpressedType(candidate Type) bool {
	return compatibleExpressed(t.Expressed, candidate)
}

func (t AnyQuantizedType) String() string {
	return fmt.Sprintf("!quant.any<%s:%s>", t.Storage, t.Expressed)
}

// UniformQuantizedType is a per-tensor affine quantized type:
// real = (stored - ZeroPoint) * Scale.
type UniformQuantizedType struct {
	Storage   Type
	Expressed Type
	Scale     float64
	ZeroPoint int64
}

func (UniformQuantizedType) typeNode() {}

func (t UniformQuantizedType) StorageType() Type   { return t.Storage }
func (t UniformQuantizedType) ExpressedType() Type { return t.Expressed }

func (t UniformQuantizedType) IsCompatibleExpressedType(candidate Type) bool {
	return compatibleExpressed(t.Expressed, candidate)
}

func (t UniformQuantizedType) String() string {
	return fmt.Sprintf("!quant.uniform<%s:%s, %s:%d>",
		t.Storage, t.Expressed, formatFloat(t.Scale), t.ZeroPoint)
}

// UniformQuantizedPerAxisType is an affine quantized type with one
// scale/zero-point pair per slice along QuantizedDim.
type UniformQuantizedPerAxisType struct {
	Storage      Type
	Expressed    Type
	Scales       []float64
	ZeroPoints   []int64
	QuantizedDim int64
}

func (UniformQuantizedPerAxisType) typeNode() {}

func (t UniformQuantizedPerAxisType) StorageType() Type   { return t.Storage }
func (t UniformQuantizedPerAxisType) ExpressedType() Type { return t.Expressed }

func (t UniformQuantizedPerAxisType) IsCompatibleExpressedType(candidate Type) bool {
	return compatibleExpressed(t.Expressed, candidate)
}

func (t UniformQuantizedPerAxisType) String() string {
	pairs := make([]string, len(t.Scales))
	for i, s := range t.Scales {
		var zp int64
		if i < len(t.ZeroPoints) {
			zp = t.ZeroPoints[i]
		}
		pairs[i] = fmt.Sprintf("%s:%d", formatFloat(s), zp)
	}
	return fmt.Sprintf("!quant.uniform<%s:%s:%d, {%s}>",
		t.Storage, t.Expressed, t.QuantizedDim, strings.Join(pairs, ", "))
}

// CalibratedQuantizedType records an observed [Min, Max] range for an
// expressed type. It has no storage encoding; a later pass picks one.
type CalibratedQuantizedType struct {
	Expressed Type
	Min       float64
	Max       float64
}

func (CalibratedQuantizedType) typeNode() {}

func (t CalibratedQuantizedType) StorageType() Type   { return nil }
func (t CalibratedQuantizedType) ExpressedType() Type { return t.Expressed }

func (t CalibratedQuantizedType) IsCompatibleExpressedType(candidate Type) bool {
	return compatibleExpressed(t.Expressed, candidate)
}

func (t CalibratedQuantizedType) String() string {
	return fmt.Sprintf("!quant.calibrated<%s<%s:%s>>",
		t.Expressed, formatFloat(t.Min), formatFloat(t.Max))
}

// compatibleExpressed compares a declared expressed type against a
// candidate. Shaped candidates match on their element type.
func compatibleExpressed(expressed, candidate Type) bool {
	if expressed == nil {
		return false
	}
	switch c := candidate.(type) {
	case TensorType:
		return Equal(expressed, c.Elem)
	case VectorType:
		return Equal(expressed, c.Elem)
	default:
		return Equal(expressed, candidate)
	}
}

// IsContainer reports whether t is a shaped container type.
func IsContainer(t Type) bool {
	switch t.(type) {
	case TensorType, VectorType:
		return true
	default:
		return false
	}
}

// ElementType returns the element type of a container, or t itself for
// scalar and quantized types.
func ElementType(t Type) Type {
	switch c := t.(type) {
	case TensorType:
		return c.Elem
	case VectorType:
		return c.Elem
	default:
		return t
	}
}

// Equal reports structural equality of two types.
// Shapes, scales, and zero points are compared elementwise.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case FloatType:
		y, ok := b.(FloatType)
		return ok && x == y
	case IntType:
		y, ok := b.(IntType)
		return ok && x == y
	case TensorType:
		y, ok := b.(TensorType)
		return ok && shapeEqual(x.Shape, y.Shape) && Equal(x.Elem, y.Elem)
	case VectorType:
		y, ok := b.(VectorType)
		return ok && shapeEqual(x.Shape, y.Shape) && Equal(x.Elem, y.Elem)
	case AnyQuantizedType:
		y, ok := b.(AnyQuantizedType)
		return ok && Equal(x.Storage, y.Storage) && Equal(x.Expressed, y.Expressed)
	case UniformQuantizedType:
		y, ok := b.(UniformQuantizedType)
		return ok && Equal(x.Storage, y.Storage) && Equal(x.Expressed, y.Expressed) &&
			x.Scale == y.Scale && x.ZeroPoint == y.ZeroPoint
	case UniformQuantizedPerAxisType:
		y, ok := b.(UniformQuantizedPerAxisType)
		return ok && Equal(x.Storage, y.Storage) && Equal(x.Expressed, y.Expressed) &&
			x.QuantizedDim == y.QuantizedDim &&
			floatsEqual(x.Scales, y.Scales) && intsEqual(x.ZeroPoints, y.ZeroPoints)
	case CalibratedQuantizedType:
		y, ok := b.(CalibratedQuantizedType)
		return ok && Equal(x.Expressed, y.Expressed) && x.Min == y.Min && x.Max == y.Max
	default:
		return false
	}
}

func shapeEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intsEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func shapedString(kind string, shape []int64, elem Type) string {
	var sb strings.Builder
	sb.WriteString(kind)
	sb.WriteByte('<')
	for _, d := range shape {
		sb.WriteString(strconv.FormatInt(d, 10))
		sb.WriteByte('x')
	}
	sb.WriteString(elem.String())
	sb.WriteByte('>')
	return sb.String()
}

// formatFloat renders a float in the shortest round-trippable form so
// printed modules are deterministic.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
