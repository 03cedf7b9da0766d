package ir

import (
	"fmt"
	"strings"
)

// Attribute is a sealed interface over operation attributes.
// Only types in this package implement it.
//
// Attribute kinds:
//   - TypeAttr: wraps a Type (quantization specifications)
//   - IntAttr: a single integer (axis indices)
//   - FloatsAttr: a shaped block of floats (statistics)
type Attribute interface {
	attrNode() // Marker method - seals interface to this package
	String() string
}

// TypeAttr is a type-valued attribute. Quantization specifications on
// region operations are TypeAttrs carrying either a quantized type or a
// plain scalar numeric type.
type TypeAttr struct {
	Type Type
}

func (TypeAttr) attrNode() {}

func (a TypeAttr) String() string { return a.Type.String() }

// IntAttr is an integer-valued attribute.
type IntAttr struct {
	Value int64
}

func (IntAttr) attrNode() {}

func (a IntAttr) String() string { return fmt.Sprintf("%d", a.Value) }

// FloatsAttr is a dense, shaped block of float values. Layer statistics
// use shape [2]; axis statistics use shape [N, 2].
type FloatsAttr struct {
	Elem   Type // element type; FloatType for well-formed statistics
	Shape  []int64
	Values []float64
}

func (FloatsAttr) attrNode() {}

// Rank returns the number of dimensions of the attribute's shape.
func (a FloatsAttr) Rank() int { return len(a.Shape) }

// Dim returns the size of dimension i.
func (a FloatsAttr) Dim(i int) int64 { return a.Shape[i] }

func (a FloatsAttr) String() string {
	vals := make([]string, len(a.Values))
	for i, v := range a.Values {
		vals[i] = formatFloat(v)
	}
	return fmt.Sprintf("dense<[%s]> : %s",
		strings.Join(vals, ", "), shapedString("tensor", a.Shape, a.Elem))
}

// LayerStats builds a [min, max] statistics attribute over elem.
func LayerStats(elem Type, min, max float64) FloatsAttr {
	return FloatsAttr{Elem: elem, Shape: []int64{2}, Values: []float64{min, max}}
}

// AxisStats builds an [N, 2] statistics attribute from per-slice
// [min, max] pairs.
func AxisStats(elem Type, pairs [][2]float64) FloatsAttr {
	vals := make([]float64, 0, 2*len(pairs))
	for _, p := range pairs {
		vals = append(vals, p[0], p[1])
	}
	return FloatsAttr{Elem: elem, Shape: []int64{int64(len(pairs)), 2}, Values: vals}
}
