package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/quantir/internal/ir"
)

func TestIsValidSpec_QuantizedSpecCompatibleExpressed(t *testing.T) {
	spec := ir.TypeAttr{Type: ir.UniformQuantizedType{
		Storage: ir.I8, Expressed: ir.F32, Scale: 0.5, ZeroPoint: 10,
	}}

	assert.True(t, IsValidSpec(spec, ir.TensorType{Elem: ir.F32, Shape: []int64{4}}))
	assert.True(t, IsValidSpec(spec, ir.VectorType{Elem: ir.F32, Shape: []int64{4}}))
	assert.True(t, IsValidSpec(spec, ir.F32))
}

func TestIsValidSpec_QuantizedSpecWrongExpressed(t *testing.T) {
	spec := ir.TypeAttr{Type: ir.UniformQuantizedType{
		Storage: ir.I8, Expressed: ir.F32, Scale: 0.5,
	}}

	assert.False(t, IsValidSpec(spec, ir.TensorType{Elem: ir.F64, Shape: []int64{4}}))
	assert.False(t, IsValidSpec(spec, ir.F64))
}

func TestIsValidSpec_ContainerSpecAlwaysRejected(t *testing.T) {
	// Specs describe element-level types; a container-typed spec is
	// invalid regardless of the expressed type.
	tensorSpec := ir.TypeAttr{Type: ir.TensorType{Elem: ir.F32, Shape: []int64{4}}}
	vectorSpec := ir.TypeAttr{Type: ir.VectorType{Elem: ir.F32, Shape: []int64{4}}}

	expressed := []ir.Type{
		ir.F32,
		ir.TensorType{Elem: ir.F32, Shape: []int64{4}},
		ir.VectorType{Elem: ir.F32, Shape: []int64{4}},
	}
	for _, e := range expressed {
		assert.False(t, IsValidSpec(tensorSpec, e), "tensor spec vs %s", e)
		assert.False(t, IsValidSpec(vectorSpec, e), "vector spec vs %s", e)
	}
}

func TestIsValidSpec_PrimitiveSpecMatchesElementType(t *testing.T) {
	spec := ir.TypeAttr{Type: ir.F32}

	assert.True(t, IsValidSpec(spec, ir.TensorType{Elem: ir.F32, Shape: []int64{4}}))
	assert.True(t, IsValidSpec(spec, ir.VectorType{Elem: ir.F32, Shape: []int64{4}}))
	assert.False(t, IsValidSpec(spec, ir.TensorType{Elem: ir.F64, Shape: []int64{4}}))
}

func TestIsValidSpec_PrimitiveSpecScalarExpressed(t *testing.T) {
	assert.True(t, IsValidSpec(ir.TypeAttr{Type: ir.F32}, ir.F32))
	assert.False(t, IsValidSpec(ir.TypeAttr{Type: ir.F32}, ir.F64))
	assert.False(t, IsValidSpec(ir.TypeAttr{Type: ir.I8}, ir.UI8))
}

func TestIsValidSpec_NonTypeAttrRejected(t *testing.T) {
	assert.False(t, IsValidSpec(ir.IntAttr{Value: 1}, ir.F32))
	assert.False(t, IsValidSpec(ir.LayerStats(ir.F32, -1, 1), ir.F32))
}

func TestIsValidSpec_AnyAndCalibratedSpecs(t *testing.T) {
	expressed := ir.TensorType{Elem: ir.F32, Shape: []int64{2}}

	assert.True(t, IsValidSpec(ir.TypeAttr{Type: ir.AnyQuantizedType{
		Storage: ir.I8, Expressed: ir.F32,
	}}, expressed))
	assert.True(t, IsValidSpec(ir.TypeAttr{Type: ir.CalibratedQuantizedType{
		Expressed: ir.F32, Min: -1, Max: 1,
	}}, expressed))
	assert.False(t, IsValidSpec(ir.TypeAttr{Type: ir.CalibratedQuantizedType{
		Expressed: ir.F64, Min: -1, Max: 1,
	}}, expressed))
}
