package ir

// Value is an SSA-style value: a type plus the operation that defines it.
// Def is nil for module arguments.
type Value struct {
	Name string // diagnostic label; "%0"-style names assigned by the printer when empty
	Type Type
	Def  Op
}

// Op is a sealed interface over quantir operations.
// Only types in this package implement it.
//
// Op kinds:
//   - RegionOp: marks a subgraph with per-operand/per-result quantization specs
//   - StatisticsOp: annotates a value with observed min/max statistics
//   - StorageCastOp: reinterprets a value between quantized and storage form
type Op interface {
	opNode() // Marker method - seals interface to this package

	// OpName returns the dialect operation name, e.g. "quant.region".
	OpName() string
}

// RegionOp bundles quantization specifications for each of its operands
// and results, marking a subgraph for mixed-precision handling.
//
// Invariants (enforced by quant.VerifyRegion, not by construction):
//   - len(Inputs) == len(InputSpecs)
//   - len(Results) == len(OutputSpecs)
//   - every (type, spec) pair satisfies quant.IsValidSpec
type RegionOp struct {
	Inputs      []*Value
	Results     []*Value
	InputSpecs  []Attribute
	OutputSpecs []Attribute
}

func (*RegionOp) opNode() {}

func (*RegionOp) OpName() string { return "quant.region" }

// NewRegion builds a RegionOp over inputs, defining one result value per
// entry of resultTypes.
func NewRegion(inputs []*Value, resultTypes []Type, inputSpecs, outputSpecs []Attribute) *RegionOp {
	op := &RegionOp{
		Inputs:      inputs,
		InputSpecs:  inputSpecs,
		OutputSpecs: outputSpecs,
	}
	op.Results = make([]*Value, len(resultTypes))
	for i, t := range resultTypes {
		op.Results[i] = &Value{Type: t, Def: op}
	}
	return op
}

// StatisticsOp annotates Arg with observed value-range statistics.
//
// LayerStats is a whole-tensor [min, max] pair. AxisStats, when present,
// holds one [min, max] pair per slice along Axis; Axis must then also be
// present. The result carries Arg's type unchanged.
type StatisticsOp struct {
	Arg        *Value
	LayerStats FloatsAttr
	AxisStats  *FloatsAttr
	Axis       *int64
	Result     *Value
}

func (*StatisticsOp) opNode() {}

func (*StatisticsOp) OpName() string { return "quant.stats" }

// NewStatistics builds a StatisticsOp over arg. axisStats and axis may be
// nil; the verifier rejects axisStats without axis.
func NewStatistics(arg *Value, layerStats FloatsAttr, axisStats *FloatsAttr, axis *int64) *StatisticsOp {
	op := &StatisticsOp{
		Arg:        arg,
		LayerStats: layerStats,
		AxisStats:  axisStats,
		Axis:       axis,
	}
	op.Result = &Value{Type: arg.Type, Def: op}
	return op
}

// StorageCastOp reinterprets Arg between a quantized type and its
// underlying storage type without changing bits.
type StorageCastOp struct {
	Arg    *Value
	Result *Value
}

func (*StorageCastOp) opNode() {}

func (*StorageCastOp) OpName() string { return "quant.scast" }

// NewStorageCast builds a StorageCastOp producing a value of type to.
func NewStorageCast(arg *Value, to Type) *StorageCastOp {
	op := &StorageCastOp{Arg: arg}
	op.Result = &Value{Type: to, Def: op}
	return op
}

// Module is an ordered list of operations over a set of argument values.
type Module struct {
	Name string
	Args []*Value
	Ops  []Op
}

// Results returns the values defined by op, in result order.
func Results(op Op) []*Value {
	switch o := op.(type) {
	case *RegionOp:
		return o.Results
	case *StatisticsOp:
		return []*Value{o.Result}
	case *StorageCastOp:
		return []*Value{o.Result}
	default:
		return nil
	}
}

// Operands returns the values consumed by op, in operand order.
func Operands(op Op) []*Value {
	switch o := op.(type) {
	case *RegionOp:
		return o.Inputs
	case *StatisticsOp:
		return []*Value{o.Arg}
	case *StorageCastOp:
		return []*Value{o.Arg}
	default:
		return nil
	}
}

// ReplaceAllUses rewrites every operand reference to old across the
// module to point at new. The host-side half of the folder contract:
// after a fold returns a replacement value, callers rewrite uses and
// then drop the folded operation.
func (m *Module) ReplaceAllUses(old, new *Value) {
	for _, op := range m.Ops {
		switch o := op.(type) {
		case *RegionOp:
			for i, v := range o.Inputs {
				if v == old {
					o.Inputs[i] = new
				}
			}
		case *StatisticsOp:
			if o.Arg == old {
				o.Arg = new
			}
		case *StorageCastOp:
			if o.Arg == old {
				o.Arg = new
			}
		}
	}
}

// RemoveOp deletes op from the module's op list. The caller is
// responsible for rewriting uses of its results first.
func (m *Module) RemoveOp(op Op) {
	for i, o := range m.Ops {
		if o == op {
			m.Ops = append(m.Ops[:i], m.Ops[i+1:]...)
			return
		}
	}
}
