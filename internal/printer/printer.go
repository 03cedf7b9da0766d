// Package printer renders modules into a deterministic textual form for
// diagnostics and golden-file comparison. The rendering is one op per
// line with MLIR-flavored type syntax; unnamed values are numbered in
// print order so structurally identical modules print identically.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/quantir/internal/ir"
)

// Print renders m as text.
func Print(m *ir.Module) string {
	p := &state{names: make(map[*ir.Value]string)}
	var sb strings.Builder

	fmt.Fprintf(&sb, "module %q {\n", m.Name)
	for _, arg := range m.Args {
		fmt.Fprintf(&sb, "  %s: %s\n", p.name(arg), arg.Type)
	}
	for _, op := range m.Ops {
		sb.WriteString("  ")
		p.writeOp(&sb, op)
		sb.WriteByte('\n')
	}
	sb.WriteString("}\n")
	return sb.String()
}

type state struct {
	names map[*ir.Value]string
	next  int
}

func (p *state) name(v *ir.Value) string {
	if n, ok := p.names[v]; ok {
		return n
	}
	n := "%" + strconv.Itoa(p.next)
	if v.Name != "" {
		n = "%" + v.Name
	} else {
		p.next++
	}
	p.names[v] = n
	return n
}

func (p *state) writeOp(sb *strings.Builder, op ir.Op) {
	results := ir.Results(op)
	for i, r := range results {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.name(r))
	}
	if len(results) > 0 {
		sb.WriteString(" = ")
	}
	sb.WriteString(op.OpName())
	sb.WriteByte('(')
	for i, v := range ir.Operands(op) {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.name(v))
	}
	sb.WriteByte(')')

	switch o := op.(type) {
	case *ir.StatisticsOp:
		sb.WriteString(" {layerStats = ")
		sb.WriteString(o.LayerStats.String())
		if o.AxisStats != nil {
			sb.WriteString(", axisStats = ")
			sb.WriteString(o.AxisStats.String())
		}
		if o.Axis != nil {
			fmt.Fprintf(sb, ", axis = %d", *o.Axis)
		}
		sb.WriteString("}")
	case *ir.RegionOp:
		sb.WriteString(" {input_specs = [")
		writeAttrList(sb, o.InputSpecs)
		sb.WriteString("], output_specs = [")
		writeAttrList(sb, o.OutputSpecs)
		sb.WriteString("]}")
	}

	if len(results) > 0 {
		sb.WriteString(" : ")
		for i, r := range results {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.Type.String())
		}
	}
}

func writeAttrList(sb *strings.Builder, attrs []ir.Attribute) {
	for i, a := range attrs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
}
