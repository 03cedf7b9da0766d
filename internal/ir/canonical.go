package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for content-addressed module identity.
// Version suffix enables future algorithm migration.
const DomainModule = "quantir/module/v1"

// Hash computes the content-addressed identity of a module.
//
// The hash covers the canonical rendering of the module: NFC-normalized
// names, round-trippable float formatting, and identity-based value
// numbering in definition order. Two structurally identical modules hash
// equal regardless of how their values were labeled in source.
//
// Calibration records are keyed by this hash so statistics imported into
// a store can never be attached to a different module revision.
func Hash(m *Module) string {
	data := canonicalBytes(m)
	h := sha256.New()
	h.Write([]byte(DomainModule))
	h.Write([]byte{0x00}) // null separator prevents domain/data ambiguity
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalBytes renders the module into a deterministic byte form.
// Names are NFC-normalized; values are referred to by definition-order
// number, not by label.
func canonicalBytes(m *Module) []byte {
	num := make(map[*Value]int)
	next := 0
	number := func(v *Value) int {
		if n, ok := num[v]; ok {
			return n
		}
		num[v] = next
		next++
		return num[v]
	}

	var sb strings.Builder
	sb.WriteString("module ")
	sb.WriteString(norm.NFC.String(m.Name))
	sb.WriteByte('\n')
	for _, arg := range m.Args {
		fmt.Fprintf(&sb, "arg %d %s\n", number(arg), arg.Type)
	}
	for _, op := range m.Ops {
		sb.WriteString(op.OpName())
		for _, v := range Operands(op) {
			fmt.Fprintf(&sb, " %%%d", number(v))
		}
		sb.WriteString(" ->")
		for _, v := range Results(op) {
			fmt.Fprintf(&sb, " %%%d:%s", number(v), v.Type)
		}
		switch o := op.(type) {
		case *RegionOp:
			sb.WriteString(" in[")
			writeAttrs(&sb, o.InputSpecs)
			sb.WriteString("] out[")
			writeAttrs(&sb, o.OutputSpecs)
			sb.WriteByte(']')
		case *StatisticsOp:
			sb.WriteString(" layer=")
			sb.WriteString(o.LayerStats.String())
			if o.AxisStats != nil {
				sb.WriteString(" axis_stats=")
				sb.WriteString(o.AxisStats.String())
			}
			if o.Axis != nil {
				sb.WriteString(" axis=")
				sb.WriteString(strconv.FormatInt(*o.Axis, 10))
			}
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

func writeAttrs(sb *strings.Builder, attrs []Attribute) {
	for i, a := range attrs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
}
