// Package fragment extracts per-device bridge-domain fragments from parser
// output (spec.md §3, §4.4). A BDFragment is one device's view of a bridge
// domain: its member interfaces and their per-interface VLAN manipulations.
// Fragments are immutable once extracted and are never dropped, even when
// empty.
package fragment

import "github.com/dnaas-fabric/fabricbd/internal/parser"

// VLANSemantics is the per-interface-in-fragment tag behavior: a vlan
// expression (single id, list, range, or the full 1-4094 span) plus any
// ingress push, egress pop, or swap (spec.md §3).
type VLANSemantics struct {
	VLANExpr  string
	PushOuter int
	PopCount  int
	SwapFrom  int
	SwapTo    int
}

// Member is one interface attached to a BDFragment, with its canonical name
// and VLAN semantics.
type Member struct {
	Interface string // canonical form, e.g. "Ethernet0.100" or "bundle-1.100"
	VLAN      VLANSemantics
	AdminUp   bool
}

// BDFragment is a single device's view of a bridge domain.
type BDFragment struct {
	Device  string
	BDName  string
	Members []Member
	Empty   bool // BD exists on this device but has no member interfaces
}

func fromParserVLAN(v parser.VLANManipulation) VLANSemantics {
	return VLANSemantics{
		VLANExpr:  v.VLANExpr,
		PushOuter: v.PushOuter,
		PopCount:  v.PopCount,
		SwapFrom:  v.SwapFrom,
		SwapTo:    v.SwapTo,
	}
}
