// Package parser tokenizes line-oriented device CLI output into typed
// records (spec.md §4.2). Every input line that is not blank and does not
// start with "!" or "#" either matches a pattern and yields a record, or is
// appended to a per-device ParseAnomaly. Blank lines and "!"/"#" comment
// lines are skipped without a record or an anomaly.
//
// Command output is consumed by pattern table, not by command name, so a
// vendor-equivalent dialect only needs a new pattern table entry rather
// than a new parser (spec.md §6).
package parser

// CommandKind identifies which pattern table a raw dump should be parsed
// against.
type CommandKind string

const (
	KindInterfaces    CommandKind = "interfaces"
	KindBridgeDomain  CommandKind = "bridge-domain"
	KindBDInstances   CommandKind = "bd-instances"
	KindLACP          CommandKind = "lacp"
	KindLLDPNeighbors CommandKind = "lldp-neighbors"
)

// LineRange identifies the source lines a record was built from, for
// traceability (spec.md §4.2).
type LineRange struct {
	Start int
	End   int
}

// InterfaceRecord describes one interface line from "show interfaces".
type InterfaceRecord struct {
	Device  string
	Name    string
	Kind    string // "physical", "bundle", "subinterface" — inferred from name shape
	Parent  string // required for subinterfaces; empty for physical/bundle
	AdminUp bool
	Range   LineRange
}

// VLANManipulation captures the per-interface-in-fragment tag semantics
// from spec.md §3 (VLANSemantics): a vlan expression plus any push/pop/swap.
type VLANManipulation struct {
	VLANExpr  string // raw expression: "100", "1-4094", "100,200-210"
	PushOuter int    // 0 if none
	PopCount  int
	SwapFrom  int // 0 if no swap
	SwapTo    int
}

// BDMemberRecord is one member-interface line from "show bridge-domain".
type BDMemberRecord struct {
	Device    string
	BDName    string
	Interface string
	VLAN      VLANManipulation
	AdminUp   bool
	Range     LineRange
}

// BDInstanceRecord is a bare BD-existence declaration from "show
// bridge-domain-summary", independent of whether it has any members. Its
// only purpose is detecting empty fragments: a BD with no BDMemberRecord on
// a device that nonetheless declares the instance (spec.md §4.4).
type BDInstanceRecord struct {
	Device  string
	BDName  string
	AdminUp bool
	Range   LineRange
}

// LACPMemberRecord ties a physical interface to its owning bundle.
type LACPMemberRecord struct {
	Device    string
	Bundle    string
	Interface string
	Active    bool
	Range     LineRange
}

// LLDPNeighborRecord is one device's one-sided view of a discovered
// neighbor, destined to become a topology.HalfEdge.
type LLDPNeighborRecord struct {
	Device       string
	LocalIface   string
	RemoteDevice string
	RemoteIface  string
	Range        LineRange
}

// Anomaly records a line that could not be parsed, or a record that
// conflicted with one already seen (first wins — spec.md §4.2 invariant).
type Anomaly struct {
	Device string
	Kind   CommandKind
	Line   int
	Text   string
	Reason string
}

// Result holds everything produced by parsing one device's output for one
// command kind.
type Result struct {
	Interfaces    []InterfaceRecord
	BDMembers     []BDMemberRecord
	BDInstances   []BDInstanceRecord
	LACPMembers   []LACPMemberRecord
	LLDPNeighbors []LLDPNeighborRecord
	Anomalies     []Anomaly
}
