// Package synth synthesizes per-device CLI command sequences from a
// validated BuildIntent and its computed paths (spec.md §4.8). A single
// Synthesizer dispatches on BridgeDomainTemplate instead of the historical
// per-template builder duplication (spec.md §9 REDESIGN FLAG); the P2MP
// strategy shapes only the paths passed in, not the emitted commands.
package synth

import (
	"github.com/dnaas-fabric/fabricbd/internal/classify"
	"github.com/dnaas-fabric/fabricbd/internal/pathengine"
	"github.com/dnaas-fabric/fabricbd/internal/topology"
)

// Endpoint is one device+interface pair named in an intent.
type Endpoint struct {
	Device    string
	Interface string
}

// BuildIntent is the declarative request validated and synthesized by C8
// (spec.md §3). VLAN carries a single id ("100"), a double-tagged pair
// ("100:200" = inner:outer), a list/range ("100,200-210"), or the full
// QinQ span ("1-4094").
type BuildIntent struct {
	ServiceName string
	Template    classify.Template
	VLAN        string
	Source      Endpoint
	Destinations []Endpoint
	Strategy    pathengine.Strategy
	ManualPaths map[string]string
}

// DeviceConfigChange is an ordered forward command list plus its inverse,
// tied to one device and one service (spec.md §3). Role carries the
// device's fabric tier at synthesis time, so downstream deployment ordering
// (rollback edge-first; stage and commit fan out in parallel) doesn't have to re-derive
// it from the device name (spec.md §7 "rollback is ordered by
// reverse-dependency, edge devices before core").
type DeviceConfigChange struct {
	Device   string
	Service  string
	Role     topology.Role
	Forward  []string
	Inverse  []string
}

// ExistingAssignment describes one interface already committed to a
// service, used by the synthesizer's pre-checks (spec.md §4.8).
type ExistingAssignment struct {
	Device      string
	Interface   string
	ServiceName string
	OuterVLAN   string // "" unless the assignment is a GLOBAL (double-tagged/QinQ) BD
}

// globalTemplate reports whether template pushes/pops/swaps a fabric-wide
// outer tag, making its uplink outer-VLAN a shared resource across services
// (spec.md §4.8 "GLOBAL BDs").
func globalTemplate(t classify.Template) bool {
	switch t {
	case classify.TemplateDoubleTaggedEdge, classify.TemplateDoubleTaggedLeaf, classify.TemplateQinQAll:
		return true
	default:
		return false
	}
}
