// Package consolidate merges per-device BD fragments into fabric-wide
// BridgeDomainService records (spec.md §4.6). Hand-edited device configs
// use inconsistent BD names, templates, and stray VLAN typos for what is
// logically one service; consolidation canonicalizes, buckets, and unions
// fragments under a merge rule, then scores the result.
package consolidate

import (
	"github.com/dnaas-fabric/fabricbd/internal/classify"
	"github.com/dnaas-fabric/fabricbd/internal/fragment"
	"github.com/dnaas-fabric/fabricbd/internal/topology"
)

// DefaultConfidenceFloor is the score below which a candidate union is
// rejected and its fragments emitted as separate services instead
// (Open Question — spec.md §4.6; overridable via the settings file's
// confidence floor).
const DefaultConfidenceFloor = 0.6

// Classified pairs a fragment with the template and violations C5 already
// assigned it — consolidation never re-runs classification.
type Classified struct {
	Fragment   fragment.BDFragment
	Template   classify.Template
	Violations []classify.Violation
}

// ServiceSignature is the consolidation key derived from one fragment:
// a canonicalized (name, vlan) pair plus its template (spec.md §3).
type ServiceSignature struct {
	Name     string // normalized service name, "" if not extractable
	VLAN     string // primary vlan expression
	Template classify.Template
}

// Diagnostic is a non-fatal consolidation-time anomaly (LowConfidenceConsolidation,
// ConflictingFragments — spec.md §4.6).
type Diagnostic struct {
	Kind    string
	Message string
}

// EndpointLeaf is one leaf device and the access interfaces a service uses
// on it.
type EndpointLeaf struct {
	Device     string
	Interfaces []string
}

// BridgeDomainService is one consolidated service: a union of fragments
// that is, fabric-wide, logically one bridge domain.
type BridgeDomainService struct {
	ID               string
	Name             string
	Template         classify.Template
	VLAN             string
	EndpointLeaves   []EndpointLeaf
	UplinkInterfaces map[string][]string // device -> transport/uplink interfaces
	PathEdges        []topology.NeighborEdge
	Confidence       float64
	Provenance       []FragmentRef
	Diagnostics      []Diagnostic
}

// FragmentRef identifies one fragment that contributed to a service.
type FragmentRef struct {
	Device string
	BDName string
}
