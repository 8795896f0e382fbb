// Package topology builds and queries the in-memory fabric graph: devices,
// interfaces, bundles, and neighbor edges (spec.md §3, §4.3). A Snapshot is
// immutable once built; Builder produces a new Snapshot per discovery round
// and the caller swaps an atomic pointer to publish it (read-copy-update,
// spec.md §5).
package topology

import "fmt"

// Role is the inferred fabric tier of a device.
type Role string

const (
	RoleLeaf       Role = "LEAF"
	RoleSpine      Role = "SPINE"
	RoleSuperspine Role = "SUPERSPINE"
	RoleUnknown    Role = "UNKNOWN"
)

// InterfaceKind distinguishes physical ports, LAG bundles, and subinterfaces.
type InterfaceKind string

const (
	KindPhysical     InterfaceKind = "PHYSICAL"
	KindBundle       InterfaceKind = "BUNDLE"
	KindSubinterface InterfaceKind = "SUBINTERFACE"
)

// InterfaceRole describes an interface's function relative to its device's tier.
type InterfaceRole string

const (
	IfaceAccess    InterfaceRole = "ACCESS"
	IfaceUplink    InterfaceRole = "UPLINK"
	IfaceDownlink  InterfaceRole = "DOWNLINK"
	IfaceTransport InterfaceRole = "TRANSPORT"
	IfaceUnknown   InterfaceRole = "UNKNOWN"
)

// EdgeRole describes the fabric tiers an edge connects.
type EdgeRole string

const (
	EdgeLeafSpine      EdgeRole = "LEAF_SPINE"
	EdgeSpineSuperspine EdgeRole = "SPINE_SUPERSPINE"
	EdgeOther          EdgeRole = "OTHER"
)

// Device is a single fabric switch and its inferred role.
type Device struct {
	Name           string
	MgmtAddr       string
	Role           Role
	RoleConfidence float64
	RoleRule       string // which rule fired: "name-prefix", "neighbor-degree", "majority-vote"
	Rack           string
	Row            string
	Reachable      bool
}

// Interface belongs to exactly one Device.
type Interface struct {
	Device      string
	Name        string
	Kind        InterfaceKind
	Parent      string // required for SUBINTERFACE/BUNDLE-member; empty otherwise
	AdminUp     bool
	Role        InterfaceRole
}

// Key uniquely identifies an interface within a snapshot.
func (i Interface) Key() string { return i.Device + "/" + i.Name }

// NeighborEdge is a bidirectional, deduplicated link between two devices,
// discovered via a link-discovery protocol (e.g. LLDP) and promoted from
// matching half-edges (spec.md §4.3).
type NeighborEdge struct {
	DeviceA string
	IfaceA  string
	DeviceB string
	IfaceB  string
	Role    EdgeRole
}

// Key returns a canonical, endpoint-order-independent identity for the edge,
// used for deduplication.
func (e NeighborEdge) Key() string {
	a := fmt.Sprintf("%s/%s", e.DeviceA, e.IfaceA)
	b := fmt.Sprintf("%s/%s", e.DeviceB, e.IfaceB)
	if a > b {
		a, b = b, a
	}
	return a + "<->" + b
}

// HalfEdge is one device's one-sided view of a discovered neighbor, as
// reported by e.g. "show lldp neighbors" before it is matched against the
// peer's own report.
type HalfEdge struct {
	LocalDevice  string
	LocalIface   string
	RemoteDevice string
	RemoteIface  string
}
