package topology

import (
	"fmt"
	"sort"

	"github.com/dnaas-fabric/fabricbd/internal/util"
)

// Builder accumulates discovery output for one round and produces a single
// immutable Snapshot. A Builder is used once; create a new one per
// discovery round (spec.md §4.3, §5 "single writer during snapshot build").
type Builder struct {
	devices         map[string]*Device
	interfaces      map[string]*Interface
	halfEdges       []HalfEdge
	uplinkThreshold int
}

// NewBuilder creates an empty topology builder.
func NewBuilder() *Builder {
	return &Builder{
		devices:    make(map[string]*Device),
		interfaces: make(map[string]*Interface),
	}
}

// SetUplinkThreshold overrides the default neighbor-degree promotion
// threshold (spec.md §4.3 rule 2).
func (b *Builder) SetUplinkThreshold(k int) *Builder {
	b.uplinkThreshold = k
	return b
}

// AddDevice registers (or re-registers) a device seen during discovery.
func (b *Builder) AddDevice(d Device) *Builder {
	if d.Role == "" {
		d.Role = RoleUnknown
	}
	cp := d
	b.devices[d.Name] = &cp
	return b
}

// AddInterface registers an interface. The owning device must already be
// registered via AddDevice; if not, a placeholder UNKNOWN-role device is
// created so discovery of a fragment never blocks on ordering.
func (b *Builder) AddInterface(i Interface) *Builder {
	if _, ok := b.devices[i.Device]; !ok {
		b.AddDevice(Device{Name: i.Device, Role: RoleUnknown})
	}
	cp := i
	b.interfaces[i.Key()] = &cp
	return b
}

// AddHalfEdge records one device's one-sided view of a discovered neighbor.
// Full NeighborEdges are only promoted once both sides agree (Build).
func (b *Builder) AddHalfEdge(h HalfEdge) *Builder {
	b.halfEdges = append(b.halfEdges, h)
	return b
}

// Build coalesces half-edges, infers device roles, and returns the
// resulting immutable Snapshot along with any accumulated diagnostics.
// Build never fails on discovery-quality problems — those become
// Diagnostics on the returned Snapshot (spec.md §7 propagation policy).
func (b *Builder) Build() *Snapshot {
	var diags []Diagnostic

	edges, edgeDiags := coalesceHalfEdges(b.halfEdges)
	diags = append(diags, edgeDiags...)

	adjacency := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	addAdj := func(from, to string) {
		if seen[from] == nil {
			seen[from] = make(map[string]bool)
		}
		if !seen[from][to] {
			seen[from][to] = true
			adjacency[from] = append(adjacency[from], to)
		}
	}
	for _, e := range edges {
		addAdj(e.DeviceA, e.DeviceB)
		addAdj(e.DeviceB, e.DeviceA)
	}

	inferRoles(b.devices, adjacency, b.uplinkThreshold)

	for i, e := range edges {
		da, aok := b.devices[e.DeviceA]
		db, bok := b.devices[e.DeviceB]
		edges[i].Role = classifyEdgeRole(aok, da, bok, db)
	}

	for _, d := range b.devices {
		if d.Role == RoleUnknown {
			diags = append(diags, Diagnostic{
				Kind:    string(util.KindUnknownRole),
				Message: util.NewUnknownRole(d.Name).Error(),
			})
		}
		if len(adjacency[d.Name]) == 0 {
			diags = append(diags, Diagnostic{
				Kind:    string(util.KindDisconnectedDevice),
				Message: util.NewDisconnectedDevice(d.Name).Error(),
			})
		}
	}

	sort.Slice(diags, func(i, j int) bool {
		if diags[i].Kind != diags[j].Kind {
			return diags[i].Kind < diags[j].Kind
		}
		return diags[i].Message < diags[j].Message
	})

	return &Snapshot{
		devices:     b.devices,
		interfaces:  b.interfaces,
		edges:       edges,
		adjacency:   adjacency,
		Diagnostics: diags,
	}
}

func classifyEdgeRole(aok bool, da *Device, bok bool, db *Device) EdgeRole {
	if !aok || !bok {
		return EdgeOther
	}
	pair := map[Role]bool{da.Role: true, db.Role: true}
	switch {
	case pair[RoleLeaf] && pair[RoleSpine] && len(pair) == 2:
		return EdgeLeafSpine
	case pair[RoleSpine] && pair[RoleSuperspine] && len(pair) == 2:
		return EdgeSpineSuperspine
	default:
		return EdgeOther
	}
}

// coalesceHalfEdges promotes matching half-edge pairs into full
// NeighborEdges. A half-edge from A claiming a neighbor at B is promoted
// only when B reports the reciprocal half-edge back to A on the same
// interface pair; otherwise a HalfEdgeAnomaly diagnostic is recorded and no
// edge is created for that half-edge.
func coalesceHalfEdges(halves []HalfEdge) ([]NeighborEdge, []Diagnostic) {
	byLocal := make(map[string]HalfEdge, len(halves))
	for _, h := range halves {
		byLocal[h.LocalDevice+"/"+h.LocalIface] = h
	}

	var edges []NeighborEdge
	var diags []Diagnostic
	promoted := make(map[string]bool)

	for _, h := range halves {
		reciprocalKey := h.RemoteDevice + "/" + h.RemoteIface
		recip, ok := byLocal[reciprocalKey]
		if !ok || recip.RemoteDevice != h.LocalDevice || recip.RemoteIface != h.LocalIface {
			diags = append(diags, Diagnostic{
				Kind: string(util.KindHalfEdgeAnomaly),
				Message: util.NewHalfEdgeAnomaly(h.LocalDevice, h.LocalIface, h.RemoteDevice, h.RemoteIface).Error(),
			})
			continue
		}
		e := NeighborEdge{DeviceA: h.LocalDevice, IfaceA: h.LocalIface, DeviceB: h.RemoteDevice, IfaceB: h.RemoteIface}
		if !promoted[e.Key()] {
			promoted[e.Key()] = true
			edges = append(edges, e)
		}
	}
	return edges, diags
}

// Validate checks the structural invariants from spec.md §3: a
// SUBINTERFACE has exactly one PHYSICAL/BUNDLE parent, and a BUNDLE's
// members are all PHYSICAL on the same device. Construction via AddInterface
// makes violations rare, but malformed parser output (e.g. a dangling
// parent reference) is still possible and must be caught explicitly.
func (s *Snapshot) Validate() error {
	for _, i := range s.interfaces {
		if i.Kind == KindSubinterface {
			if i.Parent == "" {
				return fmt.Errorf("subinterface %s/%s has no parent", i.Device, i.Name)
			}
			parent, ok := s.Interface(i.Device, i.Parent)
			if !ok {
				return fmt.Errorf("subinterface %s/%s references unknown parent %s", i.Device, i.Name, i.Parent)
			}
			if parent.Kind != KindPhysical && parent.Kind != KindBundle {
				return fmt.Errorf("subinterface %s/%s parent %s has invalid kind %s", i.Device, i.Name, i.Parent, parent.Kind)
			}
		} else if i.Parent != "" {
			if parent, ok := s.Interface(i.Device, i.Parent); ok && parent.Kind == KindBundle && i.Kind != KindPhysical {
				return fmt.Errorf("bundle %s/%s member %s has invalid kind %s", i.Device, i.Parent, i.Name, i.Kind)
			}
		}
	}
	return nil
}
