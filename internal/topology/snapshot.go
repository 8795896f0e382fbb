package topology

import "sort"

// Snapshot is an immutable, fully-coalesced view of the fabric topology at
// one discovery round. All query methods are read-only; callers never see
// partial state since a Snapshot is only ever constructed by Builder.Build.
type Snapshot struct {
	devices    map[string]*Device
	interfaces map[string]*Interface // keyed by Interface.Key()
	edges      []NeighborEdge
	adjacency  map[string][]string // device -> neighbor device names (deduped)

	Diagnostics []Diagnostic
}

// Diagnostic is a non-fatal discovery-time anomaly attached to the snapshot
// (spec.md §7: HalfEdgeAnomaly, UnknownRole, DisconnectedDevice).
type Diagnostic struct {
	Kind    string
	Message string
}

// Device returns the named device, or false if unknown.
func (s *Snapshot) Device(name string) (*Device, bool) {
	d, ok := s.devices[name]
	return d, ok
}

// Devices returns all devices, sorted by name.
func (s *Snapshot) Devices() []*Device {
	out := make([]*Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Snapshot) devicesWithRole(role Role) []*Device {
	var out []*Device
	for _, d := range s.devices {
		if d.Role == role {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Leaves returns all devices inferred as LEAF, sorted by name.
func (s *Snapshot) Leaves() []*Device { return s.devicesWithRole(RoleLeaf) }

// Spines returns all devices inferred as SPINE, sorted by name.
func (s *Snapshot) Spines() []*Device { return s.devicesWithRole(RoleSpine) }

// Superspines returns all devices inferred as SUPERSPINE, sorted by name.
func (s *Snapshot) Superspines() []*Device { return s.devicesWithRole(RoleSuperspine) }

// Interfaces returns all interfaces owned by device, sorted by name.
func (s *Snapshot) Interfaces(device string) []*Interface {
	var out []*Interface
	for _, i := range s.interfaces {
		if i.Device == device {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Interface looks up a single interface by device+name.
func (s *Snapshot) Interface(device, name string) (*Interface, bool) {
	i, ok := s.interfaces[Interface{Device: device, Name: name}.Key()]
	return i, ok
}

// Parent returns the parent interface name for a SUBINTERFACE or BUNDLE
// member, or "" if iface has no parent.
func (s *Snapshot) Parent(device, iface string) string {
	i, ok := s.Interface(device, iface)
	if !ok {
		return ""
	}
	return i.Parent
}

// BundleMembers returns the physical member interface names of a bundle,
// sorted.
func (s *Snapshot) BundleMembers(device, bundle string) []string {
	var out []string
	for _, i := range s.interfaces {
		if i.Device == device && i.Kind == KindPhysical && i.Parent == bundle {
			out = append(out, i.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Neighbors returns the NeighborEdges touching device, sorted by edge key.
func (s *Snapshot) Neighbors(device string) []NeighborEdge {
	var out []NeighborEdge
	for _, e := range s.edges {
		if e.DeviceA == device || e.DeviceB == device {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// NeighborDevices returns the set of distinct devices adjacent to device.
func (s *Snapshot) NeighborDevices(device string) []string {
	out := append([]string(nil), s.adjacency[device]...)
	sort.Strings(out)
	return out
}

// Edges returns every coalesced NeighborEdge in the snapshot, sorted.
func (s *Snapshot) Edges() []NeighborEdge {
	out := append([]NeighborEdge(nil), s.edges...)
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// HasEdge reports whether an edge between (deviceA,ifaceA) and
// (deviceB,ifaceB) exists in the snapshot, in either orientation.
func (s *Snapshot) HasEdge(deviceA, ifaceA, deviceB, ifaceB string) bool {
	want := NeighborEdge{DeviceA: deviceA, IfaceA: ifaceA, DeviceB: deviceB, IfaceB: ifaceB}.Key()
	for _, e := range s.edges {
		if e.Key() == want {
			return true
		}
	}
	return false
}
