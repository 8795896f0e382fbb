package main

import (
	"github.com/dnaas-fabric/fabricbd/internal/store"
	"github.com/dnaas-fabric/fabricbd/internal/topology"
)

// interfaceList flattens every device's interfaces out of a snapshot, for
// persistence in a SnapshotEnvelope.
func interfaceList(snap *topology.Snapshot) []topology.Interface {
	var out []topology.Interface
	for _, d := range snap.Devices() {
		for _, i := range snap.Interfaces(d.Name) {
			out = append(out, *i)
		}
	}
	return out
}

// snapshotFromEnvelope rebuilds a queryable Snapshot from its persisted
// form. Edges are re-split into half-edges and re-coalesced by the builder,
// same as a fresh discovery round would produce them.
func snapshotFromEnvelope(env store.SnapshotEnvelope) *topology.Snapshot {
	b := topology.NewBuilder()
	for _, d := range env.Devices {
		b.AddDevice(d)
	}
	for _, i := range env.Interfaces {
		b.AddInterface(i)
	}
	for _, e := range env.Edges {
		b.AddHalfEdge(topology.HalfEdge{LocalDevice: e.DeviceA, LocalIface: e.IfaceA, RemoteDevice: e.DeviceB, RemoteIface: e.IfaceB})
		b.AddHalfEdge(topology.HalfEdge{LocalDevice: e.DeviceB, LocalIface: e.IfaceB, RemoteDevice: e.DeviceA, RemoteIface: e.IfaceA})
	}
	return b.Build()
}
