package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dnaas-fabric/fabricbd/internal/classify"
	"github.com/dnaas-fabric/fabricbd/internal/consolidate"
	"github.com/dnaas-fabric/fabricbd/internal/fragment"
	"github.com/dnaas-fabric/fabricbd/internal/parser"
	"github.com/dnaas-fabric/fabricbd/internal/store"
	"github.com/dnaas-fabric/fabricbd/internal/topology"
	"github.com/dnaas-fabric/fabricbd/internal/util"
)

// discoverCmd reads a directory of raw CLI dumps named "<device>__<kind>.txt"
// (kind one of interfaces, bridge-domain, bd-instances, lacp,
// lldp-neighbors), parses, builds topology, extracts fragments, classifies,
// and consolidates them into services, persisting the result to the store.
var discoverCmd = &cobra.Command{
	Use:   "discover <commands-dir>",
	Short: "Parse raw CLI dumps into a topology snapshot and consolidated services",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiscover(args[0])
	},
}

func runDiscover(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	var interfaces []parser.InterfaceRecord
	var bdMembers []parser.BDMemberRecord
	var bdInstances []parser.BDInstanceRecord
	var lacpMembers []parser.LACPMemberRecord
	var lldpNeighbors []parser.LLDPNeighborRecord
	var anomalyCount int

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		device, kind, ok := splitDumpName(e.Name())
		if !ok {
			util.Logger.Warnf("skipping unrecognized dump file %s", e.Name())
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		res := parser.Parse(kind, device, string(raw))
		interfaces = append(interfaces, res.Interfaces...)
		bdMembers = append(bdMembers, res.BDMembers...)
		bdInstances = append(bdInstances, res.BDInstances...)
		lacpMembers = append(lacpMembers, res.LACPMembers...)
		lldpNeighbors = append(lldpNeighbors, res.LLDPNeighbors...)
		anomalyCount += len(res.Anomalies)
		for _, a := range res.Anomalies {
			util.WithDevice(a.Device).Debugf("parse anomaly (%s): %s", a.Kind, a.Reason)
		}
	}

	snap := buildSnapshot(interfaces, lacpMembers, lldpNeighbors)

	fragments, fragDiags := fragment.Extract(interfaces, bdMembers, bdInstances)
	for _, d := range fragDiags {
		util.Logger.Debugf("fragment diagnostic: %s: %s", d.Kind, d.Message)
	}

	classified := make([]consolidate.Classified, 0, len(fragments))
	for _, f := range fragments {
		tmpl, violations := classify.Classify(f)
		classified = append(classified, consolidate.Classified{Fragment: f, Template: tmpl, Violations: violations})
	}

	services, consolidateDiags := consolidate.Consolidate(classified, snap, app.settings.ConfidenceFloor)
	for _, d := range consolidateDiags {
		util.Logger.Debugf("consolidation diagnostic: %s: %s", d.Kind, d.Message)
	}

	ctx := context.Background()
	envelope := store.SnapshotEnvelope{Taken: time.Now().UTC(), Devices: deviceList(snap), Interfaces: interfaceList(snap), Edges: snap.Edges()}
	if err := app.store.PutSnapshot(ctx, envelope); err != nil {
		return fmt.Errorf("persisting snapshot: %w", err)
	}
	for _, svc := range services {
		if err := app.store.PutService(ctx, svc); err != nil {
			return fmt.Errorf("persisting service %s: %w", svc.ID, err)
		}
	}

	fmt.Printf("discovered %d device(s), %d fragment(s), %d service(s), %d parse anomal(ies)\n",
		len(snap.Devices()), len(fragments), len(services), anomalyCount)
	return nil
}

// splitDumpName splits "leaf-a__bridge-domain.txt" into ("leaf-a",
// KindBridgeDomain, true).
func splitDumpName(name string) (string, parser.CommandKind, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.SplitN(base, "__", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	kind := parser.CommandKind(parts[1])
	switch kind {
	case parser.KindInterfaces, parser.KindBridgeDomain, parser.KindBDInstances, parser.KindLACP, parser.KindLLDPNeighbors:
		return parts[0], kind, true
	default:
		return "", "", false
	}
}

func buildSnapshot(interfaces []parser.InterfaceRecord, lacp []parser.LACPMemberRecord, lldp []parser.LLDPNeighborRecord) *topology.Snapshot {
	b := topology.NewBuilder()
	devices := make(map[string]bool)
	for _, i := range interfaces {
		devices[i.Device] = true
	}
	for _, l := range lldp {
		devices[l.Device] = true
		devices[l.RemoteDevice] = true
	}
	for d := range devices {
		b.AddDevice(topology.Device{Name: d})
	}
	for _, i := range interfaces {
		kind := topology.KindPhysical
		switch i.Kind {
		case "bundle":
			kind = topology.KindBundle
		case "subinterface":
			kind = topology.KindSubinterface
		}
		b.AddInterface(topology.Interface{Device: i.Device, Name: i.Name, Kind: kind, Parent: i.Parent, AdminUp: i.AdminUp})
	}
	for _, l := range lacp {
		b.AddInterface(topology.Interface{Device: l.Device, Name: l.Interface, Kind: topology.KindPhysical, Parent: l.Bundle, AdminUp: l.Active})
	}
	for _, n := range lldp {
		b.AddHalfEdge(topology.HalfEdge{LocalDevice: n.Device, LocalIface: n.LocalIface, RemoteDevice: n.RemoteDevice, RemoteIface: n.RemoteIface})
	}
	return b.Build()
}

func deviceList(snap *topology.Snapshot) []topology.Device {
	devs := snap.Devices()
	out := make([]topology.Device, 0, len(devs))
	for _, d := range devs {
		out = append(out, *d)
	}
	return out
}
