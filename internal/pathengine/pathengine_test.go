package pathengine

import (
	"testing"

	"github.com/dnaas-fabric/fabricbd/internal/topology"
)

// fabric: LEAF-A, LEAF-B, LEAF-C, SPINE-1, SPINE-2, SUPERSPINE-1.
// LEAF-A -- SPINE-1 -- LEAF-B (shared spine)
// LEAF-C -- SPINE-2 only, SPINE-1 -- SUPERSPINE-1 -- SPINE-2 (3-tier path A->C)
func testFabric() *topology.Snapshot {
	b := topology.NewBuilder()
	for _, name := range []string{"leaf-a", "leaf-b", "leaf-c", "spine-1", "spine-2", "superspine-1"} {
		b.AddDevice(topology.Device{Name: name})
	}
	link := func(d1, i1, d2, i2 string) {
		b.AddHalfEdge(topology.HalfEdge{LocalDevice: d1, LocalIface: i1, RemoteDevice: d2, RemoteIface: i2})
		b.AddHalfEdge(topology.HalfEdge{LocalDevice: d2, LocalIface: i2, RemoteDevice: d1, RemoteIface: i1})
	}
	link("leaf-a", "eth0", "spine-1", "eth0")
	link("leaf-b", "eth0", "spine-1", "eth1")
	link("leaf-c", "eth0", "spine-2", "eth0")
	link("spine-1", "eth10", "superspine-1", "eth0")
	link("spine-2", "eth10", "superspine-1", "eth1")
	return b.Build()
}

func TestComputeP2PSharedSpine(t *testing.T) {
	snap := testFabric()
	p := NewPlan()
	path, err := p.ComputeP2P(snap, "leaf-a", "leaf-b", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path.Tier != 2 || len(path.Transit) != 1 || path.Transit[0] != "spine-1" {
		t.Fatalf("expected 2-tier path via spine-1, got %+v", path)
	}
}

func TestComputeP2PThreeTierFallback(t *testing.T) {
	snap := testFabric()
	p := NewPlan()
	path, err := p.ComputeP2P(snap, "leaf-a", "leaf-c", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path.Tier != 3 || len(path.Transit) != 3 {
		t.Fatalf("expected 3-tier path, got %+v", path)
	}
	if path.Transit[1] != "superspine-1" {
		t.Fatalf("expected superspine-1 transit, got %+v", path.Transit)
	}
}

func TestComputeP2PNoPath(t *testing.T) {
	b := topology.NewBuilder()
	b.AddDevice(topology.Device{Name: "leaf-x"})
	b.AddDevice(topology.Device{Name: "leaf-y"})
	snap := b.Build()
	p := NewPlan()
	if _, err := p.ComputeP2P(snap, "leaf-x", "leaf-y", 0); err == nil {
		t.Fatalf("expected NoPath error")
	}
}

func TestComputeP2MPSharedSpine(t *testing.T) {
	snap := testFabric()
	p := NewPlan()
	paths, err := p.ComputeP2MP(snap, "leaf-a", []string{"leaf-b"}, StrategySharedSpine, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || paths[0].Destination != "leaf-b" {
		t.Fatalf("unexpected paths: %+v", paths)
	}
}

func TestComputeP2MPHybridFallsBackToThreeTier(t *testing.T) {
	snap := testFabric()
	p := NewPlan()
	paths, err := p.ComputeP2MP(snap, "leaf-a", []string{"leaf-b", "leaf-c"}, StrategyHybrid, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %+v", paths)
	}
	for _, pth := range paths {
		if pth.Destination == "leaf-b" && pth.Tier != 2 {
			t.Errorf("expected leaf-b via 2-tier, got %+v", pth)
		}
		if pth.Destination == "leaf-c" && pth.Tier != 3 {
			t.Errorf("expected leaf-c via 3-tier, got %+v", pth)
		}
	}
}

func TestComputeP2MPSharedSpineFailsOnUnreachable(t *testing.T) {
	snap := testFabric()
	p := NewPlan()
	if _, err := p.ComputeP2MP(snap, "leaf-a", []string{"leaf-c"}, StrategySharedSpine, 0, nil); err == nil {
		t.Fatalf("expected NoPath for leaf-c under strict SHARED_SPINE")
	}
}

func TestComputeP2MPManual(t *testing.T) {
	snap := testFabric()
	p := NewPlan()
	paths, err := p.ComputeP2MP(snap, "leaf-a", []string{"leaf-b"}, StrategyManual, 0, map[string]string{"leaf-b": "spine-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || paths[0].Transit[0] != "spine-1" {
		t.Fatalf("unexpected manual path: %+v", paths)
	}
}

func TestComputeP2MPManualRejectsInfeasibleSpine(t *testing.T) {
	snap := testFabric()
	p := NewPlan()
	if _, err := p.ComputeP2MP(snap, "leaf-a", []string{"leaf-b"}, StrategyManual, 0, map[string]string{"leaf-b": "spine-2"}); err == nil {
		t.Fatalf("expected error for infeasible manual spine assignment")
	}
}

func TestPlanTracksSpineUsageAcrossCalls(t *testing.T) {
	snap := testFabric()
	p := NewPlan()
	if _, err := p.ComputeP2P(snap, "leaf-a", "leaf-b", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SpineUsage("spine-1") != 1 {
		t.Fatalf("expected spine-1 usage 1, got %d", p.SpineUsage("spine-1"))
	}
}

func TestComputeP2PCapacityExceeded(t *testing.T) {
	snap := testFabric()
	p := NewPlan()
	if _, err := p.ComputeP2P(snap, "leaf-a", "leaf-b", 1); err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}
	if _, err := p.ComputeP2P(snap, "leaf-a", "leaf-b", 1); err == nil {
		t.Fatalf("expected CapacityExceeded on second call with cap=1")
	}
}
