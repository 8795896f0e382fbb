package deploy

import (
	"context"
	"testing"

	"github.com/dnaas-fabric/fabricbd/internal/synth"
	"github.com/dnaas-fabric/fabricbd/internal/topology"
	"github.com/dnaas-fabric/fabricbd/internal/transport"
)

func changes() []synth.DeviceConfigChange {
	return []synth.DeviceConfigChange{
		{Device: "leaf-a", Service: "alice", Forward: []string{"bd alice member=eth0.100 vlan=100 admin=up"}, Inverse: []string{"bd alice member=eth0.100 vlan=100 admin=down"}},
		{Device: "leaf-b", Service: "alice", Forward: []string{"bd alice member=eth0.100 vlan=100 admin=up"}, Inverse: []string{"bd alice member=eth0.100 vlan=100 admin=down"}},
	}
}

func TestOrchestratorRunSucceeds(t *testing.T) {
	ft := transport.NewFakeTransport()
	ft.Responses["leaf-a"] = map[string]string{"show bridge-domain alice": "bd alice up"}
	ft.Responses["leaf-b"] = map[string]string{"show bridge-domain alice": "bd alice up"}

	dep := NewDeployment("dep-1", "alice", changes())
	o := NewOrchestrator(ft)
	if err := o.Run(context.Background(), dep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dep.State != StateVerified {
		t.Fatalf("expected VERIFIED, got %s", dep.State)
	}
	for device, ds := range dep.Devices {
		if ds.State != StateVerified {
			t.Errorf("device %s expected VERIFIED, got %s", device, ds.State)
		}
	}
}

func TestOrchestratorCommitFailureRollsBack(t *testing.T) {
	ft := transport.NewFakeTransport()
	ft.FailOn["leaf-b"] = map[string]bool{"commit": true}

	dep := NewDeployment("dep-2", "alice", changes())
	o := NewOrchestrator(ft)
	if err := o.Run(context.Background(), dep); err == nil {
		t.Fatalf("expected commit failure error")
	}
	if dep.State != StateRolledBack {
		t.Fatalf("expected ROLLED_BACK, got %s", dep.State)
	}
	if dep.Devices["leaf-a"].State != StateRolledBack {
		t.Errorf("expected leaf-a rolled back, got %s", dep.Devices["leaf-a"].State)
	}
}

// TestOrchestratorRollbackOrdersEdgeBeforeCore names devices so that
// alphabetical order disagrees with fabric tier: "aaa-spine" sorts before
// "zzz-leaf", but rollback must still undo the leaf before the spine.
func TestOrchestratorRollbackOrdersEdgeBeforeCore(t *testing.T) {
	cmd := func(device string) (fwd, inv []string) {
		return []string{"bd alice member=eth0.100 vlan=100 admin=up"}, []string{"bd alice member=eth0.100 vlan=100 admin=down"}
	}
	tiered := func(device string, role topology.Role) synth.DeviceConfigChange {
		fwd, inv := cmd(device)
		return synth.DeviceConfigChange{Device: device, Service: "alice", Role: role, Forward: fwd, Inverse: inv}
	}
	changes := []synth.DeviceConfigChange{
		tiered("aaa-spine", topology.RoleSpine),
		tiered("mmm-super", topology.RoleSuperspine),
		tiered("zzz-leaf", topology.RoleLeaf),
		tiered("fail-dev", topology.RoleLeaf),
	}

	ft := transport.NewFakeTransport()
	ft.FailOn["fail-dev"] = map[string]bool{"commit": true}

	dep := NewDeployment("dep-4", "alice", changes)
	o := NewOrchestrator(ft)
	if err := o.Run(context.Background(), dep); err == nil {
		t.Fatalf("expected commit failure error")
	}
	if dep.State != StateRolledBack {
		t.Fatalf("expected ROLLED_BACK, got %s", dep.State)
	}
	for _, device := range []string{"aaa-spine", "mmm-super", "zzz-leaf"} {
		if dep.Devices[device].State != StateRolledBack {
			t.Errorf("expected %s rolled back, got %s", device, dep.Devices[device].State)
		}
	}

	var rollbackOrder []string
	for _, res := range ft.History() {
		if res.Command == "bd alice member=eth0.100 vlan=100 admin=down" {
			rollbackOrder = append(rollbackOrder, res.Device)
		}
	}
	leafIdx, spineIdx, superIdx := -1, -1, -1
	for i, d := range rollbackOrder {
		switch d {
		case "zzz-leaf":
			leafIdx = i
		case "aaa-spine":
			spineIdx = i
		case "mmm-super":
			superIdx = i
		}
	}
	if leafIdx == -1 || spineIdx == -1 || superIdx == -1 {
		t.Fatalf("expected all three devices to roll back, got order %v", rollbackOrder)
	}
	if !(leafIdx < spineIdx && spineIdx < superIdx) {
		t.Fatalf("expected rollback order leaf, spine, superspine; got %v", rollbackOrder)
	}
}

func TestOrchestratorCommitCheckFailureAbortsBeforeCommit(t *testing.T) {
	ft := transport.NewFakeTransport()
	ft.FailOn["leaf-a"] = map[string]bool{"commit check": true}

	dep := NewDeployment("dep-3", "alice", changes())
	o := NewOrchestrator(ft)
	if err := o.Run(context.Background(), dep); err == nil {
		t.Fatalf("expected commit-check failure error")
	}
	if dep.State != StateFailed {
		t.Fatalf("expected FAILED (no commit attempted), got %s", dep.State)
	}
	for _, res := range ft.History() {
		if res.Command == "commit" {
			t.Fatalf("commit should never have been sent after a commit-check failure")
		}
	}
}
