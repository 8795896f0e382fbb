package fragment

import (
	"testing"

	"github.com/dnaas-fabric/fabricbd/internal/parser"
)

func TestExtractCanonicalizesBundleMember(t *testing.T) {
	ifaces := []parser.InterfaceRecord{
		{Device: "leaf1-ny", Name: "PortChannel1", Kind: "bundle"},
		{Device: "leaf1-ny", Name: "Ethernet5", Kind: "physical"},
	}
	members := []parser.BDMemberRecord{
		{Device: "leaf1-ny", BDName: "g_user_v100", Interface: "PortChannel1.100", VLAN: parser.VLANManipulation{VLANExpr: "100"}, AdminUp: true},
		{Device: "leaf1-ny", BDName: "g_user_v100", Interface: "Ethernet5.100", VLAN: parser.VLANManipulation{VLANExpr: "100"}, AdminUp: true},
	}

	frags, diags := Extract(ifaces, members, nil)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(frags))
	}
	got := map[string]bool{}
	for _, m := range frags[0].Members {
		got[m.Interface] = true
	}
	if !got["bundle-1.100"] {
		t.Fatalf("expected bundle member canonicalized to bundle-1.100, got %+v", frags[0].Members)
	}
	if !got["Ethernet5.100"] {
		t.Fatalf("expected physical member to keep raw name, got %+v", frags[0].Members)
	}
}

func TestExtractEmptyFragmentFlagged(t *testing.T) {
	instances := []parser.BDInstanceRecord{
		{Device: "leaf1-ny", BDName: "g_empty", AdminUp: true},
	}
	frags, diags := Extract(nil, nil, instances)
	if len(frags) != 1 || !frags[0].Empty {
		t.Fatalf("expected 1 empty fragment, got %+v", frags)
	}
	found := false
	for _, d := range diags {
		if d.Kind == "EmptyFragment" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected EmptyFragment diagnostic, got %+v", diags)
	}
}

func TestExtractOrderingDeterministic(t *testing.T) {
	members := []parser.BDMemberRecord{
		{Device: "leaf2-ny", BDName: "g_b", Interface: "Ethernet1.200", VLAN: parser.VLANManipulation{VLANExpr: "200"}},
		{Device: "leaf1-ny", BDName: "g_a", Interface: "Ethernet0.100", VLAN: parser.VLANManipulation{VLANExpr: "100"}},
	}
	frags, _ := Extract(nil, members, nil)
	if len(frags) != 2 || frags[0].Device != "leaf1-ny" || frags[1].Device != "leaf2-ny" {
		t.Fatalf("expected deterministic device-then-name ordering, got %+v", frags)
	}
}
