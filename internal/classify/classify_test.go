package classify

import (
	"testing"

	"github.com/dnaas-fabric/fabricbd/internal/fragment"
)

func frag(members ...fragment.Member) fragment.BDFragment {
	return fragment.BDFragment{Device: "leaf1-ny", BDName: "g_test", Members: members}
}

func TestClassifySingleTagged(t *testing.T) {
	f := frag(
		fragment.Member{Interface: "Ethernet0.100", VLAN: fragment.VLANSemantics{VLANExpr: "100"}},
		fragment.Member{Interface: "bundle-1.100", VLAN: fragment.VLANSemantics{VLANExpr: "100"}},
	)
	tmpl, violations := Classify(f)
	if tmpl != TemplateSingleTagged {
		t.Fatalf("expected SINGLE_TAGGED, got %s (%v)", tmpl, violations)
	}
}

func TestClassifyDoubleTaggedEdge(t *testing.T) {
	f := frag(
		fragment.Member{Interface: "Ethernet0.100", VLAN: fragment.VLANSemantics{VLANExpr: "100", PushOuter: 200}},
		fragment.Member{Interface: "Ethernet1.100", VLAN: fragment.VLANSemantics{VLANExpr: "100", PopCount: 1}},
	)
	tmpl, _ := Classify(f)
	if tmpl != TemplateDoubleTaggedEdge {
		t.Fatalf("expected DOUBLE_TAGGED_EDGE_IMPOSITION, got %s", tmpl)
	}
}

func TestClassifyDoubleTaggedLeaf(t *testing.T) {
	f := frag(
		fragment.Member{Interface: "Ethernet0.100", VLAN: fragment.VLANSemantics{VLANExpr: "100", SwapFrom: 100, SwapTo: 200}},
	)
	tmpl, _ := Classify(f)
	if tmpl != TemplateDoubleTaggedLeaf {
		t.Fatalf("expected DOUBLE_TAGGED_LEAF_IMPOSITION, got %s", tmpl)
	}
}

func TestClassifyQinQAll(t *testing.T) {
	f := frag(fragment.Member{Interface: "Ethernet0.1", VLAN: fragment.VLANSemantics{VLANExpr: "1-4094"}})
	tmpl, _ := Classify(f)
	if tmpl != TemplateQinQAll {
		t.Fatalf("expected QINQ_ALL, got %s", tmpl)
	}
}

func TestClassifySingleTaggedRangeList(t *testing.T) {
	f := frag(fragment.Member{Interface: "Ethernet0.1", VLAN: fragment.VLANSemantics{VLANExpr: "100,200-210"}})
	tmpl, _ := Classify(f)
	if tmpl != TemplateSingleTaggedSet {
		t.Fatalf("expected SINGLE_TAGGED_RANGE/LIST, got %s", tmpl)
	}
}

func TestClassifyPortMode(t *testing.T) {
	f := frag(fragment.Member{Interface: "Ethernet0"})
	tmpl, _ := Classify(f)
	if tmpl != TemplatePortMode {
		t.Fatalf("expected PORT_MODE, got %s", tmpl)
	}
}

func TestClassifyUnclassifiedOnMismatch(t *testing.T) {
	f := frag(
		fragment.Member{Interface: "Ethernet0.100", VLAN: fragment.VLANSemantics{VLANExpr: "100"}},
		fragment.Member{Interface: "Ethernet1.100", VLAN: fragment.VLANSemantics{VLANExpr: "", PushOuter: 5, SwapFrom: 9}},
	)
	tmpl, violations := Classify(f)
	if tmpl != TemplateUnclassified {
		t.Fatalf("expected UNCLASSIFIED, got %s", tmpl)
	}
	if len(violations) == 0 {
		t.Fatalf("expected violations explaining the mismatch")
	}
}

func TestClassifyEmptyFragment(t *testing.T) {
	f := fragment.BDFragment{Device: "leaf1-ny", BDName: "g_empty", Empty: true}
	tmpl, violations := Classify(f)
	if tmpl != TemplateUnclassified || len(violations) != 1 {
		t.Fatalf("expected UNCLASSIFIED with one violation, got %s %v", tmpl, violations)
	}
}
