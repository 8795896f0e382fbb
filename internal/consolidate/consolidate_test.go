package consolidate

import (
	"testing"

	"github.com/dnaas-fabric/fabricbd/internal/classify"
	"github.com/dnaas-fabric/fabricbd/internal/fragment"
)

func classified(device, bdName string, vlan string, tmpl classify.Template) Classified {
	return Classified{
		Fragment: fragment.BDFragment{
			Device: device,
			BDName: bdName,
			Members: []fragment.Member{
				{Interface: "Ethernet0.100", VLAN: fragment.VLANSemantics{VLANExpr: vlan}},
			},
		},
		Template: tmpl,
	}
}

func TestCanonicalizeBDNameVariants(t *testing.T) {
	cases := []struct {
		raw, wantName, wantVLAN string
	}{
		{"g_user_v100", "user", "100"},
		{"user_v100", "user", "100"},
		{"user-100", "user", "100"},
		{"user100", "user", "100"},
		{"v200", "", "200"},
		{"200", "", "200"},
	}
	for _, c := range cases {
		name, vlan, ok := canonicalizeBDName(c.raw)
		if !ok || name != c.wantName || vlan != c.wantVLAN {
			t.Errorf("canonicalizeBDName(%q) = (%q,%q,%v), want (%q,%q,true)", c.raw, name, vlan, ok, c.wantName, c.wantVLAN)
		}
	}
}

func TestConsolidateMergesHandEditedNames(t *testing.T) {
	input := []Classified{
		classified("leaf-a", "g_alice_v200", "200", classify.TemplateSingleTagged),
		classified("leaf-b", "alice-200", "200", classify.TemplateSingleTagged),
		classified("spine-1", "alice_v200", "200", classify.TemplateSingleTagged),
	}
	services, _ := Consolidate(input, nil, DefaultConfidenceFloor)
	if len(services) != 1 {
		t.Fatalf("expected 1 consolidated service, got %d: %+v", len(services), services)
	}
	svc := services[0]
	if svc.Name != "alice" {
		t.Fatalf("expected name alice, got %q", svc.Name)
	}
	if svc.Confidence >= 1.0 {
		t.Fatalf("expected confidence < 1.0 for hand-edited names, got %f", svc.Confidence)
	}
	if len(svc.Provenance) != 3 {
		t.Fatalf("expected provenance of 3 fragments, got %+v", svc.Provenance)
	}
	found := false
	for _, d := range svc.Diagnostics {
		if d.Kind == "LowConfidenceConsolidation" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected LowConfidenceConsolidation diagnostic, got %+v", svc.Diagnostics)
	}
}

func TestConsolidateKeepsUnrelatedServicesSeparate(t *testing.T) {
	input := []Classified{
		classified("leaf-a", "g_alice_v200", "200", classify.TemplateSingleTagged),
		classified("leaf-b", "g_bob_v300", "300", classify.TemplateSingleTagged),
	}
	services, _ := Consolidate(input, nil, DefaultConfidenceFloor)
	if len(services) != 2 {
		t.Fatalf("expected 2 separate services, got %d: %+v", len(services), services)
	}
	for _, s := range services {
		if s.Confidence != 1.0 {
			t.Errorf("expected singleton confidence 1.0, got %f for %s", s.Confidence, s.Name)
		}
	}
}

func TestConsolidateRejectsLowScoringUnion(t *testing.T) {
	// Two vlan-only fragments (no extractable username) merge with a named
	// one under the merge rule (one side's name is null), but the missing
	// usernames and raw-name variance drag the score below a strict floor.
	input := []Classified{
		classified("leaf-a", "g_alice_v100", "100", classify.TemplateSingleTagged),
		classified("leaf-b", "100", "100", classify.TemplateUnclassified),
		classified("spine-1", "v100", "100", classify.TemplateUnclassified),
	}
	services, diags := Consolidate(input, nil, 0.85)
	if len(services) != 3 {
		t.Fatalf("expected union to be rejected into 3 singleton services, got %d: %+v", len(services), services)
	}
	for _, s := range services {
		if s.Confidence != 1.0 {
			t.Errorf("expected rejected singleton confidence 1.0, got %f", s.Confidence)
		}
	}
	found := false
	for _, d := range diags {
		if d.Kind == "LowConfidenceConsolidation" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a top-level LowConfidenceConsolidation diagnostic, got %+v", diags)
	}
}

func TestConsolidateMergesOverlappingVLANRanges(t *testing.T) {
	// Overlapping sets of tags, written two different ways: neither BD
	// name parses as a name+vlan pattern, so signatureFor falls back to
	// each fragment's raw VLANExpr, and the two strings are never
	// literally equal. vlanEquivalent must expand both and find the
	// overlap (100 and 205-210 are shared) for these to land in one
	// service at all.
	input := []Classified{
		classified("leaf-a", "rangebd", "100,200-210", classify.TemplateSingleTaggedSet),
		classified("leaf-b", "rangebd", "205-215,100", classify.TemplateSingleTaggedSet),
	}
	services, _ := Consolidate(input, nil, DefaultConfidenceFloor)
	if len(services) != 1 {
		t.Fatalf("expected overlapping VLAN ranges to merge into 1 service, got %d: %+v", len(services), services)
	}
	if len(services[0].Provenance) != 2 {
		t.Fatalf("expected provenance of 2 fragments, got %+v", services[0].Provenance)
	}
}

func TestConsolidateDeterministicIDs(t *testing.T) {
	input := []Classified{
		classified("leaf-a", "g_alice_v200", "200", classify.TemplateSingleTagged),
	}
	s1, _ := Consolidate(input, nil, DefaultConfidenceFloor)
	s2, _ := Consolidate(input, nil, DefaultConfidenceFloor)
	if s1[0].ID != s2[0].ID {
		t.Fatalf("expected stable service id across runs, got %s vs %s", s1[0].ID, s2[0].ID)
	}
}
