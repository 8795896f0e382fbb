package classify

import (
	"strconv"
	"strings"

	"github.com/dnaas-fabric/fabricbd/internal/fragment"
)

const fullRangeExpr = "1-4094"

func isNumericID(expr string) bool {
	_, err := strconv.Atoi(expr)
	return err == nil
}

func isListOrRange(expr string) bool {
	return expr != fullRangeExpr && (strings.Contains(expr, ",") || strings.Contains(expr, "-"))
}

// Classify assigns exactly one BridgeDomainTemplate to frag by evaluating
// the rules from spec.md §4.5 in order. It never errors; an unrecognized
// shape falls through to UNCLASSIFIED with a Violation explaining why.
func Classify(frag fragment.BDFragment) (Template, []Violation) {
	if frag.Empty || len(frag.Members) == 0 {
		return TemplateUnclassified, []Violation{{Rule: "empty-fragment", Reason: "fragment has no member interfaces"}}
	}

	var violations []Violation

	first := frag.Members[0].VLAN.VLANExpr
	uniform := true
	for _, m := range frag.Members[1:] {
		if m.VLAN.VLANExpr != first {
			uniform = false
			break
		}
	}

	var hasPush, hasPop, hasSwap, hasFullRange, hasSetExpr bool
	for _, m := range frag.Members {
		switch {
		case m.VLAN.PushOuter != 0:
			hasPush = true
		}
		if m.VLAN.PopCount != 0 {
			hasPop = true
		}
		if m.VLAN.SwapFrom != 0 {
			hasSwap = true
		}
		if m.VLAN.VLANExpr == fullRangeExpr {
			hasFullRange = true
		}
		if isListOrRange(m.VLAN.VLANExpr) {
			hasSetExpr = true
		}
	}

	if hasPush && hasSwap {
		violations = append(violations, Violation{Rule: "mixed-manipulation", Reason: "fragment mixes push and swap across member interfaces"})
	}
	if !uniform && !hasSetExpr && !hasFullRange {
		violations = append(violations, Violation{Rule: "vlan-id-mismatch", Reason: "member interfaces disagree on vlan expression"})
	}

	singleNumeric := uniform && isNumericID(first)

	switch {
	case singleNumeric && hasPush && hasPop && !hasSwap:
		return TemplateDoubleTaggedEdge, violations
	case singleNumeric && hasSwap && !hasPush && !hasPop:
		return TemplateDoubleTaggedLeaf, violations
	case hasFullRange:
		return TemplateQinQAll, violations
	case singleNumeric && !hasPush && !hasPop && !hasSwap:
		return TemplateSingleTagged, violations
	case hasSetExpr:
		return TemplateSingleTaggedSet, violations
	default:
		if allEmptyExpr(frag.Members) {
			return TemplatePortMode, violations
		}
		violations = append(violations, Violation{Rule: "no-rule-matched", Reason: "fragment did not match any classification rule"})
		return TemplateUnclassified, violations
	}
}

func allEmptyExpr(members []fragment.Member) bool {
	for _, m := range members {
		if m.VLAN.VLANExpr != "" {
			return false
		}
	}
	return true
}
