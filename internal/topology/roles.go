package topology

import "strings"

// DefaultUplinkThreshold is the minimum number of uplinks to spine-like
// peers before a device is promoted to LEAF by the neighbor-degree rule
// (spec.md §4.3, rule 2).
const DefaultUplinkThreshold = 2

// namePrefixRole infers a role purely from device-name tokens. SUPERSPINE
// is checked before SPINE since "superspine" contains "spine" as a substring.
func namePrefixRole(name string) (Role, bool) {
	n := strings.ToUpper(name)
	switch {
	case strings.Contains(n, "SUPERSPINE"):
		return RoleSuperspine, true
	case strings.Contains(n, "SPINE"):
		return RoleSpine, true
	case strings.Contains(n, "LEAF"):
		return RoleLeaf, true
	default:
		return RoleUnknown, false
	}
}

// inferRoles runs the three-rule role-inference cascade from spec.md §4.3
// over every device in the builder, using the already-coalesced adjacency
// map to evaluate the neighbor-degree and majority-vote rules.
func inferRoles(devices map[string]*Device, adjacency map[string][]string, uplinkThreshold int) {
	if uplinkThreshold <= 0 {
		uplinkThreshold = DefaultUplinkThreshold
	}

	// Rule 1: name-prefix.
	for _, d := range devices {
		if role, matched := namePrefixRole(d.Name); matched {
			d.Role = role
			d.RoleConfidence = 0.9
			d.RoleRule = "name-prefix"
		}
	}

	// Rule 2: neighbor-degree — devices still unknown with >=K uplinks to
	// peers already classified SPINE or SUPERSPINE are promoted to LEAF.
	for _, d := range devices {
		if d.Role != RoleUnknown {
			continue
		}
		spineUplinks := 0
		for _, peer := range adjacency[d.Name] {
			if pd, ok := devices[peer]; ok && (pd.Role == RoleSpine || pd.Role == RoleSuperspine) {
				spineUplinks++
			}
		}
		if spineUplinks >= uplinkThreshold {
			d.Role = RoleLeaf
			d.RoleConfidence = 0.7
			d.RoleRule = "neighbor-degree"
		}
	}

	// Rule 3: majority-vote tiebreak — devices still unknown take the
	// plurality role among their classified neighbors.
	for _, d := range devices {
		if d.Role != RoleUnknown {
			continue
		}
		counts := map[Role]int{}
		total := 0
		for _, peer := range adjacency[d.Name] {
			if pd, ok := devices[peer]; ok && pd.Role != RoleUnknown {
				counts[pd.Role]++
				total++
			}
		}
		if total == 0 {
			continue // stays UNKNOWN; caller records a Diagnostic
		}
		best, bestCount := RoleUnknown, 0
		tie := false
		for role, c := range counts {
			switch {
			case c > bestCount:
				best, bestCount, tie = role, c, false
			case c == bestCount && role != best:
				tie = true
			}
		}
		if tie || best == RoleUnknown {
			continue
		}
		d.Role = best
		d.RoleConfidence = float64(bestCount) / float64(total)
		d.RoleRule = "majority-vote"
	}
}
