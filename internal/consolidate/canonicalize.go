package consolidate

import (
	"regexp"
	"strconv"

	"github.com/dnaas-fabric/fabricbd/internal/fragment"
	"github.com/dnaas-fabric/fabricbd/internal/util"
)

// namePatterns are tried in order against a normalized BD name to extract
// (username, vlan). The first match wins (spec.md §4.6 step 1). The
// vlan-only pattern comes first so "v100" is not read as user "v" by the
// user100 pattern.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^v?(\d+)$`),                 // v100, 100 (vlan only)
	regexp.MustCompile(`^([a-z][a-z0-9]*)_v(\d+)$`), // user_v100
	regexp.MustCompile(`^([a-z][a-z0-9]*)_(\d+)$`),  // user_100
	regexp.MustCompile(`^([a-z][a-z0-9]*?)(\d+)$`),  // user100
}

// canonicalizeBDName extracts (username, vlan) from a raw BD name using the
// ordered pattern list, falling back to vlan-only when no username is
// extractable (spec.md §4.6 step 1a/1b).
func canonicalizeBDName(raw string) (name string, vlan string, ok bool) {
	norm := util.StripLeadingGTag(util.NormalizeSeparators(raw))

	for i, pat := range namePatterns {
		m := pat.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		if i == 0 {
			// vlan-only: no username group.
			return "", m[1], true
		}
		if _, err := strconv.Atoi(m[2]); err != nil {
			continue
		}
		return m[1], m[2], true
	}
	return "", "", false
}

// signatureFor builds a ServiceSignature for one classified fragment. The
// primary VLAN key is the fragment's own extracted vlan when a name pattern
// matched; otherwise it falls back to the raw vlan expression carried by
// the fragment's first member, so a fragment whose BD name carries no vlan
// hint still buckets correctly.
func signatureFor(c Classified) ServiceSignature {
	name, vlan, ok := canonicalizeBDName(c.Fragment.BDName)
	if !ok || vlan == "" {
		vlan = firstMemberVLAN(c.Fragment)
	}
	return ServiceSignature{Name: name, VLAN: vlan, Template: c.Template}
}

func firstMemberVLAN(f fragment.BDFragment) string {
	if len(f.Members) == 0 {
		return ""
	}
	return f.Members[0].VLAN.VLANExpr
}
