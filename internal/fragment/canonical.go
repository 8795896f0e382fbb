package fragment

import (
	"regexp"
	"strings"

	"github.com/dnaas-fabric/fabricbd/internal/parser"
)

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// canonicalize renders a member interface name in the fabric's canonical
// form: a physical-rooted subinterface keeps its raw name ("Ethernet0.100");
// a bundle-rooted one is rewritten to the fabric-wide "bundle-<n>.<subid>"
// form regardless of the device-local LAG name ("PortChannel1.100" ->
// "bundle-1.100"), so two devices' differently-named LAGs with the same
// trailing number ("PortChannel1", "ae1") compare equal once both carry the
// same subinterface id (spec.md §4.4).
func canonicalize(name string, byName map[string]parser.InterfaceRecord) string {
	dot := strings.Index(name, ".")
	if dot < 0 {
		return name
	}
	base, subID := name[:dot], name[dot+1:]
	parentRec, ok := byName[base]
	if !ok || parentRec.Kind != "bundle" {
		return name
	}
	n := trailingDigits.FindString(base)
	if n == "" {
		return name
	}
	return "bundle-" + n + "." + subID
}

func indexInterfaces(recs []parser.InterfaceRecord) map[string]parser.InterfaceRecord {
	out := make(map[string]parser.InterfaceRecord, len(recs))
	for _, r := range recs {
		out[r.Name] = r
	}
	return out
}
