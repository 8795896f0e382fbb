package fragment

import (
	"sort"

	"github.com/dnaas-fabric/fabricbd/internal/parser"
	"github.com/dnaas-fabric/fabricbd/internal/util"
)

// Diagnostic is a non-fatal extraction-time anomaly (spec.md §4.4: an
// EmptyFragment is never dropped, only flagged).
type Diagnostic struct {
	Kind    string
	Message string
}

type fragKey struct {
	device string
	bdName string
}

// Extract walks parsed BD-member and BD-instance records across every
// discovered device and emits one BDFragment per (device, bdName), using
// interfaces to resolve canonical member names. A BD instance with no
// members is still emitted, with Empty set and an EmptyFragment diagnostic.
func Extract(interfaces []parser.InterfaceRecord, bdMembers []parser.BDMemberRecord, bdInstances []parser.BDInstanceRecord) ([]BDFragment, []Diagnostic) {
	byDeviceIfaces := make(map[string]map[string]parser.InterfaceRecord)
	for _, i := range interfaces {
		if byDeviceIfaces[i.Device] == nil {
			byDeviceIfaces[i.Device] = make(map[string]parser.InterfaceRecord)
		}
		byDeviceIfaces[i.Device][i.Name] = i
	}

	membersByKey := make(map[fragKey][]parser.BDMemberRecord)
	for _, m := range bdMembers {
		k := fragKey{m.Device, m.BDName}
		membersByKey[k] = append(membersByKey[k], m)
	}

	keys := make(map[fragKey]bool)
	for k := range membersByKey {
		keys[k] = true
	}
	for _, inst := range bdInstances {
		keys[fragKey{inst.Device, inst.BDName}] = true
	}

	ordered := make([]fragKey, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].device != ordered[j].device {
			return ordered[i].device < ordered[j].device
		}
		return ordered[i].bdName < ordered[j].bdName
	})

	var out []BDFragment
	var diags []Diagnostic

	for _, k := range ordered {
		byName := byDeviceIfaces[k.device]
		recs := membersByKey[k]
		frag := BDFragment{Device: k.device, BDName: k.bdName}

		sort.Slice(recs, func(i, j int) bool { return recs[i].Interface < recs[j].Interface })
		for _, m := range recs {
			frag.Members = append(frag.Members, Member{
				Interface: canonicalize(m.Interface, byName),
				VLAN:      fromParserVLAN(m.VLAN),
				AdminUp:   m.AdminUp,
			})
		}

		if len(frag.Members) == 0 {
			frag.Empty = true
			diags = append(diags, Diagnostic{
				Kind:    "EmptyFragment",
				Message: util.NewUnclassifiedFragment(k.device, k.bdName, "no member interfaces").Error(),
			})
		}
		out = append(out, frag)
	}

	return out, diags
}
