package consolidate

import (
	"sort"

	"github.com/dnaas-fabric/fabricbd/internal/classify"
	"github.com/dnaas-fabric/fabricbd/internal/topology"
	"github.com/dnaas-fabric/fabricbd/internal/util"
	"github.com/google/uuid"
)

// serviceIDNamespace is a fixed namespace UUID used to derive stable
// service ids from a ServiceSignature via uuid.NewSHA1, so the same
// signature always yields the same id across discovery rounds.
var serviceIDNamespace = uuid.MustParse("9b1f9c0a-6e3a-4a1b-9a0e-9f2a7f3c9e10")

const editDistanceThreshold = 2

type candidate struct {
	idx   int
	frag  Classified
	sig   ServiceSignature
	stable string // device+"/"+bdname — fragment stable id for sort order
}

// Consolidate runs the canonicalize -> bucket -> union-find -> score ->
// emit pipeline (spec.md §4.6). snap may be nil; when present it is used
// to populate each service's endpoint leaves, uplink interfaces, and path
// edges via neighbor lookups.
func Consolidate(classified []Classified, snap *topology.Snapshot, confidenceFloor float64) ([]BridgeDomainService, []Diagnostic) {
	if confidenceFloor <= 0 {
		confidenceFloor = DefaultConfidenceFloor
	}

	cands := make([]candidate, len(classified))
	for i, c := range classified {
		cands[i] = candidate{
			idx:    i,
			frag:   c,
			sig:    signatureFor(c),
			stable: c.Fragment.Device + "/" + c.Fragment.BDName,
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].stable < cands[j].stable })

	// Bucket by template, not by the literal VLAN string: two fragments
	// can name overlapping VLAN sets in different notations ("100,200-210"
	// vs "205-215,100"), and mergeRule's vlanEquivalent (range expansion +
	// overlap) is the thing that catches that. Bucketing on the VLAN string
	// itself would require an exact textual match before vlanEquivalent
	// ever runs, defeating it. An UNCLASSIFIED candidate joins the bucket of
	// the first concrete-template candidate (in stable order) it passes
	// mergeRule with, and keeps its own UNCLASSIFIED bucket otherwise.
	buckets := make(map[string][]int) // template key -> candidate indices (into cands)
	for i, c := range cands {
		key := string(c.sig.Template)
		if c.sig.Template == classify.TemplateUnclassified {
			for _, o := range cands {
				if o.sig.Template != classify.TemplateUnclassified && mergeRule(c.sig, o.sig) {
					key = string(o.sig.Template)
					break
				}
			}
		}
		buckets[key] = append(buckets[key], i)
	}
	bucketKeys := make([]string, 0, len(buckets))
	for k := range buckets {
		bucketKeys = append(bucketKeys, k)
	}
	sort.Strings(bucketKeys)

	var services []BridgeDomainService
	var diags []Diagnostic

	for _, templateKey := range bucketKeys {
		members := buckets[templateKey]
		ds := newDisjointSet(len(members))
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				if mergeRule(cands[members[a]].sig, cands[members[b]].sig) {
					ds.union(a, b)
				}
			}
		}

		groups := make(map[int][]int) // root -> local indices
		for i := range members {
			root := ds.find(i)
			groups[root] = append(groups[root], i)
		}
		roots := make([]int, 0, len(groups))
		for r := range groups {
			roots = append(roots, r)
		}
		sort.Slice(roots, func(i, j int) bool {
			return cands[members[groups[roots[i]][0]]].stable < cands[members[groups[roots[j]][0]]].stable
		})

		for _, root := range roots {
			group := groups[root]
			sort.Slice(group, func(i, j int) bool {
				return cands[members[group[i]]].stable < cands[members[group[j]]].stable
			})
			groupCands := make([]candidate, len(group))
			for i, localIdx := range group {
				groupCands[i] = cands[members[localIdx]]
			}

			score := scoreGroup(groupCands)
			if score < confidenceFloor && len(groupCands) > 1 {
				for _, gc := range groupCands {
					svc := emitService([]candidate{gc}, 1.0, snap)
					services = append(services, svc)
				}
				diags = append(diags, Diagnostic{
					Kind:    "LowConfidenceConsolidation",
					Message: util.NewLowConfidenceConsolidation(groupSignature(groupCands), score).Error(),
				})
				continue
			}

			svc := emitService(groupCands, score, snap)
			if score < 1.0 {
				svc.Diagnostics = append(svc.Diagnostics, Diagnostic{
					Kind:    "LowConfidenceConsolidation",
					Message: util.NewLowConfidenceConsolidation(svc.Name, score).Error(),
				})
			}
			services = append(services, svc)
		}
	}

	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services, diags
}

func groupSignature(group []candidate) string {
	out := ""
	for i, c := range group {
		if i > 0 {
			out += ","
		}
		out += c.stable
	}
	return out
}

// mergeRule implements spec.md §4.6 step 3: MERGE iff templates match (or
// one is UNCLASSIFIED), VLAN semantics are equivalent, and canonical names
// agree (equal, one null, or close enough by edit distance with vlans
// already agreeing).
func mergeRule(a, b ServiceSignature) bool {
	templatesOK := a.Template == b.Template ||
		a.Template == classify.TemplateUnclassified ||
		b.Template == classify.TemplateUnclassified
	if !templatesOK {
		return false
	}
	if !vlanEquivalent(a.VLAN, b.VLAN) {
		return false
	}
	if a.Name == "" || b.Name == "" || a.Name == b.Name {
		return true
	}
	return util.EditDistance(a.Name, b.Name) <= editDistanceThreshold
}

func vlanEquivalent(a, b string) bool {
	if a == b {
		return true
	}
	ea, erra := util.ExpandVLANRange(a)
	eb, errb := util.ExpandVLANRange(b)
	if erra != nil || errb != nil {
		return false
	}
	return util.RangesOverlap(ea, eb)
}

// scoreGroup starts at 1.0 and subtracts a concession for each source of
// uncertainty introduced by merging fragments that were not identical
// (spec.md §4.6 step 4).
func scoreGroup(group []candidate) float64 {
	if len(group) <= 1 {
		return 1.0
	}
	score := 1.0

	rawNames := make(map[string]bool)
	templates := make(map[classify.Template]bool)
	names := make(map[string]bool)
	missingUsername := 0
	for _, c := range group {
		rawNames[c.frag.Fragment.BDName] = true
		if c.frag.Template != classify.TemplateUnclassified {
			templates[c.frag.Template] = true
		}
		if c.sig.Name != "" {
			names[c.sig.Name] = true
		} else {
			missingUsername++
		}
	}
	if len(rawNames) > 1 {
		score -= 0.05 * float64(len(rawNames)-1)
	}
	if len(templates) > 1 {
		score -= 0.25
	}
	if len(names) > 1 {
		score -= 0.2
	}
	if missingUsername > 0 {
		score -= 0.05 * float64(missingUsername)
	}
	if score < 0 {
		score = 0
	}
	return score
}

func emitService(group []candidate, confidence float64, snap *topology.Snapshot) BridgeDomainService {
	name, template := pickName(group), pickTemplate(group)
	vlan := group[0].sig.VLAN

	svc := BridgeDomainService{
		Name:             name,
		Template:         template,
		VLAN:             vlan,
		UplinkInterfaces: make(map[string][]string),
		Confidence:       confidence,
	}

	devices := make([]string, 0, len(group))
	for _, c := range group {
		svc.Provenance = append(svc.Provenance, FragmentRef{Device: c.frag.Fragment.Device, BDName: c.frag.Fragment.BDName})
		devices = append(devices, c.frag.Fragment.Device)

		isLeaf := snap == nil
		if snap != nil {
			if d, ok := snap.Device(c.frag.Fragment.Device); ok {
				isLeaf = d.Role == topology.RoleLeaf
			}
		}
		var ifaces []string
		for _, m := range c.frag.Fragment.Members {
			ifaces = append(ifaces, m.Interface)
		}
		sort.Strings(ifaces)
		if isLeaf {
			svc.EndpointLeaves = append(svc.EndpointLeaves, EndpointLeaf{Device: c.frag.Fragment.Device, Interfaces: ifaces})
		} else {
			svc.UplinkInterfaces[c.frag.Fragment.Device] = ifaces
		}
	}

	sort.Slice(svc.EndpointLeaves, func(i, j int) bool { return svc.EndpointLeaves[i].Device < svc.EndpointLeaves[j].Device })
	sort.Slice(svc.Provenance, func(i, j int) bool {
		if svc.Provenance[i].Device != svc.Provenance[j].Device {
			return svc.Provenance[i].Device < svc.Provenance[j].Device
		}
		return svc.Provenance[i].BDName < svc.Provenance[j].BDName
	})

	if snap != nil {
		svc.PathEdges = pathEdgesAmong(snap, devices)
	}

	svc.ID = uuid.NewSHA1(serviceIDNamespace, []byte(string(svc.Template)+"|"+svc.VLAN+"|"+svc.Name)).String()
	return svc
}

func pathEdgesAmong(snap *topology.Snapshot, devices []string) []topology.NeighborEdge {
	set := make(map[string]bool, len(devices))
	for _, d := range devices {
		set[d] = true
	}
	seen := make(map[string]bool)
	var out []topology.NeighborEdge
	for _, d := range devices {
		for _, e := range snap.Neighbors(d) {
			if !set[e.DeviceA] || !set[e.DeviceB] {
				continue
			}
			if seen[e.Key()] {
				continue
			}
			seen[e.Key()] = true
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// pickName picks the most common canonical name across the group,
// tie-breaking lexicographically (spec.md §4.6 step 5).
func pickName(group []candidate) string {
	counts := make(map[string]int)
	for _, c := range group {
		if c.sig.Name != "" {
			counts[c.sig.Name]++
		}
	}
	best, bestCount := "", 0
	for name, n := range counts {
		if n > bestCount || (n == bestCount && name < best) {
			best, bestCount = name, n
		}
	}
	return best
}

// pickTemplate picks the most common concrete (non-UNCLASSIFIED) template
// across the group, falling back to UNCLASSIFIED if none is concrete.
func pickTemplate(group []candidate) classify.Template {
	counts := make(map[classify.Template]int)
	for _, c := range group {
		if c.frag.Template != classify.TemplateUnclassified {
			counts[c.frag.Template]++
		}
	}
	best, bestCount := classify.TemplateUnclassified, 0
	for t, n := range counts {
		if n > bestCount || (n == bestCount && t < best) {
			best, bestCount = t, n
		}
	}
	return best
}
