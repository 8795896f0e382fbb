package pathengine

import (
	"sort"

	"github.com/dnaas-fabric/fabricbd/internal/topology"
	"github.com/dnaas-fabric/fabricbd/internal/util"
)

func neighborsWithRole(snap *topology.Snapshot, device string, role topology.Role) []string {
	var out []string
	for _, d := range snap.NeighborDevices(device) {
		if nd, ok := snap.Device(d); ok && nd.Role == role {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, x := range a {
		set[x] = true
	}
	var out []string
	for _, y := range b {
		if set[y] {
			out = append(out, y)
		}
	}
	sort.Strings(out)
	return out
}

func findEdge(snap *topology.Snapshot, a, b string) (topology.NeighborEdge, bool) {
	for _, e := range snap.Neighbors(a) {
		if e.DeviceA == b || e.DeviceB == b {
			return e, true
		}
	}
	return topology.NeighborEdge{}, false
}

// pickLowestUtilization chooses the candidate with the lowest current usage
// in the plan, tie-breaking on lexicographically earliest name
// (spec.md §4.7, §4.6 determinism convention applied here too).
func pickLowestUtilization(p *Plan, candidates []string, perSpineCap int) (string, bool) {
	best, bestUsage := "", -1
	for _, c := range candidates {
		usage := p.SpineUsage(c)
		if perSpineCap > 0 && usage >= perSpineCap {
			continue
		}
		if bestUsage == -1 || usage < bestUsage || (usage == bestUsage && c < best) {
			best, bestUsage = c, usage
		}
	}
	return best, best != ""
}

// ComputeP2P finds a path from source to destination, preferring a shared
// 2-tier spine and falling back to a 3-tier superspine transit
// (spec.md §4.7). perSpineCap <= 0 means uncapped.
func (p *Plan) ComputeP2P(snap *topology.Snapshot, source, destination string, perSpineCap int) (Path, error) {
	srcSpines := neighborsWithRole(snap, source, topology.RoleSpine)
	dstSpines := neighborsWithRole(snap, destination, topology.RoleSpine)
	shared := intersect(srcSpines, dstSpines)

	if len(shared) > 0 {
		spine, ok := pickLowestUtilization(p, shared, perSpineCap)
		if !ok {
			return Path{}, util.NewCapacityExceeded(shared[0])
		}
		e1, _ := findEdge(snap, source, spine)
		e2, _ := findEdge(snap, spine, destination)
		path := Path{Source: source, Destination: destination, Hops: []topology.NeighborEdge{e1, e2}, Transit: []string{spine}, Tier: 2}
		p.record(path)
		return path, nil
	}

	// 3-tier fallback: source -> srcSpine -> superspine -> dstSpine -> destination.
	type combo struct {
		srcSpine, superspine, dstSpine string
	}
	var combos []combo
	for _, ss := range srcSpines {
		ssSuper := neighborsWithRole(snap, ss, topology.RoleSuperspine)
		for _, ds := range dstSpines {
			dsSuper := neighborsWithRole(snap, ds, topology.RoleSuperspine)
			for _, super := range intersect(ssSuper, dsSuper) {
				combos = append(combos, combo{ss, super, ds})
			}
		}
	}
	if len(combos) == 0 {
		return Path{}, util.NewNoPath(destination)
	}
	sort.Slice(combos, func(i, j int) bool {
		ci, cj := combos[i], combos[j]
		if ci.srcSpine != cj.srcSpine {
			return ci.srcSpine < cj.srcSpine
		}
		if ci.superspine != cj.superspine {
			return ci.superspine < cj.superspine
		}
		return ci.dstSpine < cj.dstSpine
	})

	best, bestUsage, bestIdx := combo{}, -1, -1
	for i, c := range combos {
		usage := p.SpineUsage(c.srcSpine) + p.SpineUsage(c.superspine) + p.SpineUsage(c.dstSpine)
		if perSpineCap > 0 && (p.SpineUsage(c.srcSpine) >= perSpineCap || p.SpineUsage(c.superspine) >= perSpineCap || p.SpineUsage(c.dstSpine) >= perSpineCap) {
			continue
		}
		if bestIdx == -1 || usage < bestUsage {
			best, bestUsage, bestIdx = c, usage, i
		}
	}
	if bestIdx == -1 {
		return Path{}, util.NewCapacityExceeded(combos[0].superspine)
	}

	e1, _ := findEdge(snap, source, best.srcSpine)
	e2, _ := findEdge(snap, best.srcSpine, best.superspine)
	e3, _ := findEdge(snap, best.superspine, best.dstSpine)
	e4, _ := findEdge(snap, best.dstSpine, destination)
	path := Path{
		Source: source, Destination: destination,
		Hops:    []topology.NeighborEdge{e1, e2, e3, e4},
		Transit: []string{best.srcSpine, best.superspine, best.dstSpine},
		Tier:    3,
	}
	p.record(path)
	return path, nil
}
