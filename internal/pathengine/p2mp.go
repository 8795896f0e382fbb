package pathengine

import (
	"sort"

	"github.com/dnaas-fabric/fabricbd/internal/topology"
	"github.com/dnaas-fabric/fabricbd/internal/util"
)

// ComputeP2MP covers source -> destinations under the requested strategy
// (spec.md §4.7). manualPaths is only consulted for StrategyManual: a map
// from destination device to the spine the caller wants used.
func (p *Plan) ComputeP2MP(snap *topology.Snapshot, source string, destinations []string, strategy Strategy, perSpineCap int, manualPaths map[string]string) ([]Path, error) {
	switch strategy {
	case StrategySharedSpine:
		return p.sharedSpineCover(snap, source, destinations, perSpineCap, true)
	case StrategyHybrid:
		return p.hybridCover(snap, source, destinations, perSpineCap)
	case StrategyManual:
		return p.manualCover(snap, source, destinations, manualPaths)
	default:
		return nil, util.NewIntentRejected("unknown P2MP strategy: " + string(strategy))
	}
}

// sharedSpineCover greedily picks, at each round, the 2-tier spine covering
// the most still-uncovered destinations, until all are covered or no spine
// covers any remainder. When strict is true, any uncovered destination is a
// NoPath error; when strict is false, uncovered destinations are dropped and
// only the covered paths are returned.
func (p *Plan) sharedSpineCover(snap *topology.Snapshot, source string, destinations []string, perSpineCap int, strict bool) ([]Path, error) {
	paths, uncovered, err := p.sharedSpineCoverPartial(snap, source, destinations, perSpineCap)
	if err != nil {
		return nil, err
	}
	if strict && len(uncovered) > 0 {
		return nil, util.NewNoPath(uncovered[0])
	}
	return paths, nil
}

func (p *Plan) sharedSpineCoverPartial(snap *topology.Snapshot, source string, destinations []string, perSpineCap int) ([]Path, []string, error) {
	remaining := make(map[string]bool, len(destinations))
	for _, d := range destinations {
		remaining[d] = true
	}
	srcSpines := neighborsWithRole(snap, source, topology.RoleSpine)

	var paths []Path
	for len(remaining) > 0 {
		bestSpine, bestCovered := "", []string(nil)
		for _, spine := range srcSpines {
			if perSpineCap > 0 && p.SpineUsage(spine) >= perSpineCap {
				continue
			}
			var covered []string
			for dest := range remaining {
				if _, ok := findEdge(snap, spine, dest); ok {
					covered = append(covered, dest)
				}
			}
			sort.Strings(covered)
			if len(covered) > len(bestCovered) || (len(covered) == len(bestCovered) && len(covered) > 0 && spine < bestSpine) {
				bestSpine, bestCovered = spine, covered
			}
		}
		if bestSpine == "" || len(bestCovered) == 0 {
			break
		}
		for _, dest := range bestCovered {
			e1, _ := findEdge(snap, source, bestSpine)
			e2, _ := findEdge(snap, bestSpine, dest)
			path := Path{Source: source, Destination: dest, Hops: []topology.NeighborEdge{e1, e2}, Transit: []string{bestSpine}, Tier: 2}
			p.record(path)
			paths = append(paths, path)
			delete(remaining, dest)
		}
	}

	var leftover []string
	for d := range remaining {
		leftover = append(leftover, d)
	}
	sort.Strings(leftover)
	sort.Slice(paths, func(i, j int) bool { return paths[i].Destination < paths[j].Destination })
	return paths, leftover, nil
}

// hybridCover runs sharedSpineCover for whatever is 2-tier reachable, then
// falls back to 3-tier P2P for the remainder.
func (p *Plan) hybridCover(snap *topology.Snapshot, source string, destinations []string, perSpineCap int) ([]Path, error) {
	paths, leftover, err := p.sharedSpineCoverPartial(snap, source, destinations, perSpineCap)
	if err != nil {
		return nil, err
	}
	for _, dest := range leftover {
		path, err := p.ComputeP2P(snap, source, dest, perSpineCap)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].Destination < paths[j].Destination })
	return paths, nil
}

// manualCover validates and records caller-supplied per-destination spines.
func (p *Plan) manualCover(snap *topology.Snapshot, source string, destinations []string, manualPaths map[string]string) ([]Path, error) {
	var paths []Path
	for _, dest := range destinations {
		spine, ok := manualPaths[dest]
		if !ok {
			return nil, util.NewIntentRejected("manual strategy missing spine assignment for destination " + dest)
		}
		e1, ok1 := findEdge(snap, source, spine)
		if !ok1 {
			return nil, util.NewNoPath(dest)
		}
		e2, ok2 := findEdge(snap, spine, dest)
		if !ok2 {
			return nil, util.NewNoPath(dest)
		}
		path := Path{Source: source, Destination: dest, Hops: []topology.NeighborEdge{e1, e2}, Transit: []string{spine}, Tier: 2}
		p.record(path)
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].Destination < paths[j].Destination })
	return paths, nil
}
