// Package pathengine computes P2P and P2MP paths over a topology snapshot
// for bridge-domain services (spec.md §4.7): leaf-spine-preferred shortest
// paths with a superspine fallback, and several P2MP covering strategies.
package pathengine

import "github.com/dnaas-fabric/fabricbd/internal/topology"

// Strategy selects how a P2MP request is covered.
type Strategy string

const (
	StrategySharedSpine Strategy = "SHARED_SPINE"
	StrategyHybrid      Strategy = "HYBRID"
	StrategyManual      Strategy = "MANUAL"
)

// Path is one source-to-destination route through the fabric.
type Path struct {
	Source      string
	Destination string
	Hops        []topology.NeighborEdge
	Transit     []string // intermediate device names, in order (1 for 2-tier, 3 for 3-tier)
	Tier        int      // 2 or 3
}

// Plan accumulates paths and per-spine utilization for one computation
// session (e.g. one intent's worth of P2P/P2MP calls), so later calls in
// the same plan see the load earlier calls placed on shared spines
// (spec.md §4.7 "utilization = count of services already using that spine
// in the current plan").
type Plan struct {
	Paths      []Path
	spineUsage map[string]int
}

// NewPlan returns an empty path-computation plan.
func NewPlan() *Plan {
	return &Plan{spineUsage: make(map[string]int)}
}

// SpineUsage returns how many paths in this plan currently transit spine.
func (p *Plan) SpineUsage(spine string) int { return p.spineUsage[spine] }

// SpinesServed returns, for every spine used in this plan, the destinations
// reached through it.
func (p *Plan) SpinesServed() map[string][]string {
	out := make(map[string][]string)
	for _, path := range p.Paths {
		for _, t := range path.Transit {
			out[t] = append(out[t], path.Destination)
		}
	}
	return out
}

func (p *Plan) record(path Path) {
	p.Paths = append(p.Paths, path)
	for _, t := range path.Transit {
		p.spineUsage[t]++
	}
}
