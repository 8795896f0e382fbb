// Package store persists topology snapshots, consolidated services, and
// deployments (spec.md §4.10). A Redis-backed Store repurposes the
// teacher's CONFIG_DB table|key hashing convention: table becomes entity
// kind, key becomes the entity's stable id. An in-memory fake backs tests.
package store

import (
	"context"
	"time"

	"github.com/dnaas-fabric/fabricbd/internal/consolidate"
	"github.com/dnaas-fabric/fabricbd/internal/deploy"
	"github.com/dnaas-fabric/fabricbd/internal/topology"
)

// Entity kinds, used as the Redis hash-key table prefix.
const (
	tableSnapshot   = "SNAPSHOT"
	tableService    = "SERVICE"
	tableDeployment = "DEPLOYMENT"
	tableLatest     = "LATEST"
)

// SnapshotEnvelope wraps a topology snapshot with the round it was taken.
type SnapshotEnvelope struct {
	Taken      time.Time
	Devices    []topology.Device
	Interfaces []topology.Interface
	Edges      []topology.NeighborEdge
}

// Store is the persistence surface for C10: snapshots keyed by timestamp,
// services keyed by their stable id, deployments keyed by a monotonic id.
// Implementations: Redis-backed RedisStore, in-memory InMemoryStore.
type Store interface {
	PutSnapshot(ctx context.Context, snap SnapshotEnvelope) error
	LatestSnapshot(ctx context.Context) (SnapshotEnvelope, bool, error)

	PutService(ctx context.Context, svc consolidate.BridgeDomainService) error
	GetService(ctx context.Context, id string) (consolidate.BridgeDomainService, bool, error)
	ListServices(ctx context.Context) ([]consolidate.BridgeDomainService, error)

	PutDeployment(ctx context.Context, dep deploy.Deployment) error
	GetDeployment(ctx context.Context, id string) (deploy.Deployment, bool, error)
	ListDeployments(ctx context.Context) ([]deploy.Deployment, error)
}

// ACLFilter narrows a read-side listing to ranges the caller may see.
// VLAN-range ACLs are out of scope for discovery/consolidation (spec.md
// Non-goals); this is the only place they may apply, as a pure read filter.
type ACLFilter func(consolidate.BridgeDomainService) bool

// WithACLFilter returns the subset of services that pass filter.
func WithACLFilter(services []consolidate.BridgeDomainService, filter ACLFilter) []consolidate.BridgeDomainService {
	if filter == nil {
		return services
	}
	out := make([]consolidate.BridgeDomainService, 0, len(services))
	for _, svc := range services {
		if filter(svc) {
			out = append(out, svc)
		}
	}
	return out
}
