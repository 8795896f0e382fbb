package store

import (
	"context"
	"sync"

	"github.com/dnaas-fabric/fabricbd/internal/consolidate"
	"github.com/dnaas-fabric/fabricbd/internal/deploy"
)

// InMemoryStore is a Store backed by plain Go maps, used by tests in place
// of Redis (servak-topology-manager's internal/repository/inmemory pattern).
type InMemoryStore struct {
	mu         sync.RWMutex
	snapshots  []SnapshotEnvelope
	services   map[string]consolidate.BridgeDomainService
	deployments map[string]deploy.Deployment
}

// NewInMemoryStore returns an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		services:    make(map[string]consolidate.BridgeDomainService),
		deployments: make(map[string]deploy.Deployment),
	}
}

func (s *InMemoryStore) PutSnapshot(ctx context.Context, snap SnapshotEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snap)
	return nil
}

func (s *InMemoryStore) LatestSnapshot(ctx context.Context) (SnapshotEnvelope, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.snapshots) == 0 {
		return SnapshotEnvelope{}, false, nil
	}
	latest := s.snapshots[0]
	for _, snap := range s.snapshots[1:] {
		if snap.Taken.After(latest.Taken) {
			latest = snap
		}
	}
	return latest, true, nil
}

func (s *InMemoryStore) PutService(ctx context.Context, svc consolidate.BridgeDomainService) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
	return nil
}

func (s *InMemoryStore) GetService(ctx context.Context, id string) (consolidate.BridgeDomainService, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	return svc, ok, nil
}

func (s *InMemoryStore) ListServices(ctx context.Context) ([]consolidate.BridgeDomainService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]consolidate.BridgeDomainService, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	return out, nil
}

func (s *InMemoryStore) PutDeployment(ctx context.Context, dep deploy.Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deployments[dep.ID] = dep
	return nil
}

func (s *InMemoryStore) GetDeployment(ctx context.Context, id string) (deploy.Deployment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dep, ok := s.deployments[id]
	return dep, ok, nil
}

func (s *InMemoryStore) ListDeployments(ctx context.Context) ([]deploy.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]deploy.Deployment, 0, len(s.deployments))
	for _, dep := range s.deployments {
		out = append(out, dep)
	}
	return out, nil
}
