package store

import (
	"context"
	"testing"
	"time"

	"github.com/dnaas-fabric/fabricbd/internal/consolidate"
	"github.com/dnaas-fabric/fabricbd/internal/deploy"
)

func TestInMemoryStoreServiceRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	svc := consolidate.BridgeDomainService{ID: "svc-1", Name: "alice", VLAN: "100"}

	if err := s.PutService(ctx, svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok, err := s.GetService(ctx, "svc-1")
	if err != nil || !ok {
		t.Fatalf("expected found service, err=%v ok=%v", err, ok)
	}
	if got.Name != "alice" {
		t.Errorf("unexpected service: %+v", got)
	}
}

func TestInMemoryStoreLatestSnapshot(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	older := SnapshotEnvelope{Taken: time.Unix(100, 0)}
	newer := SnapshotEnvelope{Taken: time.Unix(200, 0)}

	s.PutSnapshot(ctx, older)
	s.PutSnapshot(ctx, newer)

	latest, ok, err := s.LatestSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("expected latest snapshot, err=%v ok=%v", err, ok)
	}
	if !latest.Taken.Equal(newer.Taken) {
		t.Errorf("expected newer snapshot, got %v", latest.Taken)
	}
}

func TestInMemoryStoreDeploymentRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	dep := deploy.Deployment{ID: "dep-1", ServiceName: "alice", State: deploy.StateVerified}

	if err := s.PutDeployment(ctx, dep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok, err := s.GetDeployment(ctx, "dep-1")
	if err != nil || !ok {
		t.Fatalf("expected found deployment, err=%v ok=%v", err, ok)
	}
	if got.State != deploy.StateVerified {
		t.Errorf("unexpected deployment state: %v", got.State)
	}
}

func TestWithACLFilter(t *testing.T) {
	services := []consolidate.BridgeDomainService{
		{ID: "1", VLAN: "100"},
		{ID: "2", VLAN: "200"},
	}
	filtered := WithACLFilter(services, func(svc consolidate.BridgeDomainService) bool {
		return svc.VLAN == "100"
	})
	if len(filtered) != 1 || filtered[0].ID != "1" {
		t.Fatalf("unexpected filtered result: %+v", filtered)
	}
}

func TestGetServiceNotFound(t *testing.T) {
	s := NewInMemoryStore()
	_, ok, err := s.GetService(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected not found")
	}
}
