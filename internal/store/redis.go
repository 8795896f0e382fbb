package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"

	"github.com/dnaas-fabric/fabricbd/internal/consolidate"
	"github.com/dnaas-fabric/fabricbd/internal/deploy"
)

// RedisStore persists every entity as a one-field hash "<table>|<key>" ->
// {"json": <marshaled entity>}, repurposing the teacher ConfigDBClient's
// table|key convention (pkg/device/configdb.go Set/Get/Delete) for
// arbitrary JSON-serializable records instead of flat SONiC config fields.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-configured redis.Client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(table, key string) string {
	return fmt.Sprintf("%s|%s", table, key)
}

func (s *RedisStore) putJSON(ctx context.Context, table, key string, v interface{}) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, redisKey(table, key), "json", string(blob)).Err()
}

func (s *RedisStore) getJSON(ctx context.Context, table, key string, v interface{}) (bool, error) {
	blob, err := s.client.HGet(ctx, redisKey(table, key), "json").Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(blob), v)
}

func (s *RedisStore) listJSON(ctx context.Context, table string, newItem func() interface{}, collect func(interface{})) error {
	keys, err := s.client.Keys(ctx, redisKey(table, "*")).Result()
	if err != nil {
		return err
	}
	sort.Strings(keys)
	for _, k := range keys {
		blob, err := s.client.HGet(ctx, k, "json").Result()
		if err != nil {
			return err
		}
		item := newItem()
		if err := json.Unmarshal([]byte(blob), item); err != nil {
			return err
		}
		collect(item)
	}
	return nil
}

// PutSnapshot writes the snapshot under its timestamp and atomically
// advances the LATEST pointer in a single pipeline (spec.md §4.10 "atomic
// snapshot writes").
func (s *RedisStore) PutSnapshot(ctx context.Context, snap SnapshotEnvelope) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	key := snap.Taken.UTC().Format("20060102T150405.000000000Z")
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisKey(tableSnapshot, key), "json", string(blob))
		pipe.HSet(ctx, redisKey(tableLatest, "snapshot"), "key", key)
		return nil
	})
	return err
}

func (s *RedisStore) LatestSnapshot(ctx context.Context) (SnapshotEnvelope, bool, error) {
	key, err := s.client.HGet(ctx, redisKey(tableLatest, "snapshot"), "key").Result()
	if err == redis.Nil {
		return SnapshotEnvelope{}, false, nil
	}
	if err != nil {
		return SnapshotEnvelope{}, false, err
	}
	var snap SnapshotEnvelope
	ok, err := s.getJSON(ctx, tableSnapshot, key, &snap)
	return snap, ok, err
}

func (s *RedisStore) PutService(ctx context.Context, svc consolidate.BridgeDomainService) error {
	return s.putJSON(ctx, tableService, svc.ID, svc)
}

func (s *RedisStore) GetService(ctx context.Context, id string) (consolidate.BridgeDomainService, bool, error) {
	var svc consolidate.BridgeDomainService
	ok, err := s.getJSON(ctx, tableService, id, &svc)
	return svc, ok, err
}

func (s *RedisStore) ListServices(ctx context.Context) ([]consolidate.BridgeDomainService, error) {
	var out []consolidate.BridgeDomainService
	err := s.listJSON(ctx, tableService, func() interface{} { return &consolidate.BridgeDomainService{} }, func(v interface{}) {
		out = append(out, *v.(*consolidate.BridgeDomainService))
	})
	return out, err
}

func (s *RedisStore) PutDeployment(ctx context.Context, dep deploy.Deployment) error {
	return s.putJSON(ctx, tableDeployment, dep.ID, dep)
}

func (s *RedisStore) GetDeployment(ctx context.Context, id string) (deploy.Deployment, bool, error) {
	var dep deploy.Deployment
	ok, err := s.getJSON(ctx, tableDeployment, id, &dep)
	return dep, ok, err
}

func (s *RedisStore) ListDeployments(ctx context.Context) ([]deploy.Deployment, error) {
	var out []deploy.Deployment
	err := s.listJSON(ctx, tableDeployment, func() interface{} { return &deploy.Deployment{} }, func(v interface{}) {
		out = append(out, *v.(*deploy.Deployment))
	})
	return out, err
}
