package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/voxdesk-app/voxdesk/pkg/config"
)

// statusTTL keeps last-run summaries around long enough for operators to
// inspect them without growing Redis unbounded.
const statusTTL = 7 * 24 * time.Hour

// RedisStore backs the per-tenant job locks and the cached last-run
// summaries of the sync status endpoint.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Acquire takes the tenant's job lock when it is free. SETNX keeps the
// check and the claim atomic across instances.
func (s *RedisStore) Acquire(ctx context.Context, tenantID uuid.UUID, job string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, lockKey(tenantID, job), "1", ttl).Result()
}

// Release frees the tenant's job lock.
func (s *RedisStore) Release(ctx context.Context, tenantID uuid.UUID, job string) error {
	return s.client.Del(ctx, lockKey(tenantID, job)).Err()
}

// RecordRun stores the last summary of one job for the status endpoint.
func (s *RedisStore) RecordRun(ctx context.Context, tenantID uuid.UUID, job string, summary interface{}) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	key := statusKey(tenantID)
	if err := s.client.HSet(ctx, key, job, payload).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, statusTTL).Err()
}

// LastRuns returns the cached last-run summary per job name.
func (s *RedisStore) LastRuns(ctx context.Context, tenantID uuid.UUID) (map[string]json.RawMessage, error) {
	raw, err := s.client.HGetAll(ctx, statusKey(tenantID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(raw))
	for job, payload := range raw {
		out[job] = json.RawMessage(payload)
	}
	return out, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func lockKey(tenantID uuid.UUID, job string) string {
	return fmt.Sprintf("sync:lock:%s:%s", tenantID, job)
}

func statusKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("sync:status:%s", tenantID)
}
