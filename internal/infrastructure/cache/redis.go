package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfscan/backend/internal/domain"
)

const scanKeyPrefix = "scan:"

// RedisCommands is the subset of the go-redis client the store uses.
// *redis.Client and *redis.ClusterClient both satisfy it.
type RedisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisScanStore keeps scans in Redis as JSON values with a TTL
type RedisScanStore struct {
	client RedisCommands
}

// NewRedisScanStore constructs a Redis-backed scan store
func NewRedisScanStore(client RedisCommands) *RedisScanStore {
	return &RedisScanStore{client: client}
}

// NewRedisClient parses a redis:// URL and pings the server
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionStoreUnavailable, err)
	}
	return client, nil
}

func scanKey(id string) string {
	return scanKeyPrefix + id
}

// Save writes the scan with the given TTL
func (s *RedisScanStore) Save(ctx context.Context, scan *domain.Scan, ttl time.Duration) error {
	if scan == nil || scan.ID == "" {
		return fmt.Errorf("scan id is required")
	}

	data, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("failed to encode scan: %w", err)
	}

	if err := s.client.Set(ctx, scanKey(scan.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSessionStoreUnavailable, err)
	}
	return nil
}

// Get reads a scan, mapping redis.Nil to domain.ErrScanNotFound
func (s *RedisScanStore) Get(ctx context.Context, id string) (*domain.Scan, error) {
	data, err := s.client.Get(ctx, scanKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrScanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionStoreUnavailable, err)
	}

	var scan domain.Scan
	if err := json.Unmarshal(data, &scan); err != nil {
		return nil, fmt.Errorf("failed to decode scan: %w", err)
	}
	return &scan, nil
}

// Delete removes a scan
func (s *RedisScanStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, scanKey(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSessionStoreUnavailable, err)
	}
	return nil
}
