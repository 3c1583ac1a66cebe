package snapshot

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/shopfloor/pkg/config"
	"github.com/matzehuels/shopfloor/pkg/layout"
)

// RedisStore keeps encoded snapshots as plain Redis string values under
// prefix+name. A positive TTL makes saved layouts expire.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg config.Redis) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, Retryable(fmt.Errorf("connect redis %s: %w", cfg.Addr, err))
	}
	return newRedisStore(client, cfg), nil
}

func newRedisStore(client *redis.Client, cfg config.Redis) *RedisStore {
	return &RedisStore{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// Load reads the snapshot stored under prefix+name. A missing key is a miss (nil, nil).
func (s *RedisStore) Load(ctx context.Context, name string) (*layout.Snapshot, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, Retryable(fmt.Errorf("redis get: %w", err))
	}
	return Decode(data)
}

// Save stores snap under prefix+name with the configured TTL.
func (s *RedisStore) Save(ctx context.Context, name string, snap *layout.Snapshot) error {
	if err := validName(name); err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(name), data, s.ttl).Err(); err != nil {
		return Retryable(fmt.Errorf("redis set: %w", err))
	}
	return nil
}

// Delete removes the key for name.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return Retryable(fmt.Errorf("redis del: %w", err))
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return Retryable(fmt.Errorf("redis ping: %w", err))
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
