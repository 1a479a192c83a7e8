// Package redis provides a Redis-backed ContainerStore and a distributed
// per-surface locker for multi-replica deployments.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marquee-kit/marquee/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.ContainerStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for surface containers.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix for surface containers.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "marquee:surface:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(surfaceID string) string {
	return s.prefix + surfaceID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the container to Redis.
func (s *Store) Save(ctx context.Context, surfaceID string, c *domain.Container) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal container: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(surfaceID), data, s.ttl)

	// Index score = expiry time, so List can prune lazily. No TTL means a
	// far-future score.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: surfaceID})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the container from Redis.
func (s *Store) Load(ctx context.Context, surfaceID string) (*domain.Container, error) {
	val, err := s.client.Get(ctx, s.key(surfaceID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrContainerNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var c domain.Container
	if err := json.Unmarshal([]byte(val), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal container: %w", err)
	}
	return &c, nil
}

// Delete removes the surface container.
func (s *Store) Delete(ctx context.Context, surfaceID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(surfaceID))
	pipe.ZRem(ctx, s.indexKey(), surfaceID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns live surface identifiers, lazily pruning expired entries
// from the index.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired surfaces: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list surfaces: %w", err)
	}
	return ids, nil
}

// Client exposes the underlying redis client, e.g. to share it with a
// Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
