// Package cache provides a redis read-through cache for daily puzzle
// records. The repository stays the source of truth; the cache only absorbs
// the read load of the daily puzzle endpoint.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

const (
	keyPrefix  = "puzzle:daily:"
	defaultTTL = 48 * time.Hour
)

// PuzzleCache caches puzzle records in redis, keyed by date
type PuzzleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPuzzleCache connects to redis and returns a cache
func NewPuzzleCache(address, password string) (*PuzzleCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PuzzleCache{client: client, ttl: defaultTTL}, nil
}

// GetPuzzle returns the cached puzzle for the date key, or (nil, nil) on a
// cache miss. Corrupt entries are treated as misses and dropped.
func (c *PuzzleCache) GetPuzzle(ctx context.Context, id string) (*models.Puzzle, error) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached puzzle: %w", err)
	}

	var p models.Puzzle
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("dropping corrupt cache entry", "key", keyPrefix+id, "error", err)
		c.client.Del(ctx, keyPrefix+id)
		return nil, nil
	}

	return &p, nil
}

// SetPuzzle caches a puzzle record under its date key
func (c *PuzzleCache) SetPuzzle(ctx context.Context, p *models.Puzzle) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal puzzle: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+p.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache puzzle: %w", err)
	}

	return nil
}

// Invalidate drops the cached record for a date key
func (c *PuzzleCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to invalidate puzzle: %w", err)
	}
	return nil
}

// HealthCheck verifies Redis connectivity
func (c *PuzzleCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *PuzzleCache) Close() error {
	return c.client.Close()
}
