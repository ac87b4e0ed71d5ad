// Package cache keeps recent music search results in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"AMUZZ_BACK-END/internal/models"
)

const moodKeyPrefix = "amuzz:music:mood:"

// NewRedisClient creates a Redis client from a redis:// URL and pings it
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// MoodCache stores mood search results as JSON with a fixed TTL
type MoodCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewMoodCache wraps client; entries expire after ttl
func NewMoodCache(client redis.Cmdable, ttl time.Duration) *MoodCache {
	return &MoodCache{client: client, ttl: ttl}
}

// Ping reports whether the Redis server answers
func (c *MoodCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func moodKey(mood string) string {
	return moodKeyPrefix + strings.ToLower(strings.TrimSpace(mood))
}

// Get returns the cached tracks for mood. found is false on a miss.
func (c *MoodCache) Get(ctx context.Context, mood string) ([]models.Track, bool, error) {
	data, err := c.client.Get(ctx, moodKey(mood)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var tracks []models.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, false, fmt.Errorf("decode cached tracks: %w", err)
	}
	return tracks, true, nil
}

// Set stores tracks for mood
func (c *MoodCache) Set(ctx context.Context, mood string, tracks []models.Track) error {
	data, err := json.Marshal(tracks)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, moodKey(mood), data, c.ttl).Err()
}
