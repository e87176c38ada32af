package geocoding

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "geocode:"

// Coordinates is a resolved point.
type Coordinates struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// RedisCache stores successful lookups keyed by the normalized address.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// NormalizeQuery lowercases and collapses whitespace so equivalent addresses share a key.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func cacheKey(normalized string) string {
	sum := sha1.Sum([]byte(normalized))
	return cachePrefix + hex.EncodeToString(sum[:])
}

// Get reports ok=false on a miss.
func (c *RedisCache) Get(ctx context.Context, normalized string) (Coordinates, bool, error) {
	b, err := c.rdb.Get(ctx, cacheKey(normalized)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Coordinates{}, false, nil
	}
	if err != nil {
		return Coordinates{}, false, err
	}
	var coords Coordinates
	if err := json.Unmarshal(b, &coords); err != nil {
		return Coordinates{}, false, err
	}
	return coords, true, nil
}

func (c *RedisCache) Set(ctx context.Context, normalized string, coords Coordinates) error {
	b, err := json.Marshal(coords)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(normalized), b, c.ttl).Err()
}
