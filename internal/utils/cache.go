package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Integer to string conversion for cache keys
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

// ProfileCacheKey is the cache key for a user's profile record
func ProfileCacheKey(userID uint) string {
	return "profile:user:" + strconv.Itoa(int(userID)) // Profile cache key
}

// HealthCacheKey is the cache key for a user's latest health record
func HealthCacheKey(userID uint) string {
	return "health:user:" + strconv.Itoa(int(userID)) // Health cache key
}

// ActivityPageCacheKey is the cache key for one page of a user's activity log
func ActivityPageCacheKey(userID uint, limit, offset int) string {
	// Key includes the pagination window so each page caches independently
	return "activities:user:" + strconv.Itoa(int(userID)) + ":limit:" + strconv.Itoa(limit) + ":offset:" + strconv.Itoa(offset)
}

// InvalidateActivityPages deletes cached activity pages for a user
// (simple version: delete the first 5 pages at the default page size)
func InvalidateActivityPages(ctx context.Context, rdb *redis.Client, userID uint, defaultLimit int) {
	for i := 0; i < 5; i++ {
		// Delete cache entries for the first 5 default-sized pages
		_ = DeleteCache(ctx, rdb, ActivityPageCacheKey(userID, defaultLimit, i*defaultLimit))
	}
}
