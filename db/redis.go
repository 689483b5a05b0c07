package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jamjar/config"
	"jamjar/model"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the global Redis client.
var RedisClient *redis.Client

// snapshotTTL bounds how stale the contributor playlist view may be.
const snapshotTTL = 30 * time.Second

// ConnectRedis initializes the Redis connection.
func ConnectRedis(cfg *config.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return nil
}

// CloseRedis closes the Redis connection.
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// PingRedis checks connectivity.
func PingRedis(ctx context.Context) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func snapshotKey(token string) string {
	return "jamjar:snapshot:" + token
}

// CachePlaylistSnapshot stores the proxied playlist view for a token.
func CachePlaylistSnapshot(ctx context.Context, token string, tracks []model.Track) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(tracks)
	if err != nil {
		return fmt.Errorf("failed to marshal playlist snapshot: %w", err)
	}

	if err := RedisClient.Set(ctx, snapshotKey(token), data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache playlist snapshot: %w", err)
	}
	return nil
}

// GetPlaylistSnapshot returns the cached playlist view for a token,
// or nil when there is no fresh snapshot.
func GetPlaylistSnapshot(ctx context.Context, token string) ([]model.Track, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := RedisClient.Get(ctx, snapshotKey(token)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist snapshot: %w", err)
	}

	var tracks []model.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal playlist snapshot: %w", err)
	}
	return tracks, nil
}

// InvalidatePlaylistSnapshot drops the cached view after a successful append.
func InvalidatePlaylistSnapshot(ctx context.Context, token string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	if _, err := RedisClient.Del(ctx, snapshotKey(token)).Result(); err != nil {
		return fmt.Errorf("failed to invalidate playlist snapshot: %w", err)
	}
	return nil
}
