package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nongdanviet/nongdanviet-backend/config"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// TTL cache chỉ số độ mặn mới nhất theo trạm
const latestReadingTTL = 15 * time.Minute

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// SetClient overrides the client instance (tests)
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// BlacklistToken adds a token to the blacklist
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", token)
	err := client.Set(ctx, key, "revoked", expiry).Err()
	if err != nil {
		logger.Error("Failed to blacklist token", err, nil)
		return err
	}
	return nil
}

// IsTokenBlacklisted checks if a token is in the blacklist
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", token)
	val, err := client.Get(ctx, key).Result()

	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err, nil)
		return false, err
	}

	return val == "revoked", nil
}

// CacheLatestReading lưu chỉ số độ mặn mới nhất của một trạm
func CacheLatestReading(ctx context.Context, stationID uint, reading interface{}) error {
	data, err := json.Marshal(reading)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("salinity:latest:%d", stationID)
	if err := client.Set(ctx, key, data, latestReadingTTL).Err(); err != nil {
		logger.Error("Failed to cache latest salinity reading", err, map[string]interface{}{
			"station_id": stationID,
		})
		return err
	}
	return nil
}

// GetLatestReading đọc chỉ số độ mặn mới nhất từ cache; trả về (false, nil) nếu không có
func GetLatestReading(ctx context.Context, stationID uint, dest interface{}) (bool, error) {
	key := fmt.Sprintf("salinity:latest:%d", stationID)
	data, err := client.Get(ctx, key).Bytes()

	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to read latest salinity reading from cache", err, map[string]interface{}{
			"station_id": stationID,
		})
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// InvalidateLatestReading xoá cache khi có chỉ số mới
func InvalidateLatestReading(ctx context.Context, stationID uint) error {
	key := fmt.Sprintf("salinity:latest:%d", stationID)
	return client.Del(ctx, key).Err()
}
