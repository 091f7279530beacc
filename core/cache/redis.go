package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dagplanner-api/core/logger"

	"github.com/redis/go-redis/v9"
)

// Cache wraps the shared Redis client
type Cache struct {
	client *redis.Client
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

var instance *Cache

func GetCache() *Cache {
	return instance
}

func InitCache(config CacheConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	instance = &Cache{client: client}
	logger.Info("Redis initialized successfully", "host", config.Host, "port", config.Port)
	return instance, nil
}

// SetJSON stores a JSON-encoded value with a TTL
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetJSON loads a JSON-encoded value. Returns false when the key is absent.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, key, ttl).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
