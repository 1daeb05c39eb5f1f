// Package cache provides Redis caching for quotes and conversation sessions.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/config"
	"github.com/paintquote/backend/internal/models"
)

const (
	// Cache key prefixes
	quoteKeyPrefix = "quote:"
	allQuotesKey   = "quotes:all"

	// Default TTL for cached items
	defaultTTL = 5 * time.Minute
)

// Cache defines the interface for caching operations.
type Cache interface {
	// Get retrieves a quote from cache by ID.
	Get(ctx context.Context, id string) (*models.Quote, error)

	// GetAll retrieves all cached quotes.
	GetAll(ctx context.Context) ([]models.Quote, bool, error)

	// Set stores a quote in cache and drops the cached list.
	Set(ctx context.Context, quote *models.Quote) error

	// SetAll stores all quotes in cache.
	SetAll(ctx context.Context, quotes []models.Quote) error

	// Delete removes a quote from cache and drops the cached list.
	Delete(ctx context.Context, id string) error

	// InvalidateAll removes the cached quote list.
	InvalidateAll(ctx context.Context) error
}

// RedisCache implements Cache using Redis.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedisClient parses the configured URL and checks the connection.
func NewRedisClient(cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis")
	return client, nil
}

// NewRedisCache creates a quote cache on an existing client.
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
		ttl:    defaultTTL,
	}
}

// Get retrieves a quote from cache by ID.
func (c *RedisCache) Get(ctx context.Context, id string) (*models.Quote, error) {
	key := quoteKeyPrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		c.logger.Warn("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, nil // Treat errors as cache miss
	}

	var quote models.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		c.logger.Warn("Failed to unmarshal cached quote", zap.Error(err))
		return nil, nil
	}

	c.logger.Debug("Cache hit", zap.String("key", key))
	return &quote, nil
}

// GetAll retrieves all cached quotes.
func (c *RedisCache) GetAll(ctx context.Context) ([]models.Quote, bool, error) {
	data, err := c.client.Get(ctx, allQuotesKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		c.logger.Warn("Failed to get all from cache", zap.Error(err))
		return nil, false, nil
	}

	var quotes []models.Quote
	if err := json.Unmarshal(data, &quotes); err != nil {
		c.logger.Warn("Failed to unmarshal cached quotes", zap.Error(err))
		return nil, false, nil
	}

	c.logger.Debug("Cache hit for all quotes")
	return quotes, true, nil
}

// Set stores a quote in cache and drops the cached list.
func (c *RedisCache) Set(ctx context.Context, quote *models.Quote) error {
	key := quoteKeyPrefix + quote.ID

	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote for cache: %w", err)
	}

	_ = c.InvalidateAll(ctx)

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to set cache", zap.String("key", key), zap.Error(err))
		return err
	}

	c.logger.Debug("Cached quote", zap.String("key", key))
	return nil
}

// SetAll stores the full quote list.
func (c *RedisCache) SetAll(ctx context.Context, quotes []models.Quote) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("failed to marshal quotes for cache: %w", err)
	}

	if err := c.client.Set(ctx, allQuotesKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to set all cache", zap.Error(err))
		return err
	}

	c.logger.Debug("Cached all quotes", zap.Int("count", len(quotes)))
	return nil
}

// Delete removes a quote from cache and drops the cached list.
func (c *RedisCache) Delete(ctx context.Context, id string) error {
	key := quoteKeyPrefix + id

	_ = c.InvalidateAll(ctx)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return err
	}

	c.logger.Debug("Deleted from cache", zap.String("key", key))
	return nil
}

// InvalidateAll removes the cached quote list.
func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Del(ctx, allQuotesKey).Err(); err != nil {
		c.logger.Warn("Failed to invalidate all cache", zap.Error(err))
		return err
	}
	return nil
}
