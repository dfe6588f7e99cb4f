package masterdata

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	productsCacheKey  = "formdesk:refdata:products"
	suppliersCacheKey = "formdesk:refdata:suppliers"
)

// Cache is a read-through Redis cache in front of a Repository. Cache
// failures fall back to the source; they are logged, never surfaced.
type Cache struct {
	source Repository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache wraps source with a Redis cache using the given TTL.
func NewCache(source Repository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{source: source, client: client, ttl: ttl, logger: logger}
}

// ListProducts implements Repository.
func (c *Cache) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if c.get(ctx, productsCacheKey, &products) {
		return products, nil
	}
	products, err := c.source.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, productsCacheKey, products)
	return products, nil
}

// ListSuppliers implements Repository.
func (c *Cache) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var suppliers []Supplier
	if c.get(ctx, suppliersCacheKey, &suppliers) {
		return suppliers, nil
	}
	suppliers, err := c.source.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, suppliersCacheKey, suppliers)
	return suppliers, nil
}

// Refresh refetches both snapshots from the source and rewrites the cache
// entries, resetting their TTL. Used by the scheduled warmup job.
func (c *Cache) Refresh(ctx context.Context) error {
	products, err := c.source.ListProducts(ctx)
	if err != nil {
		return err
	}
	c.set(ctx, productsCacheKey, products)
	suppliers, err := c.source.ListSuppliers(ctx)
	if err != nil {
		return err
	}
	c.set(ctx, suppliersCacheKey, suppliers)
	return nil
}

func (c *Cache) get(ctx context.Context, key string, target any) bool {
	if c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.Warn("refdata cache read", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		if c.logger != nil {
			c.logger.Warn("refdata cache decode", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, value any) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("refdata cache write", slog.String("key", key), slog.Any("error", err))
	}
}
