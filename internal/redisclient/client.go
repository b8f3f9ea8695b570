package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orderpipeline/internal/models"

	"github.com/go-redis/redis/v8"
)

// Client caches catalog product snapshots so the notification enrichment
// path does not hammer the catalog RPC for the same product names.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client and verifies connectivity.
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func productKey(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}

// GetProduct returns a cached product snapshot, or (nil, nil) on a miss.
func (c *Client) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(productID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return &product, nil
}

// SetProduct stores a product snapshot with the configured TTL.
func (c *Client) SetProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, c.ttl).Err()
}
