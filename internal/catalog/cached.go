package catalog

import (
	"context"

	"orderpipeline/internal/models"
	"orderpipeline/internal/redisclient"
	"orderpipeline/internal/util"

	"go.uber.org/zap"
)

// Querier is the point-lookup catalog facade used by the notification
// enrichment path.
type Querier interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
}

// ProductCache stores product snapshots; a cache miss is (nil, nil).
type ProductCache interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product) error
}

var _ ProductCache = (*redisclient.Client)(nil)

// CachedCatalog is a read-through product cache in front of the RPC client.
// Cache faults are logged and fall back to the RPC, never surfaced.
type CachedCatalog struct {
	client *Client
	cache  ProductCache
	logger *zap.Logger
}

// NewCachedCatalog creates a cached catalog facade. A nil cache disables
// caching entirely.
func NewCachedCatalog(client *Client, cache ProductCache) *CachedCatalog {
	return &CachedCatalog{
		client: client,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// GetProduct implements Querier.
func (cc *CachedCatalog) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	if cc.cache != nil {
		cached, err := cc.cache.GetProduct(ctx, productID)
		if err != nil {
			cc.logger.Warn("product cache read failed",
				zap.String("product_id", productID),
				zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	product, err := cc.client.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if cc.cache != nil {
		if err := cc.cache.SetProduct(ctx, product); err != nil {
			cc.logger.Warn("product cache write failed",
				zap.String("product_id", productID),
				zap.Error(err))
		}
	}

	return product, nil
}
