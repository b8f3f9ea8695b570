package catalog

import (
	"context"
	"errors"
	"testing"

	"orderpipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	products map[string]*models.Product
	failing  bool
	sets     int
}

func (c *mapCache) GetProduct(_ context.Context, id string) (*models.Product, error) {
	if c.failing {
		return nil, errors.New("cache down")
	}
	return c.products[id], nil
}

func (c *mapCache) SetProduct(_ context.Context, product *models.Product) error {
	if c.failing {
		return errors.New("cache down")
	}
	c.sets++
	c.products[product.ID] = product
	return nil
}

func TestCachedCatalogReadThrough(t *testing.T) {
	client, done := newTestPair(t)
	defer done()

	cache := &mapCache{products: make(map[string]*models.Product)}
	cc := NewCachedCatalog(client, cache)

	product, err := cc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", product.Name)
	assert.Equal(t, 1, cache.sets, "miss must populate the cache")

	// Second lookup is served from the cache even with the server gone.
	done()
	product, err = cc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", product.Name)
}

func TestCachedCatalogFallsBackOnCacheFailure(t *testing.T) {
	client, done := newTestPair(t)
	defer done()

	cc := NewCachedCatalog(client, &mapCache{failing: true})

	product, err := cc.GetProduct(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "Mouse", product.Name)
}

func TestCachedCatalogWithoutCache(t *testing.T) {
	client, done := newTestPair(t)
	defer done()

	cc := NewCachedCatalog(client, nil)

	product, err := cc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", product.Name)
}
