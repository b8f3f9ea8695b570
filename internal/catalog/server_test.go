package catalog

import (
	"context"
	"testing"

	"orderpipeline/internal/apperr"
	"orderpipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProductStore struct {
	products map[string]*models.Product
}

func (s *stubProductStore) GetProductByID(_ context.Context, id string) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "product not found: "+id)
	}
	return product, nil
}

func testStore() *stubProductStore {
	return &stubProductStore{products: map[string]*models.Product{
		"p1": {ID: "p1", Name: "Keyboard", Price: 9.0, Stock: 5},
		"p2": {ID: "p2", Name: "Mouse", Price: 4.5, Stock: 3},
	}}
}

func TestCheckStockAllAvailable(t *testing.T) {
	srv := NewServer(testStore())

	result, err := srv.CheckStock(context.Background(), []models.StockCheckItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	})
	require.NoError(t, err)

	assert.True(t, result.Available)
	assert.Empty(t, result.Unavailable)
}

func TestCheckStockInsufficient(t *testing.T) {
	srv := NewServer(testStore())

	result, err := srv.CheckStock(context.Background(), []models.StockCheckItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 10},
	})
	require.NoError(t, err)

	assert.False(t, result.Available)
	require.Len(t, result.Unavailable, 1)
	assert.Equal(t, "p2", result.Unavailable[0].ProductID)
	assert.Equal(t, "Mouse", result.Unavailable[0].Name)
	assert.Equal(t, 3, result.Unavailable[0].Available)
	assert.Equal(t, 10, result.Unavailable[0].Requested)
}

func TestCheckStockMissingProduct(t *testing.T) {
	srv := NewServer(testStore())

	result, err := srv.CheckStock(context.Background(), []models.StockCheckItem{
		{ProductID: "ghost", Quantity: 1},
	})
	require.NoError(t, err)

	assert.False(t, result.Available)
	require.Len(t, result.Unavailable, 1)
	assert.Equal(t, models.UnknownProductName, result.Unavailable[0].Name)
	assert.Equal(t, 0, result.Unavailable[0].Available)
	assert.Equal(t, 1, result.Unavailable[0].Requested)
}

func TestCheckStockPreservesRequestOrder(t *testing.T) {
	srv := NewServer(testStore())

	result, err := srv.CheckStock(context.Background(), []models.StockCheckItem{
		{ProductID: "p2", Quantity: 99},
		{ProductID: "ghost", Quantity: 1},
		{ProductID: "p1", Quantity: 50},
	})
	require.NoError(t, err)

	require.Len(t, result.Unavailable, 3)
	assert.Equal(t, "p2", result.Unavailable[0].ProductID)
	assert.Equal(t, "ghost", result.Unavailable[1].ProductID)
	assert.Equal(t, "p1", result.Unavailable[2].ProductID)
}

func TestCheckStockToleratesDuplicates(t *testing.T) {
	srv := NewServer(testStore())

	result, err := srv.CheckStock(context.Background(), []models.StockCheckItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p1", Quantity: 99},
	})
	require.NoError(t, err)

	// Each occurrence is checked independently against the same stock.
	assert.False(t, result.Available)
	require.Len(t, result.Unavailable, 1)
	assert.Equal(t, 99, result.Unavailable[0].Requested)
}

func TestCheckStockEmptyRequest(t *testing.T) {
	srv := NewServer(testStore())

	result, err := srv.CheckStock(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Empty(t, result.Unavailable)
}
