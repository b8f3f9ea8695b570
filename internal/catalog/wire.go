// Package catalog implements both sides of the stock/catalog RPC boundary:
// the server exposed by catalogd and the client used by the order
// orchestrator and the notification enrichment path.
package catalog

import "orderpipeline/internal/models"

// RPC endpoint paths.
const (
	PathGetProduct = "/rpc/v1/product.get"
	PathCheckStock = "/rpc/v1/stock.check"
)

// Wire error codes carried in rpcError bodies.
const (
	codeNotFound = "not_found"
	codeInternal = "internal"
)

type getProductRequest struct {
	ID string `json:"id"`
}

type checkStockRequest struct {
	Products []models.StockCheckItem `json:"products"`
}

type rpcError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
