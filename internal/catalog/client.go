package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"orderpipeline/internal/apperr"
	"orderpipeline/internal/models"
	"orderpipeline/internal/util"
)

// Client is the order side of the catalog RPC boundary. It is read-only and
// safe for concurrent use from multiple in-flight order requests.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a catalog RPC client with a per-call timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// GetProduct fetches the authoritative product record. It fails with
// KindNotFound when the product does not exist, KindUnavailable when the
// catalog service is unreachable and KindInternal on any other fault.
func (c *Client) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "catalog.Client.GetProduct")
	defer span.End()

	var product models.Product
	if err := c.call(ctx, PathGetProduct, getProductRequest{ID: productID}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CheckStock batch-verifies availability of the requested items. Individual
// missing products are reported inside the result, never as errors; only
// transport-level breakdown fails the call.
func (c *Client) CheckStock(ctx context.Context, items []models.StockCheckItem) (*models.StockCheckResult, error) {
	ctx, span := util.StartSpan(ctx, "catalog.Client.CheckStock")
	defer span.End()

	start := time.Now()
	defer func() {
		util.StockCheckLatency.Observe(time.Since(start).Seconds())
	}()

	var result models.StockCheckResult
	if err := c.call(ctx, PathCheckStock, checkStockRequest{Products: items}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) call(ctx context.Context, path string, reqBody, respBody interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to marshal rpc request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to build rpc request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "catalog service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var rpcErr rpcError
		if err := json.NewDecoder(resp.Body).Decode(&rpcErr); err != nil {
			rpcErr = rpcError{Code: codeInternal, Message: fmt.Sprintf("rpc status %d", resp.StatusCode)}
		}
		if rpcErr.Code == codeNotFound {
			return apperr.New(apperr.KindNotFound, rpcErr.Message)
		}
		return apperr.New(apperr.KindInternal, rpcErr.Message)
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to decode rpc response", err)
	}
	return nil
}
