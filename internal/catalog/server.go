package catalog

import (
	"context"
	"net/http"

	"orderpipeline/internal/apperr"
	"orderpipeline/internal/models"
	"orderpipeline/internal/store"
	"orderpipeline/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductStore is the slice of the persistence layer the catalog RPC
// server reads from.
type ProductStore interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
}

var _ ProductStore = (*store.Store)(nil)

// Server answers product lookups and batch stock checks against the
// catalog store. It is read-only.
type Server struct {
	store  ProductStore
	logger *zap.Logger
}

// NewServer creates a new catalog RPC server
func NewServer(store ProductStore) *Server {
	return &Server{
		store:  store,
		logger: util.GetLogger(),
	}
}

// SetupRoutes registers the RPC endpoints.
func (s *Server) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.POST(PathGetProduct, s.getProduct)
	router.POST(PathCheckStock, s.checkStock)
}

func (s *Server) getProduct(c *gin.Context) {
	var req getProductRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, rpcError{Code: codeInternal, Message: "invalid request body"})
		return
	}

	product, err := s.store.GetProductByID(c.Request.Context(), req.ID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			c.JSON(http.StatusNotFound, rpcError{Code: codeNotFound, Message: "product not found"})
			return
		}
		s.logger.Error("getProduct failed", zap.String("product_id", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, rpcError{Code: codeInternal, Message: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (s *Server) checkStock(c *gin.Context) {
	var req checkStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, rpcError{Code: codeInternal, Message: "invalid request body"})
		return
	}

	result, err := s.CheckStock(c.Request.Context(), req.Products)
	if err != nil {
		s.logger.Error("checkStock failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, rpcError{Code: codeInternal, Message: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CheckStock resolves each requested (product, quantity) pair against the
// store. Missing products become unavailable entries with a placeholder name
// rather than errors; duplicates in the request are checked independently.
// The unavailable list preserves request order.
func (s *Server) CheckStock(ctx context.Context, items []models.StockCheckItem) (*models.StockCheckResult, error) {
	result := &models.StockCheckResult{
		Available:   true,
		Unavailable: []models.UnavailableProduct{},
	}

	for _, item := range items {
		product, err := s.store.GetProductByID(ctx, item.ProductID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				result.Available = false
				result.Unavailable = append(result.Unavailable, models.UnavailableProduct{
					ProductID: item.ProductID,
					Name:      models.UnknownProductName,
					Available: 0,
					Requested: item.Quantity,
				})
				continue
			}
			return nil, err
		}

		if product.Stock < item.Quantity {
			result.Available = false
			result.Unavailable = append(result.Unavailable, models.UnavailableProduct{
				ProductID: item.ProductID,
				Name:      product.Name,
				Available: product.Stock,
				Requested: item.Quantity,
			})
		}
	}

	return result, nil
}
