package service

import (
	"context"
	"fmt"
	"time"

	"orderpipeline/internal/apperr"
	"orderpipeline/internal/models"
	"orderpipeline/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the persistence boundary for orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// IdentityStore resolves caller identity.
type IdentityStore interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// CatalogClient is the synchronous RPC boundary to the catalog service.
type CatalogClient interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	CheckStock(ctx context.Context, items []models.StockCheckItem) (*models.StockCheckResult, error)
}

// EventPublisher announces order facts. Publishing is best-effort and never
// fails the caller.
type EventPublisher interface {
	SendEvent(ctx context.Context, eventType string, order *models.Order)
}

// OrderService orchestrates order creation: it verifies availability across
// the catalog RPC boundary, commits the order only when that verification
// succeeds and then announces the new fact through the broker.
type OrderService struct {
	orders   OrderStore
	identity IdentityStore
	catalog  CatalogClient
	events   EventPublisher
	logger   *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderStore, identity IdentityStore, catalog CatalogClient, events EventPublisher) *OrderService {
	return &OrderService{
		orders:   orders,
		identity: identity,
		catalog:  catalog,
		events:   events,
		logger:   util.GetLogger(),
	}
}

// OrderItemRequest is one requested (product, quantity) pair. Price is
// accepted for wire compatibility but never read; the authoritative price
// always comes from the catalog at order time.
type OrderItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price,omitempty"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"products" binding:"required,min=1,dive"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	OrderID     string            `json:"order_id"`
	Username    string            `json:"username"`
	Status      string            `json:"status"`
	TotalAmount float64           `json:"total_amount"`
	Items       []models.LineItem `json:"products"`
}

// CreateOrder runs the creation sequence. Steps up to persistence are
// fail-fast so no partial order is ever visible; the publish step is
// decoupled and relies on the producer's own retry semantics.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if userID == "" || len(req.Items) == 0 {
		util.OrdersDeniedTotal.WithLabelValues("invalid_request").Inc()
		return nil, apperr.New(apperr.KindInvalidRequest, "user id and a non-empty product list are required")
	}
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			util.OrdersDeniedTotal.WithLabelValues("invalid_request").Inc()
			return nil, apperr.New(apperr.KindInvalidRequest, "every product needs an id and a positive quantity")
		}
	}

	user, err := s.identity.FindUserByID(ctx, userID)
	if err != nil {
		util.OrdersDeniedTotal.WithLabelValues("unknown_user").Inc()
		return nil, err
	}

	checkItems := make([]models.StockCheckItem, len(req.Items))
	for i, item := range req.Items {
		checkItems[i] = models.StockCheckItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	stock, err := s.catalog.CheckStock(ctx, checkItems)
	if err != nil {
		util.OrdersDeniedTotal.WithLabelValues("catalog_unreachable").Inc()
		return nil, err
	}
	if !stock.Available {
		util.OrdersDeniedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, apperr.New(apperr.KindConflict, "some products are unavailable").
			WithDetail(stock.Unavailable)
	}

	// Second round-trip per item by design: the price snapshot must come
	// from the catalog at order time, never from the request payload. Stock
	// may change between the check and these fetches; that window is an
	// accepted weak-consistency tradeoff.
	items := make([]models.LineItem, 0, len(req.Items))
	var total float64
	for _, item := range req.Items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			util.OrdersDeniedTotal.WithLabelValues("price_fetch_failed").Inc()
			return nil, fmt.Errorf("failed to fetch product %s: %w", item.ProductID, err)
		}
		items = append(items, models.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
			Name:      product.Name,
		})
		total += product.Price * float64(item.Quantity)
	}

	order := &models.Order{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Username:    user.Username,
		Items:       items,
		TotalAmount: total,
		Status:      models.OrderStatusReceived,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		util.OrdersDeniedTotal.WithLabelValues("db_error").Inc()
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create order", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Float64("total_amount", order.TotalAmount))

	// Fire-and-forget: a publish failure never rolls back the committed
	// order. SendEvent handles disconnected brokers itself.
	s.events.SendEvent(ctx, models.EventTypeOrderCreated, order)

	return &CreateOrderResponse{
		OrderID:     order.ID,
		Username:    order.Username,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
	}, nil
}

// UpdateOrderStatus transitions an existing order to one of the four
// allowed statuses. Admin only; publishes order_status_updated with the
// same fire-and-forget semantics as creation.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, callerID, orderID, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	if callerID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	if !models.ValidOrderStatus(status) {
		return nil, apperr.New(apperr.KindInvalidRequest, "invalid status value")
	}

	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()

	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", status))

	s.events.SendEvent(ctx, models.EventTypeOrderStatusUpdated, order)
	return order, nil
}

// GetOrder returns one order; only its owner or an admin may read it.
func (s *OrderService) GetOrder(ctx context.Context, callerID, callerRole, orderID string) (*models.Order, error) {
	if callerID == "" {
		return nil, apperr.New(apperr.KindInvalidRequest, "user id is required")
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != callerID && callerRole != models.RoleAdmin {
		return nil, apperr.New(apperr.KindForbidden, "not authorized to view this order")
	}
	return order, nil
}

// GetOrdersByUser returns the caller's orders, newest first.
func (s *OrderService) GetOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, apperr.New(apperr.KindInvalidRequest, "user id is required")
	}
	return s.orders.GetOrdersByUserID(ctx, userID)
}

// GetAllOrders returns every order for the admin view, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context, callerID string) ([]models.Order, error) {
	if callerID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.orders.GetAllOrders(ctx)
}

func (s *OrderService) requireAdmin(ctx context.Context, callerID string) error {
	user, err := s.identity.FindUserByID(ctx, callerID)
	if err != nil {
		// An unknown caller is a role failure; any other identity fault
		// (DB outage and the like) propagates with its own kind.
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.New(apperr.KindForbidden, "admin role required")
		}
		s.logger.Error("identity lookup failed during role check",
			zap.String("caller_id", callerID),
			zap.Error(err))
		return err
	}
	if user.Role != models.RoleAdmin {
		return apperr.New(apperr.KindForbidden, "admin role required")
	}
	return nil
}
