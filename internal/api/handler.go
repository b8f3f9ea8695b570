package api

import (
	"net/http"
	"strconv"
	"time"

	"orderpipeline/internal/apperr"
	"orderpipeline/internal/service"
	"orderpipeline/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Caller identity headers, populated by the gateway after authentication.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService *service.OrderService
}

// NewHandler creates a new HTTP handler
func NewHandler(orderService *service.OrderService) *Handler {
	return &Handler{
		orderService: orderService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.createOrder)
		v1.GET("/orders", h.getAllOrders)
		v1.GET("/orders/mine", h.getMyOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.PATCH("/orders/:id/status", h.updateOrderStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetHeader(HeaderUserID)
	resp, err := h.orderService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Order created successfully",
		"order_id":     resp.OrderID,
		"username":     resp.Username,
		"status":       resp.Status,
		"total_amount": resp.TotalAmount,
		"products":     resp.Items,
	})
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	userID := c.GetHeader(HeaderUserID)
	role := c.GetHeader(HeaderUserRole)

	order, err := h.orderService.GetOrder(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// getMyOrders lists the caller's orders
func (h *Handler) getMyOrders(c *gin.Context) {
	userID := c.GetHeader(HeaderUserID)

	orders, err := h.orderService.GetOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// getAllOrders lists every order; admin only
func (h *Handler) getAllOrders(c *gin.Context) {
	userID := c.GetHeader(HeaderUserID)

	orders, err := h.orderService.GetAllOrders(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// updateOrderStatus transitions an order's status; admin only
func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID := c.GetHeader(HeaderUserID)
	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Order status updated successfully",
		"order_id": order.ID,
		"status":   order.Status,
	})
}

// writeError maps the error taxonomy onto HTTP status codes. Internal
// detail stays server-side.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	body := gin.H{"error": kind.String()}
	if kind != apperr.KindInternal {
		body["message"] = err.Error()
	} else {
		body["message"] = "internal server error"
		util.GetLogger().Error("request failed: " + err.Error())
	}
	if detail := apperr.DetailOf(err); detail != nil {
		body["unavailable_products"] = detail
	}

	c.JSON(statusOf(kind), body)
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidRequest:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
