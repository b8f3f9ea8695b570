package store

import (
	"context"
	"database/sql"
	"fmt"

	"orderpipeline/internal/apperr"
	"orderpipeline/internal/models"
)

// CreateOrder persists an order together with its line items in a single
// transaction; either the whole order is visible or none of it is.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, user_id, username, total_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	row := tx.QueryRowxContext(ctx, query,
		order.ID, order.UserID, order.Username, order.TotalAmount, order.Status)
	if err := row.Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price, name)
			VALUES ($1, $2, $3, $4, $5)`,
			item.OrderID, item.ProductID, item.Quantity, item.Price, item.Name)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order with its line items.
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, fmt.Sprintf("order not found: %s", id))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load order", err)
	}

	if err := s.attachItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves a user's orders, newest first.
func (s *Store) GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if err := s.attachItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// GetAllOrders retrieves every order, newest first. Used by the admin view.
func (s *Store) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if err := s.attachItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update order status", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.New(apperr.KindNotFound, fmt.Sprintf("order not found: %s", orderID))
	}
	return nil
}

func (s *Store) attachItems(ctx context.Context, order *models.Order) error {
	err := s.db.SelectContext(ctx, &order.Items,
		"SELECT * FROM order_items WHERE order_id = $1", order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	return nil
}
