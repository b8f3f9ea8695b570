package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"orderpipeline/internal/apperr"
	"orderpipeline/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// FindUserByID retrieves an identity record by id.
func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT id, username, role FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, fmt.Sprintf("user not found: %s", id))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}
	return &user, nil
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, fmt.Sprintf("product not found: %s", id))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load product", err)
	}
	return &product, nil
}
