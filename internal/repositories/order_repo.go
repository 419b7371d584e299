package repositories

import (
	"context"

	"shoplite/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are returned with their items, newest first for listings.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	ListByUserID(ctx context.Context, userID uint) ([]models.Order, error)
	// Create inserts the order row only; items are written with CreateItems.
	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, orderID uint, items []models.OrderItem) error
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error
	Delete(ctx context.Context, id uint) error
}
