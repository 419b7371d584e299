package repositories

import (
	"context"

	"shoplite/internal/models"
)

// CartRepository defines the interface for cart data access.
// Carts returned by it always have Items (and each item's Product) loaded.
type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID uint) (*models.Cart, error)
	FindByUserID(ctx context.Context, userID uint) (*models.Cart, error)
	LoadItems(ctx context.Context, cart *models.Cart) error
	FindItem(ctx context.Context, cartID, productID uint) (*models.CartItem, error)
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, productID uint) error
	ClearItems(ctx context.Context, cartID uint) error
	UpdateTotal(ctx context.Context, cart *models.Cart) error
}
