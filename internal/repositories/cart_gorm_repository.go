package repositories

import (
	"context"
	"errors"
	"fmt"

	"shoplite/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetOrCreateByUserID returns the user's cart, creating an empty one on first use.
func (r *GORMCartRepository) GetOrCreateByUserID(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to get or create cart for user %d: %w", userID, err)
	}
	if err := r.LoadItems(ctx, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByUserID returns the user's cart without creating one.
func (r *GORMCartRepository) FindByUserID(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart of user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart of user %d: %w", userID, err)
	}
	if err := r.LoadItems(ctx, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// LoadItems replaces cart.Items with the stored lines, oldest first.
// Soft-deleted products are still loaded so their lines keep a price.
func (r *GORMCartRepository) LoadItems(ctx context.Context, cart *models.Cart) error {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("cart_id = ?", cart.ID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return fmt.Errorf("failed to load items of cart %d: %w", cart.ID, err)
	}
	cart.Items = items
	return nil
}

func (r *GORMCartRepository) FindItem(ctx context.Context, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d in cart %d: %w", productID, cartID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item of cart %d: %w", cartID, err)
	}
	return &item, nil
}

// SaveItem inserts or updates a line without touching the referenced product.
func (r *GORMCartRepository) SaveItem(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	return nil
}

// DeleteItem is a no-op when the product is not in the cart.
func (r *GORMCartRepository) DeleteItem(ctx context.Context, cartID, productID uint) error {
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete product %d from cart %d: %w", productID, cartID, err)
	}
	return nil
}

func (r *GORMCartRepository) ClearItems(ctx context.Context, cartID uint) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart %d: %w", cartID, err)
	}
	return nil
}

func (r *GORMCartRepository) UpdateTotal(ctx context.Context, cart *models.Cart) error {
	res := r.db.WithContext(ctx).Model(&models.Cart{}).Where("id = ?", cart.ID).Update("total_amount", cart.TotalAmount)
	if res.Error != nil {
		return fmt.Errorf("failed to update total of cart %d: %w", cart.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart %d: %w", cart.ID, ErrNotFound)
	}
	return nil
}
