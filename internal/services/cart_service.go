package services

import (
	"context"
	"errors"
	"fmt"

	"shoplite/internal/models"
	"shoplite/internal/repositories"
)

// CartService manages the single cart of each user. Every mutation runs in one
// transaction and persists the recomputed total before it commits.
type CartService struct {
	tx repositories.TxManager
}

// NewCartService creates a new CartService.
func NewCartService(tx repositories.TxManager) *CartService {
	return &CartService{tx: tx}
}

// GetCart returns the user's cart, creating it on first access.
func (s *CartService) GetCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart *models.Cart
	err := s.tx.WithinTransaction(ctx, func(r repositories.Repositories) error {
		var err error
		cart, err = r.Carts.GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := dropDeletedProducts(ctx, r.Carts, cart); err != nil {
			return err
		}
		stored := cart.TotalAmount
		cart.RecalculateTotal()
		if stored.Equal(cart.TotalAmount) {
			return nil
		}
		// product prices or the catalog changed since the last mutation
		return r.Carts.UpdateTotal(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddToCart adds quantity units of a product, merging with an existing line.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.mutate(ctx, userID, func(r repositories.Repositories, cart *models.Cart) error {
		product, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return productNotFound(productID, err)
		}

		item, err := r.Carts.FindItem(ctx, cart.ID, productID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			item = &models.CartItem{CartID: cart.ID, ProductID: productID}
		case err != nil:
			return err
		}
		item.Quantity += quantity

		if product.Stock < item.Quantity {
			return fmt.Errorf("%w for product %s (requested: %d, available: %d)", ErrInsufficientStock, product.Name, item.Quantity, product.Stock)
		}
		return r.Carts.SaveItem(ctx, item)
	})
}

// UpdateItemQuantity sets the quantity of a line. A quantity of zero or less
// removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, userID, productID)
	}
	return s.mutate(ctx, userID, func(r repositories.Repositories, cart *models.Cart) error {
		item, err := r.Carts.FindItem(ctx, cart.ID, productID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: %d", ErrCartItemNotFound, productID)
			}
			return err
		}

		product, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return productNotFound(productID, err)
		}
		if product.Stock < quantity {
			return fmt.Errorf("%w for product %s (requested: %d, available: %d)", ErrInsufficientStock, product.Name, quantity, product.Stock)
		}

		item.Quantity = quantity
		return r.Carts.SaveItem(ctx, item)
	})
}

// RemoveFromCart deletes the line of a product. Removing a product that is not
// in the cart is not an error.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uint) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(r repositories.Repositories, cart *models.Cart) error {
		return r.Carts.DeleteItem(ctx, cart.ID, productID)
	})
}

// ClearCart removes every line.
func (s *CartService) ClearCart(ctx context.Context, userID uint) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(r repositories.Repositories, cart *models.Cart) error {
		return r.Carts.ClearItems(ctx, cart.ID)
	})
}

func (s *CartService) mutate(ctx context.Context, userID uint, fn func(r repositories.Repositories, cart *models.Cart) error) (*models.Cart, error) {
	var cart *models.Cart
	err := s.tx.WithinTransaction(ctx, func(r repositories.Repositories) error {
		var err error
		cart, err = r.Carts.GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(r, cart); err != nil {
			return err
		}
		return refreshCart(ctx, r.Carts, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// refreshCart reloads the lines of cart and stores the recomputed total.
func refreshCart(ctx context.Context, carts repositories.CartRepository, cart *models.Cart) error {
	if err := carts.LoadItems(ctx, cart); err != nil {
		return err
	}
	if err := dropDeletedProducts(ctx, carts, cart); err != nil {
		return err
	}
	cart.RecalculateTotal()
	return carts.UpdateTotal(ctx, cart)
}

// dropDeletedProducts removes the lines whose product was deleted from the
// catalog. Items must have Product loaded.
func dropDeletedProducts(ctx context.Context, carts repositories.CartRepository, cart *models.Cart) error {
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if !item.Product.DeletedAt.Valid {
			kept = append(kept, item)
			continue
		}
		if err := carts.DeleteItem(ctx, cart.ID, item.ProductID); err != nil {
			return err
		}
	}
	cart.Items = kept
	return nil
}
