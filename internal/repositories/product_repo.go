package repositories

import (
	"context"
	"errors"

	"shoplite/internal/models"
)

var (
	// ErrNotFound is wrapped by every repository when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is wrapped when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	Query      string // case-insensitive substring of the name
	CategoryID *uint
	Page       int // 1-based
	Size       int // 0 returns every match
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	// DecreaseStock subtracts qty only if at least qty units are available.
	// It reports false, without error, when the stock is insufficient.
	DecreaseStock(ctx context.Context, id uint, qty int) (bool, error)
	IncreaseStock(ctx context.Context, id uint, qty int) error
}
