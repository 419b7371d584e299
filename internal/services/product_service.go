package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shoplite/internal/models"
	"shoplite/internal/repositories"

	"github.com/shopspring/decimal"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
	}
}

// ProductInput holds the writable fields of a product.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
	CategoryID  *uint
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

func productNotFound(id uint, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return err
}

// ListProducts returns the products matching filter.
func (s *ProductService) ListProducts(ctx context.Context, filter repositories.ProductFilter) (*ProductPage, error) {
	if filter.Size < 0 {
		filter.Size = 0
	}
	if filter.Size > 0 && filter.Page < 1 {
		filter.Page = 1
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Items: products, Total: total, Page: filter.Page, Size: filter.Size}, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productNotFound(id, err)
	}
	return product, nil
}

// ListByCategory returns every product of an existing category.
func (s *ProductService) ListByCategory(ctx context.Context, categoryID uint) ([]models.Product, error) {
	if err := s.checkCategory(ctx, &categoryID); err != nil {
		return nil, err
	}
	products, _, err := s.repo.List(ctx, repositories.ProductFilter{CategoryID: &categoryID})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		CategoryID:  in.CategoryID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct replaces the writable fields of a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	product := &models.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		CategoryID:  in.CategoryID,
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, productNotFound(id, err)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product from the catalog. Orders keep their items.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return productNotFound(id, err)
	}
	return nil
}

// AdjustStock adds delta (which may be negative) to the stock of a product.
// The stock never drops below zero.
func (s *ProductService) AdjustStock(ctx context.Context, id uint, delta int) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case delta < 0:
		ok, err := s.repo.DecreaseStock(ctx, id, -delta)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w for product %s (requested: %d, available: %d)", ErrInsufficientStock, product.Name, -delta, product.Stock)
		}
	case delta > 0:
		if err := s.repo.IncreaseStock(ctx, id, delta); err != nil {
			return nil, productNotFound(id, err)
		}
	default:
		return product, nil
	}
	return s.GetProduct(ctx, id)
}

var maxPrice = decimal.New(1, 10)

func (s *ProductService) validate(ctx context.Context, in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if !in.Price.IsPositive() {
		return ErrInvalidPrice
	}
	// prices are stored as decimal(12,2)
	if !in.Price.Equal(in.Price.Truncate(2)) {
		return fmt.Errorf("%w: at most 2 decimal places", ErrInvalidPrice)
	}
	if in.Price.GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("%w: must be less than %s", ErrInvalidPrice, maxPrice)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidQuantity)
	}
	return s.checkCategory(ctx, in.CategoryID)
}

func (s *ProductService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.categories.GetByID(ctx, *id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrCategoryNotFound, *id)
		}
		return err
	}
	return nil
}
