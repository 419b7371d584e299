package services_test

import (
	"context"
	"fmt"
	"testing"

	"shoplite/internal/models"
	"shoplite/internal/repositories"
	"shoplite/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestProductService_ListProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockCategoryRepository))

	expectedProducts := []models.Product{
		{ID: 1, Name: "Product A", Price: decimal.NewFromInt(10), Stock: 100},
		{ID: 2, Name: "Product B", Price: decimal.NewFromInt(20), Stock: 50},
	}
	mockRepo.On("List", mock.Anything, repositories.ProductFilter{Query: "product", Page: 1, Size: 10}).
		Return(expectedProducts, int64(12), nil).Once()

	page, err := service.ListProducts(context.Background(), repositories.ProductFilter{Query: "product", Size: 10})
	require.NoError(t, err)
	assert.Equal(t, expectedProducts, page.Items)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 1, page.Page)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockCategoryRepository))

	expectedProduct := &models.Product{ID: 1, Name: "Product A", Price: decimal.NewFromInt(10), Stock: 100}

	// Test successful retrieval
	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(expectedProduct, nil).Once()
	product, err := service.GetProduct(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	// Test product not found
	mockRepo.On("GetByID", mock.Anything, uint(99)).
		Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrNotFound)).Once()
	product, err = service.GetProduct(context.Background(), 99)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	service := services.NewProductService(mockRepo, mockCategories)

	input := services.ProductInput{
		Name:       " Keyboard ",
		Price:      decimal.RequireFromString("75.00"),
		Stock:      25,
		CategoryID: uintPtr(3),
	}

	mockCategories.On("GetByID", mock.Anything, uint(3)).Return(&models.Category{ID: 3, Name: "Peripherals"}, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Keyboard" && p.Stock == 25 && *p.CategoryID == 3
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Product).ID = 5
	}).Return(nil).Once()
	mockRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Product{ID: 5, Name: "Keyboard"}, nil).Once()

	product, err := service.CreateProduct(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, uint(5), product.ID)
	mockRepo.AssertExpectations(t)
	mockCategories.AssertExpectations(t)

	// Test validation failures
	_, err = service.CreateProduct(ctx, services.ProductInput{Name: "Free", Price: decimal.Zero})
	assert.ErrorIs(t, err, services.ErrInvalidPrice)
	_, err = service.CreateProduct(ctx, services.ProductInput{Name: "Fraction", Price: decimal.RequireFromString("0.001")})
	assert.ErrorIs(t, err, services.ErrInvalidPrice)
	_, err = service.CreateProduct(ctx, services.ProductInput{Name: "Huge", Price: decimal.RequireFromString("10000000000.00")})
	assert.ErrorIs(t, err, services.ErrInvalidPrice)
	_, err = service.CreateProduct(ctx, services.ProductInput{Name: "Odd", Price: decimal.NewFromInt(1), Stock: -1})
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)
	_, err = service.CreateProduct(ctx, services.ProductInput{Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, services.ErrInvalidProduct)

	// Test unknown category
	mockCategories.On("GetByID", mock.Anything, uint(9)).
		Return(nil, fmt.Errorf("category with ID 9: %w", repositories.ErrNotFound)).Once()
	_, err = service.CreateProduct(ctx, services.ProductInput{Name: "X", Price: decimal.NewFromInt(1), CategoryID: uintPtr(9)})
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockCategoryRepository))
	input := services.ProductInput{Name: "Product A Updated", Price: decimal.NewFromInt(12), Stock: 95}

	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Product) bool { return p.ID == 1 })).Return(nil).Once()
	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(&models.Product{ID: 1, Name: "Product A Updated"}, nil).Once()
	product, err := service.UpdateProduct(context.Background(), 1, input)
	require.NoError(t, err)
	assert.Equal(t, "Product A Updated", product.Name)

	// Test update failure (product not found in repo)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Product) bool { return p.ID == 99 })).
		Return(fmt.Errorf("product with ID 99: %w", repositories.ErrNotFound)).Once()
	_, err = service.UpdateProduct(context.Background(), 99, input)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockCategoryRepository))

	mockRepo.On("Delete", mock.Anything, uint(1)).Return(nil).Once()
	assert.NoError(t, service.DeleteProduct(context.Background(), 1))

	mockRepo.On("Delete", mock.Anything, uint(99)).Return(fmt.Errorf("product with ID 99: %w", repositories.ErrNotFound)).Once()
	assert.ErrorIs(t, service.DeleteProduct(context.Background(), 99), services.ErrProductNotFound)

	mockRepo.On("Delete", mock.Anything, uint(100)).Return(fmt.Errorf("database error")).Once()
	err := service.DeleteProduct(context.Background(), 100)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_AdjustStock(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockCategoryRepository))

	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(&models.Product{ID: 1, Name: "Mouse", Stock: 3}, nil).Times(2)
	mockRepo.On("DecreaseStock", mock.Anything, uint(1), 5).Return(false, nil).Once()
	_, err := service.AdjustStock(ctx, 1, -5)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	mockRepo.On("IncreaseStock", mock.Anything, uint(1), 10).Return(nil).Once()
	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(&models.Product{ID: 1, Name: "Mouse", Stock: 13}, nil).Once()
	product, err := service.AdjustStock(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 13, product.Stock)
	mockRepo.AssertExpectations(t)
}
