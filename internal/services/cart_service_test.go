package services_test

import (
	"context"
	"testing"

	"shoplite/internal/models"
	"shoplite/internal/repositories"
	"shoplite/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type storeFixture struct {
	db       *gorm.DB
	repos    repositories.Repositories
	tx       *repositories.GORMTxManager
	user     *models.User
	laptop   *models.Product
	keyboard *models.Product
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)
	repos := repositories.NewGORMRepositories(db)

	user := &models.User{Email: "buyer@example.com", Password: "x"}
	require.NoError(t, repos.Users.Create(ctx, user))

	laptop := &models.Product{Name: "Laptop", Price: decimal.RequireFromString("1200.00"), Stock: 10}
	keyboard := &models.Product{Name: "Keyboard", Price: decimal.RequireFromString("75.50"), Stock: 25}
	require.NoError(t, repos.Products.Create(ctx, laptop))
	require.NoError(t, repos.Products.Create(ctx, keyboard))

	return &storeFixture{
		db:       db,
		repos:    repos,
		tx:       repositories.NewGORMTxManager(db),
		user:     user,
		laptop:   laptop,
		keyboard: keyboard,
	}
}

func (f *storeFixture) stock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.Unscoped().First(&p, id).Error)
	return p.Stock
}

func TestCartService_AddToCart_MergesLines(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	service := services.NewCartService(f.tx)

	cart, err := service.AddToCart(ctx, f.user.ID, f.keyboard.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	cart, err = service.AddToCart(ctx, f.user.ID, f.keyboard.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, "377.50", cart.TotalAmount.StringFixed(2))

	cart, err = service.AddToCart(ctx, f.user.ID, f.laptop.ID, 1)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, "1577.50", cart.TotalAmount.StringFixed(2))

	var stored models.Cart
	require.NoError(t, f.db.First(&stored, cart.ID).Error)
	assert.Equal(t, "1577.50", stored.TotalAmount.StringFixed(2))
}

func TestCartService_AddToCart_Errors(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	service := services.NewCartService(f.tx)

	_, err := service.AddToCart(ctx, f.user.ID, f.laptop.ID, 0)
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)

	_, err = service.AddToCart(ctx, f.user.ID, 999, 1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	_, err = service.AddToCart(ctx, f.user.ID, f.laptop.ID, 8)
	require.NoError(t, err)
	// the merged quantity is what must be in stock
	_, err = service.AddToCart(ctx, f.user.ID, f.laptop.ID, 3)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	cart, err := service.GetCart(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 8, cart.Items[0].Quantity)
}

func TestCartService_UpdateItemQuantity(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	service := services.NewCartService(f.tx)

	_, err := service.AddToCart(ctx, f.user.ID, f.keyboard.ID, 2)
	require.NoError(t, err)
	_, err = service.AddToCart(ctx, f.user.ID, f.laptop.ID, 1)
	require.NoError(t, err)

	cart, err := service.UpdateItemQuantity(ctx, f.user.ID, f.keyboard.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, "1502.00", cart.TotalAmount.StringFixed(2))

	_, err = service.UpdateItemQuantity(ctx, f.user.ID, f.keyboard.ID, 26)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	_, err = service.UpdateItemQuantity(ctx, 999, f.keyboard.ID, 1)
	assert.ErrorIs(t, err, services.ErrCartItemNotFound)

	cart, err = service.UpdateItemQuantity(ctx, f.user.ID, f.laptop.ID, 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, f.keyboard.ID, cart.Items[0].ProductID)
	assert.Equal(t, "302.00", cart.TotalAmount.StringFixed(2))
}

func TestCartService_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	service := services.NewCartService(f.tx)

	_, err := service.AddToCart(ctx, f.user.ID, f.keyboard.ID, 2)
	require.NoError(t, err)
	_, err = service.AddToCart(ctx, f.user.ID, f.laptop.ID, 1)
	require.NoError(t, err)

	cart, err := service.RemoveFromCart(ctx, f.user.ID, f.laptop.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, "151.00", cart.TotalAmount.StringFixed(2))

	// removing twice is harmless
	_, err = service.RemoveFromCart(ctx, f.user.ID, f.laptop.ID)
	require.NoError(t, err)

	cart, err = service.ClearCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalAmount.IsZero())
}

func TestCartService_GetCart_FollowsPriceChanges(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	service := services.NewCartService(f.tx)

	_, err := service.AddToCart(ctx, f.user.ID, f.keyboard.ID, 2)
	require.NoError(t, err)

	f.keyboard.Price = decimal.RequireFromString("80.00")
	require.NoError(t, f.repos.Products.Update(ctx, f.keyboard))

	cart, err := service.GetCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "160.00", cart.TotalAmount.StringFixed(2))
}

func TestCartService_GetCart_DropsDeletedProducts(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	service := services.NewCartService(f.tx)

	_, err := service.AddToCart(ctx, f.user.ID, f.laptop.ID, 1)
	require.NoError(t, err)
	_, err = service.AddToCart(ctx, f.user.ID, f.keyboard.ID, 2)
	require.NoError(t, err)

	require.NoError(t, f.repos.Products.Delete(ctx, f.laptop.ID))

	cart, err := service.GetCart(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, f.keyboard.ID, cart.Items[0].ProductID)
	assert.Equal(t, "151.00", cart.TotalAmount.StringFixed(2))

	var stored models.Cart
	require.NoError(t, f.db.First(&stored, cart.ID).Error)
	assert.Equal(t, "151.00", stored.TotalAmount.StringFixed(2))

	var lines int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&lines).Error)
	assert.Equal(t, int64(1), lines)
}
