package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"shoplite/internal/models"
	"shoplite/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	publisher := new(MockPublisher)
	service := services.NewOrderService(f.tx, f.repos.Orders, publisher)

	publisher.On("Publish", mock.Anything, services.EventOrderCreated, mock.MatchedBy(func(body []byte) bool {
		var event services.OrderEvent
		return json.Unmarshal(body, &event) == nil && event.Status == models.OrderStatusPending
	})).Return(nil).Once()

	order, err := service.CreateOrder(ctx, f.user.ID, []services.OrderItemInput{
		{ProductID: f.laptop.ID, Quantity: 1},
		{ProductID: f.keyboard.ID, Quantity: 4},
	}, services.OrderDetails{ShippingAddress: "1 Main St", PaymentMethod: "card"})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Contains(t, order.OrderNumber, "ORD-")
	assert.Equal(t, "1502.00", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Laptop", order.Items[0].ProductName)
	assert.True(t, order.TotalAmount.Equal(models.ItemsTotal(order.Items)))

	assert.Equal(t, 9, f.stock(t, f.laptop.ID))
	assert.Equal(t, 21, f.stock(t, f.keyboard.ID))

	// later price changes do not touch the order
	f.laptop.Price = decimal.RequireFromString("999.00")
	require.NoError(t, f.repos.Products.Update(ctx, f.laptop))
	stored, err := service.GetOrder(ctx, order.ID, f.user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "1200.00", stored.Items[0].PriceAtPurchase.StringFixed(2))
	assert.Equal(t, "1502.00", stored.TotalAmount.StringFixed(2))
	publisher.AssertExpectations(t)
}

func TestOrderService_CreateOrder_IsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	service := services.NewOrderService(f.tx, f.repos.Orders, nil)

	_, err := service.CreateOrder(ctx, f.user.ID, []services.OrderItemInput{
		{ProductID: f.keyboard.ID, Quantity: 5},
		{ProductID: f.laptop.ID, Quantity: 11},
	}, services.OrderDetails{})
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	assert.Equal(t, 25, f.stock(t, f.keyboard.ID))
	assert.Equal(t, 10, f.stock(t, f.laptop.ID))
	orders, err := service.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	_, err = service.CreateOrder(ctx, f.user.ID, []services.OrderItemInput{{ProductID: 999, Quantity: 1}}, services.OrderDetails{})
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	_, err = service.CreateOrder(ctx, f.user.ID, nil, services.OrderDetails{})
	assert.ErrorIs(t, err, services.ErrEmptyOrder)
	_, err = service.CreateOrder(ctx, f.user.ID, []services.OrderItemInput{{ProductID: f.laptop.ID}}, services.OrderDetails{})
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)
}

func TestOrderService_Checkout(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	carts := services.NewCartService(f.tx)
	service := services.NewOrderService(f.tx, f.repos.Orders, nil)

	_, err := service.Checkout(ctx, f.user.ID, services.OrderDetails{})
	assert.ErrorIs(t, err, services.ErrEmptyCart)

	_, err = carts.AddToCart(ctx, f.user.ID, f.keyboard.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx, f.user.ID, f.laptop.ID, 1)
	require.NoError(t, err)

	order, err := service.Checkout(ctx, f.user.ID, services.OrderDetails{ShippingAddress: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, "1351.00", order.TotalAmount.StringFixed(2))
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 23, f.stock(t, f.keyboard.ID))

	cart, err := carts.GetCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalAmount.IsZero())

	_, err = service.Checkout(ctx, f.user.ID, services.OrderDetails{})
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestOrderService_Checkout_SkipsDeletedProducts(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	carts := services.NewCartService(f.tx)
	service := services.NewOrderService(f.tx, f.repos.Orders, nil)

	_, err := carts.AddToCart(ctx, f.user.ID, f.laptop.ID, 1)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx, f.user.ID, f.keyboard.ID, 2)
	require.NoError(t, err)
	require.NoError(t, f.repos.Products.Delete(ctx, f.laptop.ID))

	order, err := service.Checkout(ctx, f.user.ID, services.OrderDetails{})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, f.keyboard.ID, order.Items[0].ProductID)
	assert.Equal(t, "151.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, 10, f.stock(t, f.laptop.ID))

	// a cart holding only deleted products is empty
	_, err = carts.AddToCart(ctx, f.user.ID, f.keyboard.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.repos.Products.Delete(ctx, f.keyboard.ID))
	_, err = service.Checkout(ctx, f.user.ID, services.OrderDetails{})
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestOrderService_Checkout_KeepsCartOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	carts := services.NewCartService(f.tx)
	service := services.NewOrderService(f.tx, f.repos.Orders, nil)

	_, err := carts.AddToCart(ctx, f.user.ID, f.laptop.ID, 5)
	require.NoError(t, err)
	_, err = f.repos.Products.DecreaseStock(ctx, f.laptop.ID, 8)
	require.NoError(t, err)

	_, err = service.Checkout(ctx, f.user.ID, services.OrderDetails{})
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	cart, err := carts.GetCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 2, f.stock(t, f.laptop.ID))
}

func TestOrderService_UpdateOrderStatus_CancelRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	publisher := new(MockPublisher)
	service := services.NewOrderService(f.tx, f.repos.Orders, publisher)
	publisher.On("Publish", mock.Anything, services.EventOrderCreated, mock.Anything).Return(nil)
	publisher.On("Publish", mock.Anything, services.EventOrderStatusChanged, mock.Anything).Return(errors.New("broker down"))

	order, err := service.CreateOrder(ctx, f.user.ID, []services.OrderItemInput{
		{ProductID: f.laptop.ID, Quantity: 3},
		{ProductID: f.keyboard.ID, Quantity: 5},
	}, services.OrderDetails{})
	require.NoError(t, err)

	_, err = service.UpdateOrderStatus(ctx, order.ID, "processing")
	require.NoError(t, err)
	assert.Equal(t, 7, f.stock(t, f.laptop.ID))

	// a soft-deleted product still gets its units back
	require.NoError(t, f.repos.Products.Delete(ctx, f.keyboard.ID))

	updated, err := service.UpdateOrderStatus(ctx, order.ID, "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)
	assert.Equal(t, 10, f.stock(t, f.laptop.ID))
	assert.Equal(t, 25, f.stock(t, f.keyboard.ID))

	_, err = service.UpdateOrderStatus(ctx, order.ID, "CANCELLED")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	assert.Equal(t, 10, f.stock(t, f.laptop.ID))
	publisher.AssertNumberOfCalls(t, "Publish", 3)
}

func TestOrderService_UpdateOrderStatus_Rules(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	service := services.NewOrderService(f.tx, f.repos.Orders, nil)

	order, err := service.CreateOrder(ctx, f.user.ID, []services.OrderItemInput{{ProductID: f.laptop.ID, Quantity: 2}}, services.OrderDetails{})
	require.NoError(t, err)

	_, err = service.UpdateOrderStatus(ctx, order.ID, "LOST")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)
	_, err = service.UpdateOrderStatus(ctx, 999, "SHIPPED")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	_, err = service.UpdateOrderStatus(ctx, order.ID, "SHIPPED")
	require.NoError(t, err)
	_, err = service.UpdateOrderStatus(ctx, order.ID, "CANCELLED")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	assert.Equal(t, 8, f.stock(t, f.laptop.ID))

	// non-cancelling changes are applied as requested
	updated, err := service.UpdateOrderStatus(ctx, order.ID, "PENDING")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, updated.Status)
}

func TestOrderService_GetOrder_Access(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)
	service := services.NewOrderService(f.tx, f.repos.Orders, nil)

	order, err := service.CreateOrder(ctx, f.user.ID, []services.OrderItemInput{{ProductID: f.keyboard.ID, Quantity: 1}}, services.OrderDetails{})
	require.NoError(t, err)

	_, err = service.GetOrder(ctx, order.ID, f.user.ID+1, false)
	assert.ErrorIs(t, err, services.ErrForbidden)
	got, err := service.GetOrder(ctx, order.ID, f.user.ID+1, true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	_, err = service.GetOrder(ctx, 999, f.user.ID, true)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	mine, err := service.ListUserOrders(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	others, err := service.ListUserOrders(ctx, f.user.ID+1)
	require.NoError(t, err)
	assert.Empty(t, others)

	require.NoError(t, service.DeleteOrder(ctx, order.ID))
	assert.ErrorIs(t, service.DeleteOrder(ctx, order.ID), services.ErrOrderNotFound)
}
