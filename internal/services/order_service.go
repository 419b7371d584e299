package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"shoplite/internal/models"
	"shoplite/internal/repositories"

	"github.com/google/uuid"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	tx        repositories.TxManager
	orderRepo repositories.OrderRepository
	publisher EventPublisher // nil disables events
}

// NewOrderService creates a new OrderService.
func NewOrderService(tx repositories.TxManager, orderRepo repositories.OrderRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		tx:        tx,
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID uint
	Quantity  int
}

// OrderDetails are the free-form fields of a new order.
type OrderDetails struct {
	ShippingAddress string
	PaymentMethod   string
	PaymentIntentID string
}

func orderNotFound(id uint, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}
	return err
}

// ListOrders retrieves all orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// ListUserOrders retrieves the orders of one user, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orderRepo.ListByUserID(ctx, userID)
}

// GetOrder returns an order to its owner or to an administrator.
func (s *OrderService) GetOrder(ctx context.Context, id, userID uint, isAdmin bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, orderNotFound(id, err)
	}
	if !isAdmin && order.UserID != userID {
		return nil, fmt.Errorf("%w: order %d", ErrForbidden, id)
	}
	return order, nil
}

// CreateOrder reserves stock for every item, freezes the current prices and
// stores the order. Either every item is reserved or nothing is.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint, items []OrderItemInput, details OrderDetails) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidQuantity, item.ProductID)
		}
	}

	var order *models.Order
	err := s.tx.WithinTransaction(ctx, func(r repositories.Repositories) error {
		var err error
		order, err = placeOrder(ctx, r, userID, items, details)
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, EventOrderCreated, newOrderEvent(order))
	return order, nil
}

// Checkout turns the user's cart into an order and empties the cart.
func (s *OrderService) Checkout(ctx context.Context, userID uint, details OrderDetails) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithinTransaction(ctx, func(r repositories.Repositories) error {
		cart, err := r.Carts.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrEmptyCart
			}
			return err
		}
		if err := dropDeletedProducts(ctx, r.Carts, cart); err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		items := make([]OrderItemInput, 0, len(cart.Items))
		for _, line := range cart.Items {
			items = append(items, OrderItemInput{ProductID: line.ProductID, Quantity: line.Quantity})
		}
		order, err = placeOrder(ctx, r, userID, items, details)
		if err != nil {
			return err
		}

		if err := r.Carts.ClearItems(ctx, cart.ID); err != nil {
			return err
		}
		cart.Items = nil
		cart.RecalculateTotal()
		return r.Carts.UpdateTotal(ctx, cart)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, EventOrderCreated, newOrderEvent(order))
	return order, nil
}

func placeOrder(ctx context.Context, r repositories.Repositories, userID uint, inputs []OrderItemInput, details OrderDetails) (*models.Order, error) {
	items := make([]models.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, productNotFound(in.ProductID, err)
		}

		ok, err := r.Products.DecreaseStock(ctx, product.ID, in.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w for product %s (requested: %d, available: %d)", ErrInsufficientStock, product.Name, in.Quantity, product.Stock)
		}

		items = append(items, models.OrderItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        in.Quantity,
			PriceAtPurchase: product.Price,
		})
	}

	order := &models.Order{
		OrderNumber:     "ORD-" + strings.ToUpper(uuid.New().String()),
		UserID:          userID,
		Status:          models.OrderStatusPending,
		TotalAmount:     models.ItemsTotal(items),
		ShippingAddress: strings.TrimSpace(details.ShippingAddress),
		PaymentMethod:   strings.TrimSpace(details.PaymentMethod),
		PaymentIntentID: strings.TrimSpace(details.PaymentIntentID),
	}
	if err := r.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	if err := r.Orders.CreateItems(ctx, order.ID, items); err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// UpdateOrderStatus moves an order to status. Cancelling a PENDING or
// PROCESSING order gives its stock back; cancelling from any other state is
// rejected. Every other change is applied as requested.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	var (
		order    *models.Order
		previous models.OrderStatus
	)
	err = s.tx.WithinTransaction(ctx, func(r repositories.Repositories) error {
		var err error
		order, err = r.Orders.GetByID(ctx, id)
		if err != nil {
			return orderNotFound(id, err)
		}
		previous = order.Status

		if next == models.OrderStatusCancelled {
			if !previous.ReservesStock() {
				return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, previous, next)
			}
			for _, item := range order.Items {
				if err := r.Products.IncreaseStock(ctx, item.ProductID, item.Quantity); err != nil {
					return fmt.Errorf("failed to restore stock of product %d: %w", item.ProductID, err)
				}
			}
		}
		return r.Orders.UpdateStatus(ctx, id, next)
	})
	if err != nil {
		return nil, err
	}

	order.Status = next
	if previous != next {
		event := newOrderEvent(order)
		event.PreviousStatus = previous
		publish(ctx, s.publisher, EventOrderStatusChanged, event)
	}
	log.Printf("Order %d status changed from %s to %s", id, previous, next)
	return order, nil
}

// DeleteOrder removes an order and its items. Stock is not restored.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return orderNotFound(id, err)
	}
	return nil
}
