package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ParseOrderStatus is case-insensitive.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// ReservesStock reports whether the order still holds the stock it decremented,
// i.e. whether cancelling it must give that stock back.
func (s OrderStatus) ReservesStock() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// OrderItem is a frozen copy of a purchased line.
type OrderItem struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	OrderID         uint            `json:"orderId" gorm:"not null;index"`
	ProductID       uint            `json:"productId" gorm:"not null;index"`
	ProductName     string          `json:"productName" gorm:"type:varchar(100);not null"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase" gorm:"type:decimal(12,2);not null"`
	CreatedAt       time.Time       `json:"-"`
}

// Subtotal is Quantity × PriceAtPurchase.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a customer order.
type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	OrderNumber     string          `json:"orderNumber" gorm:"uniqueIndex;type:varchar(40);not null"`
	UserID          uint            `json:"userId" gorm:"not null;index"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	ShippingAddress string          `json:"shippingAddress" gorm:"type:varchar(500)"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"type:varchar(50)"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty" gorm:"type:varchar(255)"`
	Items           []OrderItem     `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ItemsTotal sums the item subtotals. It is used once, when the order is built.
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
