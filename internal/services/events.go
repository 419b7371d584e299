package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"shoplite/internal/models"

	"github.com/shopspring/decimal"
)

// Routing keys of the order events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher sends a message to the broker. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// OrderEvent is the payload of every order event.
type OrderEvent struct {
	OrderID        uint               `json:"orderId"`
	OrderNumber    string             `json:"orderNumber"`
	UserID         uint               `json:"userId"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previousStatus,omitempty"`
	TotalAmount    decimal.Decimal    `json:"totalAmount"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

func newOrderEvent(order *models.Order) OrderEvent {
	return OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
}

// publish never fails the caller: the order is already committed.
func publish(ctx context.Context, p EventPublisher, routingKey string, event OrderEvent) {
	if p == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for order %d: %v", routingKey, event.OrderID, err)
		return
	}
	if err := p.Publish(ctx, routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event for order %d: %v", routingKey, event.OrderID, err)
		return
	}
	log.Printf("Published %s event for order %d", routingKey, event.OrderID)
}
