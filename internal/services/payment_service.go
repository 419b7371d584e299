package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shoplite/pkg/payment"
)

// PaymentService proxies payment-intent calls to the payment provider.
// It keeps no state of its own.
type PaymentService struct {
	gateway  payment.Gateway
	currency string
}

// NewPaymentService creates a new PaymentService. A nil gateway makes every
// call fail with ErrPaymentUnavailable.
func NewPaymentService(gateway payment.Gateway, currency string) *PaymentService {
	return &PaymentService{gateway: gateway, currency: strings.ToLower(currency)}
}

// CreatePaymentIntent opens an intent for amount, in the smallest unit of the
// configured currency.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, amount int64) (*payment.Intent, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}
	intent, err := s.gateway.CreateIntent(ctx, amount, s.currency)
	if err != nil {
		log.Printf("Payment intent creation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}
	return intent, nil
}

// ConfirmPayment returns the current state of a payment intent.
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentIntentID string) (*payment.Intent, error) {
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	if paymentIntentID == "" {
		return nil, ErrInvalidPaymentIntent
	}
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}
	intent, err := s.gateway.GetIntent(ctx, paymentIntentID)
	if err != nil {
		log.Printf("Payment intent lookup failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}
	intent.ClientSecret = ""
	return intent, nil
}
