package handlers

import (
	"shoplite/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler exposes the payment-intent proxy.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service, validate: newValidator()}
}

func (h *PaymentHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	paymentRoutes := router.Group("/payments", auth)
	paymentRoutes.Post("/create-payment-intent", h.HandleCreatePaymentIntent)
	paymentRoutes.Post("/confirm-payment", h.HandleConfirmPayment)
}

// PaymentIntentRequest carries an amount in the smallest currency unit.
type PaymentIntentRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

func (h *PaymentHandler) HandleCreatePaymentIntent(c *fiber.Ctx) error {
	var req PaymentIntentRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	intent, err := h.service.CreatePaymentIntent(c.UserContext(), req.Amount)
	if err != nil {
		return fail(c, "Could not create payment intent", err)
	}
	return c.JSON(fiber.Map{
		"clientSecret": intent.ClientSecret,
		"paymentId":    intent.ID,
		"amount":       intent.Amount,
		"currency":     intent.Currency,
	})
}

func (h *PaymentHandler) HandleConfirmPayment(c *fiber.Ctx) error {
	var req ConfirmPaymentRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	intent, err := h.service.ConfirmPayment(c.UserContext(), req.PaymentIntentID)
	if err != nil {
		return fail(c, "Could not confirm payment", err)
	}
	return c.JSON(intent)
}
