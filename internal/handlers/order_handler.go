package handlers

import (
	"fmt"
	"log"

	"shoplite/internal/middleware"
	"shoplite/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Get("/", admin, h.HandleGetOrders)
	orderRoutes.Get("/user", h.HandleGetUserOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Post("/checkout", h.HandleCheckout)
	orderRoutes.Put("/:id/status", admin, h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", admin, h.HandleDeleteOrder)
}

// OrderItemRequest is one line of a create-order request.
type OrderItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest holds the order fields that do not come from the items.
type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress" validate:"max=500"`
	PaymentMethod   string `json:"paymentMethod" validate:"max=50"`
	PaymentIntentID string `json:"paymentIntentId" validate:"max=255"`
}

func (r CheckoutRequest) details() services.OrderDetails {
	return services.OrderDetails{
		ShippingAddress: r.ShippingAddress,
		PaymentMethod:   r.PaymentMethod,
		PaymentIntentID: r.PaymentIntentID,
	}
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	CheckoutRequest
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext())
	if err != nil {
		return fail(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetUserOrders retrieves the orders of the authenticated user.
func (h *OrderHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListUserOrders(c.UserContext(), middleware.CurrentPrincipal(c).UserID)
	if err != nil {
		return fail(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return invalidID(c, err)
	}
	principal := middleware.CurrentPrincipal(c)
	order, err := h.service.GetOrder(c.UserContext(), orderID, principal.UserID, principal.IsAdmin())
	if err != nil {
		return fail(c, fmt.Sprintf("Could not retrieve order %d", orderID), err)
	}
	return c.JSON(order)
}

// HandleCreateOrder creates a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	items := make([]services.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	createdOrder, err := h.service.CreateOrder(c.UserContext(), middleware.CurrentPrincipal(c).UserID, items, req.details())
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return fail(c, "Could not create order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleCheckout places an order with the content of the user's cart.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	order, err := h.service.Checkout(c.UserContext(), middleware.CurrentPrincipal(c).UserID, req.details())
	if err != nil {
		log.Printf("Error during checkout: %v", err)
		return fail(c, "Could not check out", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return invalidID(c, err)
	}
	var updateData struct {
		Status string `json:"status" validate:"required"`
	}
	if ok, err := parseBody(c, h.validate, &updateData); !ok {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), orderID, updateData.Status)
	if err != nil {
		log.Printf("Error updating order status for order %d: %v", orderID, err)
		return fail(c, "Order update failed", err)
	}
	return c.JSON(order)
}

// HandleDeleteOrder removes an order.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return invalidID(c, err)
	}
	if err := h.service.DeleteOrder(c.UserContext(), orderID); err != nil {
		return fail(c, "Could not delete order", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %d deleted successfully", orderID),
	})
}
