package handlers

import (
	"shoplite/internal/middleware"
	"shoplite/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler serves the cart of the authenticated user.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service, validate: newValidator()}
}

// RegisterRoutes registers the cart routes; all of them need authentication.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart", auth)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

type AddCartItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartItemRequest sets the quantity; zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), middleware.CurrentPrincipal(c).UserID)
	if err != nil {
		return fail(c, "Could not retrieve cart", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddCartItemRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	cart, err := h.service.AddToCart(c.UserContext(), middleware.CurrentPrincipal(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(c, "Could not add item to cart", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return invalidID(c, err)
	}
	var req UpdateCartItemRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	cart, err := h.service.UpdateItemQuantity(c.UserContext(), middleware.CurrentPrincipal(c).UserID, productID, req.Quantity)
	if err != nil {
		return fail(c, "Could not update cart item", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return invalidID(c, err)
	}
	cart, err := h.service.RemoveFromCart(c.UserContext(), middleware.CurrentPrincipal(c).UserID, productID)
	if err != nil {
		return fail(c, "Could not remove cart item", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	cart, err := h.service.ClearCart(c.UserContext(), middleware.CurrentPrincipal(c).UserID)
	if err != nil {
		return fail(c, "Could not clear cart", err)
	}
	return c.JSON(cart)
}
