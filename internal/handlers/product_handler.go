package handlers

import (
	"fmt"

	"shoplite/internal/repositories"
	"shoplite/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the product routes. Reads are public, writes need admin.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/category/:categoryId", h.HandleListByCategory)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", auth, admin, h.HandleCreateProduct)
	productRoutes.Put("/:id", auth, admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, admin, h.HandleDeleteProduct)
	productRoutes.Patch("/:id/stock", auth, admin, h.HandleAdjustStock)
}

// ProductRequest is the body of create and update requests.
type ProductRequest struct {
	Name          string          `json:"name" validate:"required,max=100"`
	Description   string          `json:"description" validate:"max=500"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
	ImageURL      string          `json:"imageUrl" validate:"omitempty,max=500"`
	CategoryID    *uint           `json:"categoryId"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.StockQuantity,
		ImageURL:    r.ImageURL,
		CategoryID:  r.CategoryID,
	}
}

// HandleListProducts supports ?q= (or ?search=), ?categoryId=, ?page= and ?size=.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter := repositories.ProductFilter{
		Query: c.Query("q", c.Query("search")),
		Page:  c.QueryInt("page", 1),
		Size:  c.QueryInt("size", 0),
	}
	if raw := c.Query("categoryId"); raw != "" {
		id := c.QueryInt("categoryId", 0)
		if id <= 0 {
			return invalidID(c, fmt.Errorf("invalid categoryId %q", raw))
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}

	page, err := h.service.ListProducts(c.UserContext(), filter)
	if err != nil {
		return fail(c, "Could not retrieve products", err)
	}
	return c.JSON(page)
}

func (h *ProductHandler) HandleListByCategory(c *fiber.Ctx) error {
	categoryID, err := paramID(c, "categoryId")
	if err != nil {
		return invalidID(c, err)
	}
	products, err := h.service.ListByCategory(c.UserContext(), categoryID)
	if err != nil {
		return fail(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return invalidID(c, err)
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, fmt.Sprintf("Product with ID %d not found", id), err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), req.input())
	if err != nil {
		return fail(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return invalidID(c, err)
	}
	var req ProductRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), id, req.input())
	if err != nil {
		return fail(c, "Could not update product", err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return invalidID(c, err)
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return fail(c, "Could not delete product", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %d deleted successfully", id),
	})
}

// StockRequest adds Delta (possibly negative) to the stock.
type StockRequest struct {
	Delta int `json:"delta" validate:"ne=0"`
}

func (h *ProductHandler) HandleAdjustStock(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return invalidID(c, err)
	}
	var req StockRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	product, err := h.service.AdjustStock(c.UserContext(), id, req.Delta)
	if err != nil {
		return fail(c, "Could not adjust stock", err)
	}
	return c.JSON(product)
}
