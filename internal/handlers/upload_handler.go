package handlers

import (
	"fmt"

	"shoplite/internal/services"

	"github.com/gofiber/fiber/v2"
)

const productUploadsPath = "/api/uploads/products/"

// UploadHandler stores and serves product images.
type UploadHandler struct {
	service       *services.UploadService
	publicBaseURL string
}

// NewUploadHandler creates a new UploadHandler. When publicBaseURL is empty,
// returned URLs use the base URL of the upload request.
func NewUploadHandler(service *services.UploadService, publicBaseURL string) *UploadHandler {
	return &UploadHandler{service: service, publicBaseURL: publicBaseURL}
}

func (h *UploadHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	uploadRoutes := router.Group("/uploads")
	uploadRoutes.Post("/products", auth, admin, h.HandleUploadProductImage)
	uploadRoutes.Get("/products/:filename", h.HandleGetProductImage)
}

// HandleUploadProductImage expects a multipart form with a "file" field.
func (h *UploadHandler) HandleUploadProductImage(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A file is required in the 'file' form field",
			"error":   err.Error(),
		})
	}

	src, err := header.Open()
	if err != nil {
		return fail(c, "Could not upload file", err)
	}
	defer src.Close()

	stored, err := h.service.Save(header.Filename, header.Header.Get(fiber.HeaderContentType), src)
	if err != nil {
		return fail(c, "Could not upload file", err)
	}

	base := h.publicBaseURL
	if base == "" {
		base = c.BaseURL()
	}
	return c.JSON(fiber.Map{
		"filename":    stored.Filename,
		"url":         base + productUploadsPath + stored.Filename,
		"size":        stored.Size,
		"contentType": stored.ContentType,
	})
}

func (h *UploadHandler) HandleGetProductImage(c *fiber.Ctx) error {
	filename := c.Params("filename")
	f, info, err := h.service.Open(filename)
	if err != nil {
		return fail(c, "Could not download file", err)
	}

	c.Set(fiber.HeaderContentType, services.ContentTypeOf(filename))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.SendStream(f, int(info.Size()))
}
