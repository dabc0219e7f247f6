package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/orderdesk/order-service/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var request ProductCreateRequest
	if err := c.BodyParser(&request); err != nil {
		return BadRequestResponse(c, "invalid request body", map[string]string{
			"body": err.Error(),
		})
	}

	product, err := h.productService.CreateProduct(c.Context(), request.ToDraft())
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return CreatedResponse(c, "product created", mapProduct(product))
}

func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 50)
	if limit > 100 {
		limit = 100
	}

	products, err := h.productService.ListProducts(c.Context(), skip, limit)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, "products retrieved", mapProducts(products))
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.productService.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, "product retrieved", mapProduct(product))
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	var request ProductUpdateRequest
	if err := c.BodyParser(&request); err != nil {
		return BadRequestResponse(c, "invalid request body", map[string]string{
			"body": err.Error(),
		})
	}

	product, err := h.productService.UpdateProduct(c.Context(), c.Params("id"), request.ToUpdate())
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, "product updated", mapProduct(product))
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.productService.DeleteProduct(c.Context(), c.Params("id")); err != nil {
		return DomainErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
