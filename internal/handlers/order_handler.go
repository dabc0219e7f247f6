package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/orderdesk/order-service/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder handles POST /orders. 201 on success, 400 on validation
// failure, 404 on unknown product, 502 when the shipment provider call
// does not succeed (and nothing was persisted).
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var request CreateOrderRequest
	if err := c.BodyParser(&request); err != nil {
		return BadRequestResponse(c, "invalid request body", map[string]string{
			"body": err.Error(),
		})
	}

	order, err := h.orderService.CreateOrder(c.Context(), request.ToDraft())
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return CreatedResponse(c, "order created", mapOrder(order))
}

// ListOrders handles GET /orders?skip=&limit=, most recently updated first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 50)
	if limit > 100 {
		limit = 100
	}

	orders, err := h.orderService.ListOrders(c.Context(), skip, limit)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, "orders retrieved", mapOrders(orders))
}

func (h *OrderHandler) GetOrderByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return BadRequestResponse(c, "invalid order id", map[string]string{
			"id": c.Params("id"),
		})
	}

	order, err := h.orderService.GetOrderByID(c.Context(), id)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, "order retrieved", mapOrder(order))
}

func (h *OrderHandler) GetOrderByCode(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrderByCode(c.Context(), c.Params("orderCode"))
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, "order retrieved", mapOrder(order))
}

// UpdateOrder handles PATCH /orders/by-code/:orderCode. A CONFIRMED ->
// CANCELLED transition goes through the shipment gateway first and fails
// with 502 when the provider call does not succeed.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	var request OrderUpdateRequest
	if err := c.BodyParser(&request); err != nil {
		return BadRequestResponse(c, "invalid request body", map[string]string{
			"body": err.Error(),
		})
	}

	order, err := h.orderService.UpdateOrder(c.Context(), c.Params("orderCode"), request.ToUpdate())
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, "order updated", mapOrder(order))
}

// ExternalStatusUpdate handles POST /orders/by-code/:orderCode/status-update,
// the push channel for the shipment provider. No gateway call ever happens
// on this path.
func (h *OrderHandler) ExternalStatusUpdate(c *fiber.Ctx) error {
	var request ExternalStatusUpdateRequest
	if err := c.BodyParser(&request); err != nil {
		return BadRequestResponse(c, "invalid request body", map[string]string{
			"body": err.Error(),
		})
	}

	order, err := h.orderService.ApplyExternalUpdate(c.Context(), c.Params("orderCode"), request.ToUpdate())
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, "order status updated", mapOrder(order))
}

// CancelOrder handles DELETE /orders/by-code/:orderCode as a soft cancel:
// the row stays, orderStatus becomes CANCELLED.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	order, err := h.orderService.CancelOrder(c.Context(), c.Params("orderCode"))
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, "order cancelled", mapOrder(order))
}

func (h *OrderHandler) HealthCheck(c *fiber.Ctx) error {
	return SuccessResponse(c, "order service is healthy", map[string]interface{}{
		"service": "order-service",
		"status":  "healthy",
	})
}

func queryInt(c *fiber.Ctx, key string, defaultValue int) int {
	if raw := c.Query(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			return n
		}
	}
	return defaultValue
}
