package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/orderdesk/order-service/internal/domain"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"requestId"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: getRequestID(c),
	})
}

func CreatedResponse(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: getRequestID(c),
	})
}

func errorResponse(c *fiber.Ctx, status int, code, message string, details map[string]string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC(),
		RequestID: getRequestID(c),
	})
}

func BadRequestResponse(c *fiber.Ctx, message string, details map[string]string) error {
	return errorResponse(c, fiber.StatusBadRequest, "BAD_REQUEST", message, details)
}

func NotFoundResponse(c *fiber.Ctx, message string) error {
	return errorResponse(c, fiber.StatusNotFound, "NOT_FOUND", message, nil)
}

// DomainErrorResponse maps the error taxonomy to HTTP statuses. Detail
// messages are human-readable; internals never leak across the boundary.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return BadRequestResponse(c, validationErr.Message, validationErr.Fields)
	}

	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		return NotFoundResponse(c, notFoundErr.Error())
	}

	var gatewayErr *domain.GatewayError
	if errors.As(err, &gatewayErr) {
		return errorResponse(c, fiber.StatusBadGateway, "GATEWAY_ERROR",
			"shipment provider call failed; nothing was created or updated, please retry the whole request", nil)
	}

	if errors.Is(err, domain.ErrOrderCodeExhausted) {
		return errorResponse(c, fiber.StatusInternalServerError, "ORDER_CODE_EXHAUSTED",
			"could not allocate a unique order code, please retry", nil)
	}

	return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR",
		"internal server error", nil)
}

func getRequestID(c *fiber.Ctx) string {
	requestID := c.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Set("X-Request-ID", requestID)
	}
	return requestID
}
