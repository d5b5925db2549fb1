package response

import (
	"errors"

	"backoffice-service/app/domain"

	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success(data any) *Response {
	return &Response{
		Success: true,
		Data:    data,
	}
}

func Error(err error) *Response {
	return &Response{
		Success: false,
		Error:   err.Error(),
	}
}

func FromError(err error) (int, *Response) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, Error(err)
	case errors.Is(err, domain.ErrInvalidRequest):
		return fiber.StatusBadRequest, Error(err)
	case errors.Is(err, domain.ErrBadRequest):
		return fiber.StatusBadRequest, Error(err)
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, Error(err)
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, Error(err)
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, Error(err)
	case errors.Is(err, domain.ErrInvariantViolation):
		return fiber.StatusConflict, Error(err)
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, Error(err)
	case errors.Is(err, domain.ErrNoOpTransition):
		return fiber.StatusConflict, Error(err)
	case errors.Is(err, domain.ErrInvalidState):
		return fiber.StatusConflict, Error(err)
	case errors.Is(err, domain.ErrConstraintConflict):
		return fiber.StatusConflict, Error(err)
	case errors.Is(err, domain.ErrCouponInvalid):
		return fiber.StatusUnprocessableEntity, Error(err)
	case errors.Is(err, domain.ErrAmountMismatch):
		return fiber.StatusUnprocessableEntity, Error(err)
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusUnprocessableEntity, Error(err)
	default:
		return fiber.StatusInternalServerError, Error(domain.ErrInternal)
	}
}
