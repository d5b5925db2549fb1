package handler

import (
	"log/slog"
	"strconv"

	"backoffice-service/app/domain"
	"backoffice-service/app/handler/api/response"
	"backoffice-service/pkg/ctxutil"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	paymentUsecase domain.PaymentUsecase
	validator      *validator.Validate
}

func NewPaymentHandler(paymentUsecase domain.PaymentUsecase, validator *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		validator:      validator,
	}
}

func (h *PaymentHandler) Process(c *fiber.Ctx) error {
	var req domain.PaymentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[paymentHandler] Process", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[paymentHandler] Process", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	payment, err := h.paymentUsecase.Process(c.Context(), ctxutil.Actor(c.Context()), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[paymentHandler] Process", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(payment))
}

func (h *PaymentHandler) List(c *fiber.Ctx) error {
	payments, err := h.paymentUsecase.List(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[paymentHandler] List", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(payments))
}

func (h *PaymentHandler) Delete(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[paymentHandler] Delete", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.paymentUsecase.Delete(c.Context(), id, ctxutil.Actor(c.Context())); err != nil {
		slog.ErrorContext(c.Context(), "[paymentHandler] Delete", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(nil))
}
