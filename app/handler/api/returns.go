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

type ReturnHandler struct {
	returnUsecase domain.ReturnUsecase
	validator     *validator.Validate
}

func NewReturnHandler(returnUsecase domain.ReturnUsecase, validator *validator.Validate) *ReturnHandler {
	return &ReturnHandler{
		returnUsecase: returnUsecase,
		validator:     validator,
	}
}

func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	var req domain.ReturnCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[returnHandler] Create", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[returnHandler] Create", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	ret, err := h.returnUsecase.Create(c.Context(), ctxutil.Actor(c.Context()), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[returnHandler] Create", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(ret))
}

func (h *ReturnHandler) Transition(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[returnHandler] Transition", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	var req domain.ReturnTransitionRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[returnHandler] Transition", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[returnHandler] Transition", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	if err := h.returnUsecase.Transition(c.Context(), id, ctxutil.Actor(c.Context()), req); err != nil {
		slog.ErrorContext(c.Context(), "[returnHandler] Transition", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(nil))
}

func (h *ReturnHandler) List(c *fiber.Ctx) error {
	returns, err := h.returnUsecase.List(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[returnHandler] List", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(returns))
}

func (h *ReturnHandler) Eligibility(c *fiber.Ctx) error {
	orderIDStr := c.Params("order_id")
	orderID, err := strconv.ParseInt(orderIDStr, 10, 64)
	if err != nil || orderID <= 0 {
		slog.ErrorContext(c.Context(), "[returnHandler] Eligibility", "parseInt:"+orderIDStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	eligibility, err := h.returnUsecase.ValidateEligible(c.Context(), orderID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[returnHandler] Eligibility", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(eligibility))
}

func (h *ReturnHandler) RefundQuote(c *fiber.Ctx) error {
	lineIDStr := c.Params("line_id")
	lineID, err := strconv.ParseInt(lineIDStr, 10, 64)
	if err != nil || lineID <= 0 {
		slog.ErrorContext(c.Context(), "[returnHandler] RefundQuote", "parseInt:"+lineIDStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	quantity, err := strconv.ParseInt(c.Query("quantity", "1"), 10, 64)
	if err != nil {
		slog.ErrorContext(c.Context(), "[returnHandler] RefundQuote", "parseQuantity", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	quote, err := h.returnUsecase.CalculateRefund(c.Context(), lineID, quantity)
	if err != nil {
		slog.ErrorContext(c.Context(), "[returnHandler] RefundQuote", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(quote))
}
