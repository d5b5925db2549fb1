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

type ShipmentHandler struct {
	shipmentUsecase domain.ShipmentUsecase
	validator       *validator.Validate
}

func NewShipmentHandler(shipmentUsecase domain.ShipmentUsecase, validator *validator.Validate) *ShipmentHandler {
	return &ShipmentHandler{
		shipmentUsecase: shipmentUsecase,
		validator:       validator,
	}
}

func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	var req domain.ShipmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[shipmentHandler] Create", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[shipmentHandler] Create", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	shipment, err := h.shipmentUsecase.Create(c.Context(), ctxutil.Actor(c.Context()), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[shipmentHandler] Create", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(shipment))
}

func (h *ShipmentHandler) UpdateStatus(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[shipmentHandler] UpdateStatus", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	var req domain.ShipmentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[shipmentHandler] UpdateStatus", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[shipmentHandler] UpdateStatus", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	if err := h.shipmentUsecase.UpdateStatus(c.Context(), id, ctxutil.Actor(c.Context()), req); err != nil {
		slog.ErrorContext(c.Context(), "[shipmentHandler] UpdateStatus", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(nil))
}

func (h *ShipmentHandler) List(c *fiber.Ctx) error {
	shipments, err := h.shipmentUsecase.List(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[shipmentHandler] List", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(shipments))
}
