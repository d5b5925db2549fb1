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

type InventoryHandler struct {
	inventoryUsecase domain.InventoryUsecase
	validator        *validator.Validate
}

func NewInventoryHandler(inventoryUsecase domain.InventoryUsecase, validator *validator.Validate) *InventoryHandler {
	return &InventoryHandler{
		inventoryUsecase: inventoryUsecase,
		validator:        validator,
	}
}

func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var req domain.SKUCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] Create", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] Create", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	sku, err := h.inventoryUsecase.CreateSKU(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] Create", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(sku))
}

func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[inventoryHandler] GetByID", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	sku, err := h.inventoryUsecase.GetBySKUID(c.Context(), id)
	if err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] GetByID", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(sku))
}

func (h *InventoryHandler) List(c *fiber.Ctx) error {
	skus, err := h.inventoryUsecase.List(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] List", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(skus))
}

func (h *InventoryHandler) Replenish(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[inventoryHandler] Replenish", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	var req domain.ReplenishRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] Replenish", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] Replenish", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	if err := h.inventoryUsecase.Replenish(c.Context(), id, ctxutil.Actor(c.Context()), req); err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] Replenish", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(nil))
}

func (h *InventoryHandler) AdjustPrices(c *fiber.Ctx) error {
	var req domain.PriceAdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] AdjustPrices", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] AdjustPrices", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	adjusted, err := h.inventoryUsecase.AdjustCategoryPrices(c.Context(), ctxutil.Actor(c.Context()), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] AdjustPrices", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(fiber.Map{"adjusted": adjusted}))
}

func (h *InventoryHandler) LowStockAlerts(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	alerts, err := h.inventoryUsecase.LowStockAlerts(c.Context(), limit)
	if err != nil {
		slog.ErrorContext(c.Context(), "[inventoryHandler] LowStockAlerts", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(alerts))
}
