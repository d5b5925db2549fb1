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

type CatalogHandler struct {
	catalogUsecase domain.CatalogUsecase
	validator      *validator.Validate
}

func NewCatalogHandler(catalogUsecase domain.CatalogUsecase, validator *validator.Validate) *CatalogHandler {
	return &CatalogHandler{
		catalogUsecase: catalogUsecase,
		validator:      validator,
	}
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req domain.CategoryCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[catalogHandler] CreateCategory", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[catalogHandler] CreateCategory", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	category, err := h.catalogUsecase.CreateCategory(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[catalogHandler] CreateCategory", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(category))
}

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalogUsecase.ListCategories(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[catalogHandler] ListCategories", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(categories))
}

func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req domain.ProductCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[catalogHandler] CreateProduct", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[catalogHandler] CreateProduct", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	product, err := h.catalogUsecase.CreateProduct(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[catalogHandler] CreateProduct", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(product))
}

func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[catalogHandler] GetProduct", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	product, err := h.catalogUsecase.GetProduct(c.Context(), id)
	if err != nil {
		slog.ErrorContext(c.Context(), "[catalogHandler] GetProduct", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(product))
}

func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.catalogUsecase.ListProducts(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[catalogHandler] ListProducts", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(products))
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[catalogHandler] DeleteProduct", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.catalogUsecase.DeleteProduct(c.Context(), id, ctxutil.Actor(c.Context())); err != nil {
		slog.ErrorContext(c.Context(), "[catalogHandler] DeleteProduct", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(nil))
}
