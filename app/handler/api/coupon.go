package handler

import (
	"log/slog"

	"backoffice-service/app/domain"
	"backoffice-service/app/handler/api/response"
	"backoffice-service/pkg/ctxutil"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type CouponHandler struct {
	couponUsecase domain.CouponUsecase
	validator     *validator.Validate
}

func NewCouponHandler(couponUsecase domain.CouponUsecase, validator *validator.Validate) *CouponHandler {
	return &CouponHandler{
		couponUsecase: couponUsecase,
		validator:     validator,
	}
}

func (h *CouponHandler) Create(c *fiber.Ctx) error {
	var req domain.CouponCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[couponHandler] Create", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[couponHandler] Create", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	coupon, err := h.couponUsecase.Create(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[couponHandler] Create", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(coupon))
}

func (h *CouponHandler) List(c *fiber.Ctx) error {
	coupons, err := h.couponUsecase.List(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[couponHandler] List", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(coupons))
}

func (h *CouponHandler) Validate(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		slog.ErrorContext(c.Context(), "[couponHandler] Validate", "code", "missing")
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	result, err := h.couponUsecase.Validate(c.Context(), code)
	if err != nil {
		slog.ErrorContext(c.Context(), "[couponHandler] Validate", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(result))
}

func (h *CouponHandler) Apply(c *fiber.Ctx) error {
	var req domain.ApplyCouponRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[couponHandler] Apply", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[couponHandler] Apply", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	order, err := h.couponUsecase.Apply(c.Context(), ctxutil.Actor(c.Context()), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[couponHandler] Apply", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(order))
}
