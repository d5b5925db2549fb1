package handler

import (
	"log/slog"
	"strconv"

	"backoffice-service/app/domain"
	"backoffice-service/app/handler/api/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type CustomerHandler struct {
	customerUsecase domain.CustomerUsecase
	validator       *validator.Validate
}

func NewCustomerHandler(customerUsecase domain.CustomerUsecase, validator *validator.Validate) *CustomerHandler {
	return &CustomerHandler{
		customerUsecase: customerUsecase,
		validator:       validator,
	}
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req domain.CustomerCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[customerHandler] Create", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[customerHandler] Create", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	customer, err := h.customerUsecase.Create(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[customerHandler] Create", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(customer))
}

func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[customerHandler] GetByID", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	customer, err := h.customerUsecase.GetByID(c.Context(), id)
	if err != nil {
		slog.ErrorContext(c.Context(), "[customerHandler] GetByID", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(customer))
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	customers, err := h.customerUsecase.List(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[customerHandler] List", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(customers))
}

func (h *CustomerHandler) HasOrders(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[customerHandler] HasOrders", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	hasOrders, err := h.customerUsecase.HasOrders(c.Context(), id)
	if err != nil {
		slog.ErrorContext(c.Context(), "[customerHandler] HasOrders", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(fiber.Map{"customer_id": id, "has_orders": hasOrders}))
}

func (h *CustomerHandler) LoyaltyPoints(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[customerHandler] LoyaltyPoints", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	summary, err := h.customerUsecase.LoyaltyPoints(c.Context(), id)
	if err != nil {
		slog.ErrorContext(c.Context(), "[customerHandler] LoyaltyPoints", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(summary))
}

func (h *CustomerHandler) CreateAddress(c *fiber.Ctx) error {
	var req domain.AddressCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[customerHandler] CreateAddress", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[customerHandler] CreateAddress", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	address, err := h.customerUsecase.CreateAddress(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[customerHandler] CreateAddress", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(address))
}

func (h *CustomerHandler) ListAddresses(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[customerHandler] ListAddresses", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	addresses, err := h.customerUsecase.ListAddresses(c.Context(), id)
	if err != nil {
		slog.ErrorContext(c.Context(), "[customerHandler] ListAddresses", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(addresses))
}
