package handler

import (
	"log/slog"
	"strconv"

	"backoffice-service/app/domain"
	"backoffice-service/app/handler/api/response"

	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	auditUsecase domain.AuditUsecase
}

func NewAuditHandler(auditUsecase domain.AuditUsecase) *AuditHandler {
	return &AuditHandler{auditUsecase: auditUsecase}
}

func (h *AuditHandler) History(c *fiber.Ctx) error {
	table := c.Params("table")
	if table == "" {
		slog.ErrorContext(c.Context(), "[auditHandler] History", "table", "missing")
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.ErrorContext(c.Context(), "[auditHandler] History", "parseInt:"+idStr, err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	limit, _ := strconv.ParseInt(c.Query("limit", "0"), 10, 64)

	records, err := h.auditUsecase.History(c.Context(), table, id, limit)
	if err != nil {
		slog.ErrorContext(c.Context(), "[auditHandler] History", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(records))
}

func (h *AuditHandler) Search(c *fiber.Ctx) error {
	req := domain.AuditSearchRequest{}
	if err := c.QueryParser(&req); err != nil {
		slog.WarnContext(c.Context(), "[auditHandler] Search", "queryParser", err)
	}

	records, err := h.auditUsecase.Search(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[auditHandler] Search", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(records))
}
