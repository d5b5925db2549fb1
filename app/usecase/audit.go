package usecase

import (
	"context"

	"backoffice-service/app/domain"
)

const defaultAuditLimit = 50

type auditUsecase struct {
	auditRepo domain.AuditRepository
}

func NewAuditUsecase(auditRepo domain.AuditRepository) domain.AuditUsecase {
	return &auditUsecase{auditRepo}
}

func (u *auditUsecase) History(ctx context.Context, entityTable string, entityID int64, limit int64) ([]domain.AuditRecord, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return u.auditRepo.History(ctx, entityTable, entityID, limit)
}

func (u *auditUsecase) Search(ctx context.Context, req domain.AuditSearchRequest) ([]domain.AuditRecord, error) {
	if req.Limit <= 0 {
		req.Limit = defaultAuditLimit
	}
	return u.auditRepo.Search(ctx, req)
}
