package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"backoffice-service/app/domain"
	"backoffice-service/config"

	"github.com/shopspring/decimal"
)

type couponUsecase struct {
	couponRepo domain.CouponRepository
	orderRepo  domain.OrderRepository
	auditRepo  domain.AuditRepository
	cfg        *config.Config
}

func NewCouponUsecase(couponRepo domain.CouponRepository, orderRepo domain.OrderRepository,
	auditRepo domain.AuditRepository, cfg *config.Config) domain.CouponUsecase {
	return &couponUsecase{couponRepo, orderRepo, auditRepo, cfg}
}

func (u *couponUsecase) Create(ctx context.Context, req domain.CouponCreateRequest) (*domain.Coupon, error) {
	if req.DiscountValue.IsNegative() {
		return nil, fmt.Errorf("%w: discount value must not be negative", domain.ErrInvalidRequest)
	}
	if req.DiscountType == domain.DiscountTypePercentage && req.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: percentage discount must not exceed 100", domain.ErrInvalidRequest)
	}
	if req.RemainingUses != nil && *req.RemainingUses < 0 {
		return nil, fmt.Errorf("%w: remaining uses must not be negative", domain.ErrInvalidRequest)
	}

	coupon := &domain.Coupon{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ExpiresAt:     req.ExpiresAt,
		RemainingUses: req.RemainingUses,
		Status:        domain.CouponStatusActive,
	}

	if err := u.couponRepo.Create(ctx, coupon); err != nil {
		slog.ErrorContext(ctx, "[couponUsecase] Create", "createCoupon", err)
		return nil, err
	}

	return coupon, nil
}

func (u *couponUsecase) List(ctx context.Context) ([]domain.Coupon, error) {
	return u.couponRepo.List(ctx)
}

func (u *couponUsecase) Validate(ctx context.Context, code string) (domain.CouponValidationResult, error) {
	coupon, err := u.couponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.CouponValidationResult{Valid: false}, nil
		}
		slog.ErrorContext(ctx, "[couponUsecase] Validate", "getByCode", err)
		return domain.CouponValidationResult{}, err
	}

	if !coupon.Applicable(time.Now()) {
		return domain.CouponValidationResult{Valid: false, Coupon: &coupon}, nil
	}

	return domain.CouponValidationResult{Valid: true, Coupon: &coupon}, nil
}

func (u *couponUsecase) Apply(ctx context.Context, actor string, req domain.ApplyCouponRequest) (*domain.Order, error) {
	var order domain.Order

	if err := u.orderRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		order, err = u.orderRepo.LockByID(ctx, req.OrderID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[couponUsecase] Apply", "lockOrder", err)
			return err
		}

		if order.Status != domain.OrderStatusPending {
			return fmt.Errorf("%w: coupon can only be applied to a pending order, got %s", domain.ErrInvalidState, order.Status)
		}
		if order.CouponID != nil {
			return fmt.Errorf("%w: order %d already has a coupon applied", domain.ErrConstraintConflict, order.ID)
		}

		coupon, err := u.couponRepo.LockByCode(ctx, req.Code, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[couponUsecase] Apply", "lockCoupon", err)
			return err
		}
		if !coupon.Applicable(time.Now()) {
			return fmt.Errorf("%w: %s", domain.ErrCouponInvalid, coupon.Code)
		}
		if coupon.RemainingUses != nil {
			if err := u.couponRepo.DecrementRemainingUses(ctx, coupon.ID, tx); err != nil {
				slog.ErrorContext(ctx, "[couponUsecase] Apply", "decrementRemainingUses", err)
				return err
			}
		}

		lines, err := u.orderRepo.GetLines(ctx, order.ID)
		if err != nil {
			slog.ErrorContext(ctx, "[couponUsecase] Apply", "getLines", err)
			return err
		}

		previousTotal := order.Total
		totals := domain.ComputeOrderTotals(lines, &coupon, decimal.NewFromFloat(u.cfg.Orders.TaxRatePercent))
		if err := u.orderRepo.UpdateTotals(ctx, order.ID, coupon.ID, totals, tx); err != nil {
			slog.ErrorContext(ctx, "[couponUsecase] Apply", "updateTotals", err)
			return err
		}

		order.CouponID = &coupon.ID
		order.Subtotal = totals.Subtotal
		order.DiscountApplied = totals.Discount
		order.Taxes = totals.Taxes
		order.Total = totals.Total
		order.Lines = lines

		if err := u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "orders",
			EntityID:    order.ID,
			Operation:   domain.AuditOperationUpdate,
			Actor:       actor,
			Changes: map[string]domain.FieldChange{
				"coupon_id": {New: coupon.ID},
				"total":     {Old: previousTotal, New: order.Total},
			},
		}, tx); err != nil {
			slog.ErrorContext(ctx, "[couponUsecase] Apply", "auditInsert", err)
			return err
		}

		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "[couponUsecase] Apply", "withTransaction", err)
		return nil, err
	}

	slog.InfoContext(ctx, "[couponUsecase] Apply", "orderID", order.ID, "coupon", req.Code, "total", order.Total)
	return &order, nil
}
