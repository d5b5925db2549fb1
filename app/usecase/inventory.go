package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"backoffice-service/app/domain"
	"backoffice-service/config"

	"github.com/shopspring/decimal"
)

type inventoryUsecase struct {
	skuRepo     domain.SKURepository
	productRepo domain.ProductRepository
	auditRepo   domain.AuditRepository
	broker      domain.BrokerPublisher
	cfg         *config.Config
}

func NewInventoryUsecase(skuRepo domain.SKURepository, productRepo domain.ProductRepository,
	auditRepo domain.AuditRepository, broker domain.BrokerPublisher, cfg *config.Config) domain.InventoryUsecase {
	return &inventoryUsecase{skuRepo, productRepo, auditRepo, broker, cfg}
}

func (u *inventoryUsecase) CreateSKU(ctx context.Context, req domain.SKUCreateRequest) (*domain.SKU, error) {
	if req.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price must not be negative", domain.ErrValidation)
	}

	if _, err := u.productRepo.GetByID(ctx, req.ProductID); err != nil {
		slog.ErrorContext(ctx, "[inventoryUsecase] CreateSKU", "getProduct", err)
		return nil, err
	}

	sku := &domain.SKU{
		ProductID: req.ProductID,
		Code:      req.Code,
		UnitPrice: req.UnitPrice,
		OnHand:    req.OnHand,
	}
	if err := u.skuRepo.Create(ctx, sku); err != nil {
		slog.ErrorContext(ctx, "[inventoryUsecase] CreateSKU", "createSKU", err)
		return nil, err
	}

	if err := u.broker.PublishStockAvailable(ctx, domain.StockMessage{
		SKUID:     sku.ID,
		ProductID: sku.ProductID,
		Available: sku.Available(),
	}); err != nil {
		slog.WarnContext(ctx, "[inventoryUsecase] CreateSKU", "publishStockAvailable", err)
	}

	slog.InfoContext(ctx, "[inventoryUsecase] CreateSKU", "sku", sku.Code)
	return sku, nil
}

func (u *inventoryUsecase) GetBySKUID(ctx context.Context, id int64) (domain.SKU, error) {
	return u.skuRepo.GetByID(ctx, id)
}

func (u *inventoryUsecase) List(ctx context.Context) ([]domain.SKU, error) {
	return u.skuRepo.List(ctx)
}

func (u *inventoryUsecase) Replenish(ctx context.Context, skuID int64, actor string, req domain.ReplenishRequest) error {
	if req.UnitPrice != nil && req.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative", domain.ErrValidation)
	}

	var message domain.StockMessage

	if err := u.skuRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		sku, err := u.skuRepo.LockForUpdate(ctx, skuID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[inventoryUsecase] Replenish", "lockForUpdate", err)
			return err
		}

		changes := map[string]domain.FieldChange{
			"on_hand": {Old: sku.OnHand, New: sku.OnHand + req.Quantity},
		}

		if err := sku.ReturnToStock(req.Quantity); err != nil {
			return err
		}

		if err := u.skuRepo.UpdateQuantities(ctx, sku.ID, sku.OnHand, sku.Reserved, tx); err != nil {
			slog.ErrorContext(ctx, "[inventoryUsecase] Replenish", "updateQuantities", err)
			return err
		}

		if req.UnitPrice != nil {
			changes["unit_price"] = domain.FieldChange{Old: sku.UnitPrice, New: *req.UnitPrice}
			if err := u.skuRepo.UpdatePrice(ctx, sku.ID, *req.UnitPrice, tx); err != nil {
				slog.ErrorContext(ctx, "[inventoryUsecase] Replenish", "updatePrice", err)
				return err
			}
		}

		if err := u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "skus",
			EntityID:    sku.ID,
			Operation:   domain.AuditOperationUpdate,
			Actor:       actor,
			Changes:     changes,
		}, tx); err != nil {
			slog.ErrorContext(ctx, "[inventoryUsecase] Replenish", "auditInsert", err)
			return err
		}

		message = domain.StockMessage{
			SKUID:     sku.ID,
			ProductID: sku.ProductID,
			Available: sku.Available(),
		}
		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "[inventoryUsecase] Replenish", "withTransaction", err)
		return err
	}

	if err := u.broker.PublishStockAvailable(ctx, message); err != nil {
		slog.WarnContext(ctx, "[inventoryUsecase] Replenish", "publishStockAvailable", err)
	}

	slog.InfoContext(ctx, "[inventoryUsecase] Replenish", "skuID", skuID, "quantity", req.Quantity)
	return nil
}

func (u *inventoryUsecase) AdjustCategoryPrices(ctx context.Context, actor string, req domain.PriceAdjustmentRequest) (int64, error) {
	factor := decimal.NewFromInt(1).Add(req.Percentage.Div(decimal.NewFromInt(100)))

	var adjusted int64

	// The whole batch commits or nothing does: a single SKU that would be
	// priced below zero aborts every adjustment in the category.
	if err := u.skuRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		skus, err := u.skuRepo.ListByCategoryForUpdate(ctx, req.CategoryID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[inventoryUsecase] AdjustCategoryPrices", "listByCategory", err)
			return err
		}

		if len(skus) == 0 {
			return fmt.Errorf("%w: no skus in category %d", domain.ErrNotFound, req.CategoryID)
		}

		for _, sku := range skus {
			newPrice := sku.UnitPrice.Mul(factor).Round(2)
			if newPrice.IsNegative() {
				return fmt.Errorf("%w: adjustment would price sku %s below zero", domain.ErrInvariantViolation, sku.Code)
			}

			if err := u.skuRepo.UpdatePrice(ctx, sku.ID, newPrice, tx); err != nil {
				slog.ErrorContext(ctx, "[inventoryUsecase] AdjustCategoryPrices", "updatePrice", err)
				return err
			}

			if err := u.auditRepo.Insert(ctx, &domain.AuditRecord{
				EntityTable: "skus",
				EntityID:    sku.ID,
				Operation:   domain.AuditOperationUpdate,
				Actor:       actor,
				Changes: map[string]domain.FieldChange{
					"unit_price": {Old: sku.UnitPrice, New: newPrice},
				},
			}, tx); err != nil {
				slog.ErrorContext(ctx, "[inventoryUsecase] AdjustCategoryPrices", "auditInsert", err)
				return err
			}

			adjusted++
		}
		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "[inventoryUsecase] AdjustCategoryPrices", "withTransaction", err)
		return 0, err
	}

	slog.InfoContext(ctx, "[inventoryUsecase] AdjustCategoryPrices",
		"categoryID", req.CategoryID, "percentage", req.Percentage, "adjusted", adjusted)
	return adjusted, nil
}

func (u *inventoryUsecase) LowStockAlerts(ctx context.Context, limit int64) ([]domain.StockAlert, error) {
	threshold := u.cfg.Alerts.LowStockThreshold

	alerts, err := u.skuRepo.LowStock(ctx, threshold, limit)
	if err != nil {
		slog.ErrorContext(ctx, "[inventoryUsecase] LowStockAlerts", "lowStock", err)
		return nil, err
	}

	for i := range alerts {
		switch {
		case alerts[i].Available <= 0:
			alerts[i].Severity = domain.AlertSeverityCritical
		case alerts[i].Available <= threshold/2:
			alerts[i].Severity = domain.AlertSeverityUrgent
		default:
			alerts[i].Severity = domain.AlertSeverityWarning
		}
	}

	return alerts, nil
}
