package domain

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type SKUStatus string

const (
	SKUStatusActive   SKUStatus = "active"
	SKUStatusInactive SKUStatus = "inactive"
)

// SKU is one sellable stock entry of a product. OnHand and Reserved are
// owned exclusively by the inventory ledger: 0 <= Reserved <= OnHand holds
// at every commit point.
type SKU struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Code      string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	OnHand    int64           `json:"on_hand"`
	Reserved  int64           `json:"reserved"`
	Status    SKUStatus       `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (s *SKU) Available() int64 {
	return s.OnHand - s.Reserved
}

// Reserve allocates qty units to an open order.
func (s *SKU) Reserve(qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: reserve quantity must be positive", ErrInvalidQuantity)
	}
	if s.Available() < qty {
		return fmt.Errorf("%w: sku %s has %d available, requested %d", ErrInsufficientStock, s.Code, s.Available(), qty)
	}
	s.Reserved += qty
	return nil
}

// Release frees qty previously reserved units.
func (s *SKU) Release(qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: release quantity must be positive", ErrInvalidQuantity)
	}
	if s.Reserved-qty < 0 {
		return fmt.Errorf("%w: sku %s reserved would become negative", ErrInvariantViolation, s.Code)
	}
	s.Reserved -= qty
	return nil
}

// Ship consumes qty reserved units, removing them from on-hand.
func (s *SKU) Ship(qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: ship quantity must be positive", ErrInvalidQuantity)
	}
	if s.Reserved < qty || s.OnHand < qty {
		return fmt.Errorf("%w: sku %s cannot ship %d units", ErrInvariantViolation, s.Code, qty)
	}
	s.Reserved -= qty
	s.OnHand -= qty
	return nil
}

// ReturnToStock puts qty received-return units back on hand.
func (s *SKU) ReturnToStock(qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: return quantity must be positive", ErrInvalidQuantity)
	}
	s.OnHand += qty
	return nil
}

type SKUCreateRequest struct {
	ProductID int64           `json:"product_id" validate:"required"`
	Code      string          `json:"sku" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
	OnHand    int64           `json:"on_hand" validate:"gte=0"`
}

type ReplenishRequest struct {
	Quantity  int64            `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type PriceAdjustmentRequest struct {
	CategoryID int64           `json:"category_id" validate:"required"`
	Percentage decimal.Decimal `json:"percentage" validate:"required"`
}

type AlertSeverity string

const (
	AlertSeverityCritical AlertSeverity = "critical"
	AlertSeverityUrgent   AlertSeverity = "urgent"
	AlertSeverityWarning  AlertSeverity = "warning"
)

type StockAlert struct {
	SKUID       int64         `json:"sku_id"`
	ProductID   int64         `json:"product_id"`
	Code        string        `json:"sku"`
	ProductName string        `json:"product_name"`
	Available   int64         `json:"available"`
	Reserved    int64         `json:"reserved"`
	Severity    AlertSeverity `json:"severity"`
}

type SKURepository interface {
	Create(ctx context.Context, sku *SKU) error
	GetByID(ctx context.Context, id int64) (SKU, error)
	GetByProductID(ctx context.Context, productID int64) ([]SKU, error)
	List(ctx context.Context) ([]SKU, error)
	LockForUpdate(ctx context.Context, id int64, tx *sql.Tx) (SKU, error)
	UpdateQuantities(ctx context.Context, id, onHand, reserved int64, tx *sql.Tx) error
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal, tx *sql.Tx) error
	ListByCategoryForUpdate(ctx context.Context, categoryID int64, tx *sql.Tx) ([]SKU, error)
	LowStock(ctx context.Context, threshold int64, limit int64) ([]StockAlert, error)
	ReferencedByOrderLines(ctx context.Context, productID int64) (bool, error)

	WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error
}

type InventoryUsecase interface {
	CreateSKU(ctx context.Context, req SKUCreateRequest) (*SKU, error)
	GetBySKUID(ctx context.Context, id int64) (SKU, error)
	List(ctx context.Context) ([]SKU, error)
	Replenish(ctx context.Context, skuID int64, actor string, req ReplenishRequest) error
	AdjustCategoryPrices(ctx context.Context, actor string, req PriceAdjustmentRequest) (int64, error)
	LowStockAlerts(ctx context.Context, limit int64) ([]StockAlert, error)
}
