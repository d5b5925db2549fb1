package domain

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusInactive CouponStatus = "inactive"
	CouponStatusExpired  CouponStatus = "expired"
)

type Coupon struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ExpiresAt     *time.Time      `json:"expires_at"`
	RemainingUses *int64          `json:"remaining_uses"` // nil means unlimited
	Status        CouponStatus    `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Applicable reports whether the coupon can still be applied at the given
// instant: active, not past expiry, and with uses remaining.
func (c *Coupon) Applicable(now time.Time) bool {
	if c.Status != CouponStatusActive {
		return false
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return false
	}
	if c.RemainingUses != nil && *c.RemainingUses <= 0 {
		return false
	}
	return true
}

// Discount computes the discount amount for a subtotal. A fixed discount is
// capped at the subtotal so the total never goes negative.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	switch c.DiscountType {
	case DiscountTypePercentage:
		return subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
	case DiscountTypeFixed:
		if c.DiscountValue.GreaterThan(subtotal) {
			return subtotal
		}
		return c.DiscountValue
	}
	return decimal.Zero
}

type CouponCreateRequest struct {
	Code          string          `json:"code" validate:"required"`
	DiscountType  DiscountType    `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue decimal.Decimal `json:"discount_value" validate:"required"`
	ExpiresAt     *time.Time      `json:"expires_at"`
	RemainingUses *int64          `json:"remaining_uses"`
}

type CouponValidationResult struct {
	Valid  bool    `json:"valid"`
	Coupon *Coupon `json:"coupon,omitempty"`
}

type ApplyCouponRequest struct {
	OrderID int64  `json:"order_id" validate:"required"`
	Code    string `json:"code" validate:"required"`
}

type CouponRepository interface {
	Create(ctx context.Context, coupon *Coupon) error
	GetByID(ctx context.Context, id int64) (Coupon, error)
	GetByCode(ctx context.Context, code string) (Coupon, error)
	LockByCode(ctx context.Context, code string, tx *sql.Tx) (Coupon, error)
	DecrementRemainingUses(ctx context.Context, id int64, tx *sql.Tx) error
	List(ctx context.Context) ([]Coupon, error)
}

type CouponUsecase interface {
	Create(ctx context.Context, req CouponCreateRequest) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	Validate(ctx context.Context, code string) (CouponValidationResult, error)
	Apply(ctx context.Context, actor string, req ApplyCouponRequest) (*Order, error)
}
