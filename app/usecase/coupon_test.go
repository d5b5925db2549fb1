package usecase

import (
	"context"
	"testing"
	"time"

	"backoffice-service/app/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type couponEnv struct {
	*orderEnv
	coupons domain.CouponUsecase
}

func newCouponEnv(t *testing.T) *couponEnv {
	t.Helper()
	base := newOrderEnv(t)
	return &couponEnv{
		orderEnv: base,
		coupons: NewCouponUsecase(&fakeCouponRepo{base.store}, &fakeOrderRepo{base.store},
			&fakeAuditRepo{base.store}, testConfig()),
	}
}

func (e *couponEnv) seedPendingOrder(t *testing.T) *domain.Order {
	t.Helper()
	sku := e.seedSKU(t, 50.00, 10)
	order, err := e.orders.Create(context.Background(), "user:1", domain.OrderCreateRequest{
		CustomerID: e.customer.ID,
		AddressID:  e.address.ID,
		Items:      []domain.OrderItemRequest{{SKUID: sku.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	return order
}

func TestCouponValidate(t *testing.T) {
	env := newCouponEnv(t)
	ctx := context.Background()

	result, err := env.coupons.Validate(ctx, "NOPE")
	require.NoError(t, err, "unknown code is not an error")
	assert.False(t, result.Valid)

	_, err = env.coupons.Create(ctx, domain.CouponCreateRequest{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	result, err = env.coupons.Validate(ctx, "SAVE10")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.NotNil(t, result.Coupon)
	assert.Equal(t, "SAVE10", result.Coupon.Code)

	expired := time.Now().Add(-time.Hour)
	_, err = env.coupons.Create(ctx, domain.CouponCreateRequest{
		Code:          "OLD",
		DiscountType:  domain.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(5),
		ExpiresAt:     &expired,
	})
	require.NoError(t, err)

	result, err = env.coupons.Validate(ctx, "OLD")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestCouponCreateRejectsBadValues(t *testing.T) {
	env := newCouponEnv(t)
	ctx := context.Background()

	_, err := env.coupons.Create(ctx, domain.CouponCreateRequest{
		Code:          "NEG",
		DiscountType:  domain.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(-5),
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = env.coupons.Create(ctx, domain.CouponCreateRequest{
		Code:          "BIG",
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(150),
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestCouponApplyRecomputesTotals(t *testing.T) {
	env := newCouponEnv(t)
	ctx := context.Background()
	order := env.seedPendingOrder(t)

	_, err := env.coupons.Create(ctx, domain.CouponCreateRequest{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	updated, err := env.coupons.Apply(ctx, "user:1", domain.ApplyCouponRequest{
		OrderID: order.ID, Code: "SAVE10",
	})
	require.NoError(t, err)

	// 100.00 subtotal, 10.00 off, 16% tax on 90.00
	assert.True(t, updated.DiscountApplied.Equal(decimal.NewFromFloat(10.00)), "discount %s", updated.DiscountApplied)
	assert.True(t, updated.Taxes.Equal(decimal.NewFromFloat(14.40)), "taxes %s", updated.Taxes)
	assert.True(t, updated.Total.Equal(decimal.NewFromFloat(104.40)), "total %s", updated.Total)
	require.NotNil(t, env.store.orders[order.ID].CouponID)
}

func TestCouponApplySingleUseExhausted(t *testing.T) {
	env := newCouponEnv(t)
	ctx := context.Background()
	one := int64(1)

	_, err := env.coupons.Create(ctx, domain.CouponCreateRequest{
		Code:          "ONCE",
		DiscountType:  domain.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(5),
		RemainingUses: &one,
	})
	require.NoError(t, err)

	first := env.seedPendingOrder(t)
	second := env.seedPendingOrder(t)

	_, err = env.coupons.Apply(ctx, "user:1", domain.ApplyCouponRequest{OrderID: first.ID, Code: "ONCE"})
	require.NoError(t, err)

	_, err = env.coupons.Apply(ctx, "user:1", domain.ApplyCouponRequest{OrderID: second.ID, Code: "ONCE"})
	require.ErrorIs(t, err, domain.ErrCouponInvalid, "second use of a single-use coupon must fail")
}

func TestCouponApplyGuards(t *testing.T) {
	env := newCouponEnv(t)
	ctx := context.Background()
	order := env.seedPendingOrder(t)

	_, err := env.coupons.Create(ctx, domain.CouponCreateRequest{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	_, err = env.coupons.Apply(ctx, "user:1", domain.ApplyCouponRequest{OrderID: order.ID, Code: "SAVE10"})
	require.NoError(t, err)

	// a second coupon on the same order
	_, err = env.coupons.Apply(ctx, "user:1", domain.ApplyCouponRequest{OrderID: order.ID, Code: "SAVE10"})
	require.ErrorIs(t, err, domain.ErrConstraintConflict)

	paid := env.seedPendingOrder(t)
	require.NoError(t, (&fakeOrderRepo{env.store}).UpdateStatus(ctx, paid.ID, domain.OrderStatusPaid, nil))
	_, err = env.coupons.Apply(ctx, "user:1", domain.ApplyCouponRequest{OrderID: paid.ID, Code: "SAVE10"})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}
