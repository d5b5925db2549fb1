package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusPaid, OrderStatusShipped, true},
		{OrderStatusPaid, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusCompleted, false},
		{OrderStatusShipped, OrderStatusCompleted, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusShipped, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusPaid.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
}

func TestComputeOrderTotals(t *testing.T) {
	lines := []OrderLine{
		{Quantity: 2, UnitPrice: decimal.NewFromFloat(25.00)},
		{Quantity: 1, UnitPrice: decimal.NewFromFloat(10.50)},
	}
	taxRate := decimal.NewFromFloat(16.0)

	t.Run("without coupon", func(t *testing.T) {
		totals := ComputeOrderTotals(lines, nil, taxRate)

		assert.True(t, totals.Subtotal.Equal(decimal.NewFromFloat(60.50)), "subtotal %s", totals.Subtotal)
		assert.True(t, totals.Discount.IsZero())
		assert.True(t, totals.Taxes.Equal(decimal.NewFromFloat(9.68)), "taxes %s", totals.Taxes)
		assert.True(t, totals.Total.Equal(decimal.NewFromFloat(70.18)), "total %s", totals.Total)
	})

	t.Run("with percentage coupon", func(t *testing.T) {
		coupon := &Coupon{
			DiscountType:  DiscountTypePercentage,
			DiscountValue: decimal.NewFromInt(10),
			Status:        CouponStatusActive,
		}
		totals := ComputeOrderTotals(lines, coupon, taxRate)

		require.True(t, totals.Discount.Equal(decimal.NewFromFloat(6.05)), "discount %s", totals.Discount)
		// taxes apply to the discounted amount
		assert.True(t, totals.Taxes.Equal(decimal.NewFromFloat(8.71)), "taxes %s", totals.Taxes)
		assert.True(t, totals.Total.Equal(decimal.NewFromFloat(63.16)), "total %s", totals.Total)
	})

	t.Run("fixed coupon larger than subtotal is capped", func(t *testing.T) {
		coupon := &Coupon{
			DiscountType:  DiscountTypeFixed,
			DiscountValue: decimal.NewFromInt(500),
			Status:        CouponStatusActive,
		}
		totals := ComputeOrderTotals(lines, coupon, taxRate)

		assert.True(t, totals.Discount.Equal(totals.Subtotal))
		assert.True(t, totals.Taxes.IsZero())
		assert.True(t, totals.Total.IsZero(), "total never goes negative")
	})

	t.Run("empty order", func(t *testing.T) {
		totals := ComputeOrderTotals(nil, nil, taxRate)
		assert.True(t, totals.Total.IsZero())
	})
}
