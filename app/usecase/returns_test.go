package usecase

import (
	"context"
	"testing"

	"backoffice-service/app/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type returnEnv struct {
	*orderEnv
	returns domain.ReturnUsecase
}

func newReturnEnv(t *testing.T) *returnEnv {
	t.Helper()
	base := newOrderEnv(t)
	return &returnEnv{
		orderEnv: base,
		returns: NewReturnUsecase(&fakeReturnRepo{base.store}, &fakeOrderRepo{base.store},
			&fakeSKURepo{base.store}, &fakePaymentRepo{base.store}, &fakeAuditRepo{base.store},
			base.broker, testConfig()),
	}
}

// seedCompletedOrder places an order for 3 units at 25.00 and walks it to
// completed, with the stock shipped out.
func (e *returnEnv) seedCompletedOrder(t *testing.T) (*domain.Order, domain.OrderLine) {
	t.Helper()
	ctx := context.Background()
	sku := e.seedSKU(t, 25.00, 10)

	order, err := e.orders.Create(ctx, "user:1", domain.OrderCreateRequest{
		CustomerID: e.customer.ID,
		AddressID:  e.address.ID,
		Items:      []domain.OrderItemRequest{{SKUID: sku.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	stored := e.store.skus[sku.ID]
	require.NoError(t, stored.Ship(3))

	orderRepo := &fakeOrderRepo{e.store}
	require.NoError(t, orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusCompleted, nil))

	lines, err := orderRepo.GetLines(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	return order, lines[0]
}

func TestReturnEligibility(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()

	order, _ := env.seedCompletedOrder(t)
	eligibility, err := env.returns.ValidateEligible(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, eligibility.Eligible)

	sku := env.seedSKU(t, 10.00, 5)
	pending, err := env.orders.Create(ctx, "user:1", domain.OrderCreateRequest{
		CustomerID: env.customer.ID,
		AddressID:  env.address.ID,
		Items:      []domain.OrderItemRequest{{SKUID: sku.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	eligibility, err = env.returns.ValidateEligible(ctx, pending.ID)
	require.NoError(t, err)
	assert.False(t, eligibility.Eligible, "pending orders do not accept returns")
}

func TestCalculateRefund(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	_, line := env.seedCompletedOrder(t)

	quote, err := env.returns.CalculateRefund(ctx, line.ID, 3)
	require.NoError(t, err)
	assert.True(t, quote.Amount.Equal(decimal.NewFromFloat(75.00)), "amount %s", quote.Amount)

	_, err = env.returns.CalculateRefund(ctx, line.ID, 4)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = env.returns.CalculateRefund(ctx, line.ID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCalculateRefundCountsPriorReturns(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	_, line := env.seedCompletedOrder(t)

	_, err := env.returns.Create(ctx, "user:1", domain.ReturnCreateRequest{
		OrderLineID: line.ID, Quantity: 2, Reason: "damaged",
	})
	require.NoError(t, err)

	// only 1 of the 3 purchased units is still returnable
	_, err = env.returns.CalculateRefund(ctx, line.ID, 2)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	quote, err := env.returns.CalculateRefund(ctx, line.ID, 1)
	require.NoError(t, err)
	assert.True(t, quote.Amount.Equal(decimal.NewFromFloat(25.00)), "amount %s", quote.Amount)
}

func TestReturnCreateQuantityBoundUnderContention(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	_, line := env.seedCompletedOrder(t)

	// A competing request claims 2 units after this one has read the
	// line but before its transaction starts.
	env.store.beforeTx = func() {
		_, err := env.returns.Create(ctx, "user:2", domain.ReturnCreateRequest{
			OrderLineID: line.ID, Quantity: 2, Reason: "damaged",
		})
		require.NoError(t, err)
	}

	_, err := env.returns.Create(ctx, "user:1", domain.ReturnCreateRequest{
		OrderLineID: line.ID, Quantity: 2, Reason: "damaged",
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	require.Len(t, env.store.returns, 1, "only the competing return persists")
}

func TestReturnReceivedRestocksOnceUnderContention(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	_, line := env.seedCompletedOrder(t)

	ret, err := env.returns.Create(ctx, "user:1", domain.ReturnCreateRequest{
		OrderLineID: line.ID, Quantity: 2, Reason: "damaged",
	})
	require.NoError(t, err)
	require.NoError(t, env.returns.Transition(ctx, ret.ID, "user:2",
		domain.ReturnTransitionRequest{Status: domain.ReturnStatusApproved}))

	onHand := env.store.skus[line.SKUID].OnHand

	// A competing receipt lands first; the late request must see the
	// already-received row and restock nothing.
	env.store.beforeTx = func() {
		require.NoError(t, env.returns.Transition(ctx, ret.ID, "user:2",
			domain.ReturnTransitionRequest{Status: domain.ReturnStatusReceived}))
	}

	err = env.returns.Transition(ctx, ret.ID, "user:3",
		domain.ReturnTransitionRequest{Status: domain.ReturnStatusReceived})
	require.ErrorIs(t, err, domain.ErrNoOpTransition)
	assert.Equal(t, onHand+2, env.store.skus[line.SKUID].OnHand, "units restocked exactly once")
}

func TestReturnCreateBoundsQuantity(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	_, line := env.seedCompletedOrder(t)

	first, err := env.returns.Create(ctx, "user:1", domain.ReturnCreateRequest{
		OrderLineID: line.ID, Quantity: 2, Reason: "damaged",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnStatusRequested, first.Status)

	// 2 of 3 already claimed, a further 2 exceeds the line
	_, err = env.returns.Create(ctx, "user:1", domain.ReturnCreateRequest{
		OrderLineID: line.ID, Quantity: 2, Reason: "damaged",
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = env.returns.Create(ctx, "user:1", domain.ReturnCreateRequest{
		OrderLineID: line.ID, Quantity: 1, Reason: "damaged",
	})
	require.NoError(t, err)
}

func TestReturnRejectedQuantityFreedUp(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	_, line := env.seedCompletedOrder(t)

	first, err := env.returns.Create(ctx, "user:1", domain.ReturnCreateRequest{
		OrderLineID: line.ID, Quantity: 3, Reason: "damaged",
	})
	require.NoError(t, err)

	require.NoError(t, env.returns.Transition(ctx, first.ID, "user:2",
		domain.ReturnTransitionRequest{Status: domain.ReturnStatusRejected}))

	// rejected returns no longer count against the line
	_, err = env.returns.Create(ctx, "user:1", domain.ReturnCreateRequest{
		OrderLineID: line.ID, Quantity: 3, Reason: "wrong size",
	})
	require.NoError(t, err)
}

func TestReturnReceivedRestocks(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	_, line := env.seedCompletedOrder(t)
	skuID := line.SKUID
	onHandBefore := env.store.skus[skuID].OnHand

	ret, err := env.returns.Create(ctx, "user:1", domain.ReturnCreateRequest{
		OrderLineID: line.ID, Quantity: 2, Reason: "damaged",
	})
	require.NoError(t, err)

	require.NoError(t, env.returns.Transition(ctx, ret.ID, "user:2",
		domain.ReturnTransitionRequest{Status: domain.ReturnStatusApproved}))
	assert.Equal(t, onHandBefore, env.store.skus[skuID].OnHand, "approval alone must not restock")

	require.NoError(t, env.returns.Transition(ctx, ret.ID, "user:2",
		domain.ReturnTransitionRequest{Status: domain.ReturnStatusReceived}))
	assert.Equal(t, onHandBefore+2, env.store.skus[skuID].OnHand)
}

func TestReturnRefundedCreatesRefundPayment(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	order, line := env.seedCompletedOrder(t)

	ret, err := env.returns.Create(ctx, "user:1", domain.ReturnCreateRequest{
		OrderLineID: line.ID, Quantity: 3, Reason: "damaged",
	})
	require.NoError(t, err)

	for _, status := range []domain.ReturnStatus{
		domain.ReturnStatusApproved, domain.ReturnStatusReceived, domain.ReturnStatusRefunded,
	} {
		require.NoError(t, env.returns.Transition(ctx, ret.ID, "user:2",
			domain.ReturnTransitionRequest{Status: status}))
	}

	var refund *domain.Payment
	for _, p := range env.store.payments {
		if p.Status == domain.PaymentStatusRefunded {
			refund = p
		}
	}
	require.NotNil(t, refund)
	assert.Equal(t, order.ID, refund.OrderID)
	assert.True(t, refund.Amount.Equal(decimal.NewFromFloat(75.00)), "refund %s", refund.Amount)
}

func TestReturnTransitionRejectsInvalidEdges(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	_, line := env.seedCompletedOrder(t)

	ret, err := env.returns.Create(ctx, "user:1", domain.ReturnCreateRequest{
		OrderLineID: line.ID, Quantity: 1, Reason: "damaged",
	})
	require.NoError(t, err)

	err = env.returns.Transition(ctx, ret.ID, "user:2",
		domain.ReturnTransitionRequest{Status: domain.ReturnStatusRefunded})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	err = env.returns.Transition(ctx, ret.ID, "user:2",
		domain.ReturnTransitionRequest{Status: domain.ReturnStatusRequested})
	require.ErrorIs(t, err, domain.ErrNoOpTransition)
}
