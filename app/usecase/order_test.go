package usecase

import (
	"context"
	"testing"

	"backoffice-service/app/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderEnv struct {
	store  *fakeStore
	broker *fakeBroker
	orders domain.OrderUsecase

	customer domain.Customer
	address  domain.Address
}

func newOrderEnv(t *testing.T) *orderEnv {
	t.Helper()
	store := newFakeStore()
	broker := &fakeBroker{}

	env := &orderEnv{store: store, broker: broker}
	env.orders = NewOrderUsecase(
		&fakeOrderRepo{store}, &fakeSKURepo{store}, &fakeCustomerRepo{store},
		&fakeAddressRepo{store}, &fakeCouponRepo{store}, &fakeHistoryRepo{store},
		&fakeAuditRepo{store}, broker, testConfig())

	ctx := context.Background()
	customerRepo := &fakeCustomerRepo{store}
	customer := &domain.Customer{FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", Status: domain.CustomerStatusActive}
	require.NoError(t, customerRepo.Create(ctx, customer))
	env.customer = *customer

	addressRepo := &fakeAddressRepo{store}
	address := &domain.Address{CustomerID: customer.ID, Line1: "Main St 1", City: "Springfield", Country: "US"}
	require.NoError(t, addressRepo.Create(ctx, address))
	env.address = *address

	return env
}

func (e *orderEnv) seedSKU(t *testing.T, price float64, onHand int64) domain.SKU {
	t.Helper()
	sku := &domain.SKU{
		ProductID: 1,
		Code:      "SKU",
		UnitPrice: decimal.NewFromFloat(price),
		OnHand:    onHand,
		Status:    domain.SKUStatusActive,
	}
	require.NoError(t, (&fakeSKURepo{e.store}).Create(context.Background(), sku))
	return *sku
}

func TestOrderCreateReservesStock(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	skuA := env.seedSKU(t, 25.00, 10)
	skuB := env.seedSKU(t, 10.50, 5)

	order, err := env.orders.Create(ctx, "user:1", domain.OrderCreateRequest{
		CustomerID: env.customer.ID,
		AddressID:  env.address.ID,
		Items: []domain.OrderItemRequest{
			{SKUID: skuA.ID, Quantity: 2},
			{SKUID: skuB.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromFloat(60.50)), "subtotal %s", order.Subtotal)
	assert.True(t, order.Taxes.Equal(decimal.NewFromFloat(9.68)), "taxes %s", order.Taxes)
	assert.Len(t, order.Lines, 2)

	assert.Equal(t, int64(2), env.store.skus[skuA.ID].Reserved)
	assert.Equal(t, int64(1), env.store.skus[skuB.ID].Reserved)
	assert.Equal(t, int64(10), env.store.skus[skuA.ID].OnHand, "creation must not touch on-hand")

	require.Len(t, env.store.history, 1)
	assert.Nil(t, env.store.history[0].PreviousStatus)
	assert.Equal(t, domain.OrderStatusPending, env.store.history[0].NewStatus)

	assert.Len(t, env.broker.stockMessages, 2)
	require.Len(t, env.broker.statusMessages, 1)
	assert.Equal(t, order.ID, env.broker.statusMessages[0].OrderID)
}

func TestOrderCreateInsufficientStockRollsBack(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	skuA := env.seedSKU(t, 25.00, 10)
	skuB := env.seedSKU(t, 10.50, 2)

	_, err := env.orders.Create(ctx, "user:1", domain.OrderCreateRequest{
		CustomerID: env.customer.ID,
		AddressID:  env.address.ID,
		Items: []domain.OrderItemRequest{
			{SKUID: skuA.ID, Quantity: 2},
			{SKUID: skuB.ID, Quantity: 5},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(0), env.store.skus[skuA.ID].Reserved, "earlier reservation must roll back")
	assert.Equal(t, int64(0), env.store.skus[skuB.ID].Reserved)
	assert.Empty(t, env.store.orders)
	assert.Empty(t, env.store.history)
	assert.Empty(t, env.broker.statusMessages)
}

func TestOrderCreateRejectsForeignAddress(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	sku := env.seedSKU(t, 25.00, 10)

	other := &domain.Customer{FirstName: "Eve", Email: "eve@example.com", Status: domain.CustomerStatusActive}
	require.NoError(t, (&fakeCustomerRepo{env.store}).Create(ctx, other))

	_, err := env.orders.Create(ctx, "user:1", domain.OrderCreateRequest{
		CustomerID: other.ID,
		AddressID:  env.address.ID,
		Items:      []domain.OrderItemRequest{{SKUID: sku.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestOrderCancelReleasesReservations(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	sku := env.seedSKU(t, 25.00, 10)

	order, err := env.orders.Create(ctx, "user:1", domain.OrderCreateRequest{
		CustomerID: env.customer.ID,
		AddressID:  env.address.ID,
		Items:      []domain.OrderItemRequest{{SKUID: sku.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(4), env.store.skus[sku.ID].Reserved)

	err = env.orders.Cancel(ctx, order.ID, "user:1", domain.CancelOrderRequest{Reason: "changed my mind"})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCancelled, env.store.orders[order.ID].Status)
	assert.Equal(t, int64(0), env.store.skus[sku.ID].Reserved)
	assert.Equal(t, int64(10), env.store.skus[sku.ID].OnHand)

	require.Len(t, env.store.history, 2)
	last := env.store.history[1]
	require.NotNil(t, last.PreviousStatus)
	assert.Equal(t, domain.OrderStatusPending, *last.PreviousStatus)
	assert.Equal(t, domain.OrderStatusCancelled, last.NewStatus)
	require.NotNil(t, last.Comment)
	assert.Equal(t, "changed my mind", *last.Comment)
}

func TestOrderTransitionRejectsInvalidEdges(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	sku := env.seedSKU(t, 25.00, 10)

	order, err := env.orders.Create(ctx, "user:1", domain.OrderCreateRequest{
		CustomerID: env.customer.ID,
		AddressID:  env.address.ID,
		Items:      []domain.OrderItemRequest{{SKUID: sku.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	err = env.orders.Transition(ctx, order.ID, "user:1", domain.OrderTransitionRequest{Status: domain.OrderStatusShipped})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	err = env.orders.Transition(ctx, order.ID, "user:1", domain.OrderTransitionRequest{Status: domain.OrderStatusPending})
	require.ErrorIs(t, err, domain.ErrNoOpTransition)

	assert.Equal(t, domain.OrderStatusPending, env.store.orders[order.ID].Status)
	assert.Len(t, env.store.history, 1, "failed transitions must not write history")
}

func TestOrderDeleteBlockedByPayments(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	sku := env.seedSKU(t, 25.00, 10)

	order, err := env.orders.Create(ctx, "user:1", domain.OrderCreateRequest{
		CustomerID: env.customer.ID,
		AddressID:  env.address.ID,
		Items:      []domain.OrderItemRequest{{SKUID: sku.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, (&fakePaymentRepo{env.store}).Create(ctx, &domain.Payment{
		OrderID: order.ID,
		Amount:  order.Total,
		Status:  domain.PaymentStatusSuccessful,
	}, nil))

	err = env.orders.Delete(ctx, order.ID, "user:1")
	require.ErrorIs(t, err, domain.ErrConstraintConflict)
	assert.Contains(t, env.store.orders, order.ID)
}

func TestOrderDeleteBlockedByPaymentLandingMidDelete(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	sku := env.seedSKU(t, 25.00, 10)

	order, err := env.orders.Create(ctx, "user:1", domain.OrderCreateRequest{
		CustomerID: env.customer.ID,
		AddressID:  env.address.ID,
		Items:      []domain.OrderItemRequest{{SKUID: sku.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// A payment commits just before the delete transaction starts; the
	// dependent-row check runs inside the transaction and must see it.
	env.store.beforeTx = func() {
		require.NoError(t, (&fakePaymentRepo{env.store}).Create(ctx, &domain.Payment{
			OrderID: order.ID,
			Amount:  order.Total,
			Status:  domain.PaymentStatusSuccessful,
		}, nil))
	}

	err = env.orders.Delete(ctx, order.ID, "user:1")
	require.ErrorIs(t, err, domain.ErrConstraintConflict)
	assert.Contains(t, env.store.orders, order.ID)
	assert.Equal(t, int64(1), env.store.skus[sku.ID].Reserved, "reservation stays with the surviving order")
}

func TestOrderDeleteReleasesReservations(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	sku := env.seedSKU(t, 25.00, 10)

	order, err := env.orders.Create(ctx, "user:1", domain.OrderCreateRequest{
		CustomerID: env.customer.ID,
		AddressID:  env.address.ID,
		Items:      []domain.OrderItemRequest{{SKUID: sku.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	require.NoError(t, env.orders.Delete(ctx, order.ID, "user:1"))
	assert.NotContains(t, env.store.orders, order.ID)
	assert.Equal(t, int64(0), env.store.skus[sku.ID].Reserved)
}

func TestOrderTimeline(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	sku := env.seedSKU(t, 25.00, 10)

	_, err := env.orders.Timeline(ctx, 999)
	require.ErrorIs(t, err, domain.ErrNotFound)

	order, err := env.orders.Create(ctx, "user:1", domain.OrderCreateRequest{
		CustomerID: env.customer.ID,
		AddressID:  env.address.ID,
		Items:      []domain.OrderItemRequest{{SKUID: sku.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, env.orders.Cancel(ctx, order.ID, "user:1", domain.CancelOrderRequest{Reason: "test"}))

	entries, err := env.orders.Timeline(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.OrderStatusPending, entries[0].NewStatus)
	assert.Equal(t, domain.OrderStatusCancelled, entries[1].NewStatus)
}
