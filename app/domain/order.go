package domain

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusCompleted OrderStatus = "completed"
)

// orderTransitions is the complete edge set of the order state machine.
// Cancellation is only reachable before shipment; a shipped order goes
// through the returns flow instead.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusCompleted},
	OrderStatusCancelled: {},
	OrderStatusCompleted: {},
}

func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from s.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

type Order struct {
	ID              int64           `json:"id"`
	CustomerID      int64           `json:"customer_id"`
	ShippingAddress int64           `json:"shipping_address_id"`
	CouponID        *int64          `json:"coupon_id"`
	PlacedAt        time.Time       `json:"placed_at"`
	Status          OrderStatus     `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	Taxes           decimal.Decimal `json:"taxes"`
	Total           decimal.Decimal `json:"total"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Lines           []OrderLine     `json:"lines,omitempty"`
}

// OrderLine snapshots the unit price at purchase time; it is never
// recomputed from the current SKU price.
type OrderLine struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	SKUID     int64           `json:"sku_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderTotals is the deterministic money breakdown of an order.
type OrderTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Taxes    decimal.Decimal
	Total    decimal.Decimal
}

// ComputeOrderTotals derives subtotal/discount/taxes/total from line
// snapshots. taxRate is a percentage applied to the discounted subtotal.
func ComputeOrderTotals(lines []OrderLine, coupon *Coupon, taxRate decimal.Decimal) OrderTotals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}

	discount := decimal.Zero
	if coupon != nil {
		discount = coupon.Discount(subtotal)
	}

	taxable := subtotal.Sub(discount)
	taxes := taxable.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)

	return OrderTotals{
		Subtotal: subtotal,
		Discount: discount,
		Taxes:    taxes,
		Total:    taxable.Add(taxes),
	}
}

type OrderItemRequest struct {
	SKUID    int64 `json:"sku_id" validate:"required"`
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

type OrderCreateRequest struct {
	CustomerID int64              `json:"customer_id" validate:"required"`
	AddressID  int64              `json:"shipping_address_id" validate:"required"`
	CouponID   *int64             `json:"coupon_id"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderTransitionRequest struct {
	Status  OrderStatus `json:"status" validate:"required,oneof=pending paid shipped cancelled completed"`
	Comment string      `json:"comment"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// OrderSummary is the list-view projection joining customer, address and
// coupon data.
type OrderSummary struct {
	Order
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	City          string  `json:"city"`
	Country       string  `json:"country"`
	CouponCode    *string `json:"coupon_code"`
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order, tx *sql.Tx) error
	CreateLines(ctx context.Context, lines []OrderLine, tx *sql.Tx) error
	GetByID(ctx context.Context, id int64) (Order, error)
	LockByID(ctx context.Context, id int64, tx *sql.Tx) (Order, error)
	GetLines(ctx context.Context, orderID int64) ([]OrderLine, error)
	GetLineByID(ctx context.Context, lineID int64) (OrderLine, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus, tx *sql.Tx) error
	UpdateTotals(ctx context.Context, id int64, couponID int64, totals OrderTotals, tx *sql.Tx) error
	List(ctx context.Context) ([]OrderSummary, error)
	CountPayments(ctx context.Context, orderID int64, tx *sql.Tx) (int64, error)
	CountShipments(ctx context.Context, orderID int64, tx *sql.Tx) (int64, error)
	Delete(ctx context.Context, id int64, tx *sql.Tx) error

	WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error
}

type OrderUsecase interface {
	Create(ctx context.Context, actor string, req OrderCreateRequest) (*Order, error)
	GetByID(ctx context.Context, id int64) (Order, error)
	List(ctx context.Context) ([]OrderSummary, error)
	Transition(ctx context.Context, orderID int64, actor string, req OrderTransitionRequest) error
	Cancel(ctx context.Context, orderID int64, actor string, req CancelOrderRequest) error
	Delete(ctx context.Context, orderID int64, actor string) error
	Timeline(ctx context.Context, orderID int64) ([]OrderHistoryEntry, error)
}
