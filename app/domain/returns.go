package domain

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type ReturnStatus string

const (
	ReturnStatusRequested ReturnStatus = "requested"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusReceived  ReturnStatus = "received"
	ReturnStatusRefunded  ReturnStatus = "refunded"
	ReturnStatusRejected  ReturnStatus = "rejected"
)

var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnStatusRequested: {ReturnStatusApproved, ReturnStatusRejected},
	ReturnStatusApproved:  {ReturnStatusReceived, ReturnStatusRejected},
	ReturnStatusReceived:  {ReturnStatusRefunded},
	ReturnStatusRefunded:  {},
	ReturnStatusRejected:  {},
}

func (s ReturnStatus) IsValid() bool {
	_, ok := returnTransitions[s]
	return ok
}

func (s ReturnStatus) CanTransitionTo(next ReturnStatus) bool {
	for _, t := range returnTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

type Return struct {
	ID          int64        `json:"id"`
	OrderLineID int64        `json:"order_line_id"`
	Reason      string       `json:"reason"`
	Quantity    int64        `json:"quantity"`
	RequestedAt time.Time    `json:"requested_at"`
	Status      ReturnStatus `json:"status"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type ReturnCreateRequest struct {
	OrderLineID int64  `json:"order_line_id" validate:"required"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	Reason      string `json:"reason" validate:"required"`
}

type ReturnTransitionRequest struct {
	Status ReturnStatus `json:"status" validate:"required,oneof=approved received refunded rejected"`
}

type RefundQuote struct {
	OrderLineID int64           `json:"order_line_id"`
	Quantity    int64           `json:"quantity"`
	Amount      decimal.Decimal `json:"refund_amount"`
}

type ReturnEligibility struct {
	OrderID  int64 `json:"order_id"`
	Eligible bool  `json:"eligible"`
}

// ReturnSummary joins the order line, order, customer and product context.
type ReturnSummary struct {
	Return
	OrderID          int64           `json:"order_id"`
	OriginalQuantity int64           `json:"original_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	CustomerID       int64           `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	CustomerEmail    string          `json:"customer_email"`
	ProductName      string          `json:"product_name"`
	SKUCode          string          `json:"sku"`
}

type ReturnRepository interface {
	Create(ctx context.Context, ret *Return, tx *sql.Tx) error
	LockByID(ctx context.Context, id int64, tx *sql.Tx) (Return, error)
	UpdateStatus(ctx context.Context, id int64, status ReturnStatus, tx *sql.Tx) error
	List(ctx context.Context) ([]ReturnSummary, error)
	// ReturnedQuantity sums quantities for a line across returns that were
	// not rejected, excluding the given return id when non-zero.
	ReturnedQuantity(ctx context.Context, orderLineID int64, excludeID int64) (int64, error)
}

type ReturnUsecase interface {
	ValidateEligible(ctx context.Context, orderID int64) (ReturnEligibility, error)
	CalculateRefund(ctx context.Context, orderLineID, quantity int64) (RefundQuote, error)
	Create(ctx context.Context, actor string, req ReturnCreateRequest) (*Return, error)
	Transition(ctx context.Context, id int64, actor string, req ReturnTransitionRequest) error
	List(ctx context.Context) ([]ReturnSummary, error)
}
