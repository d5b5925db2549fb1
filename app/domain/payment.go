package domain

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusSuccessful PaymentStatus = "successful"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

type Payment struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	PaidAt        time.Time       `json:"paid_at"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        PaymentStatus   `json:"status"`
	ExternalTxnID *string         `json:"external_txn_id"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type PaymentCreateRequest struct {
	OrderID       int64           `json:"order_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Method        string          `json:"method" validate:"required"`
	ExternalTxnID *string         `json:"external_txn_id"`
}

// PaymentSummary joins order and customer data for the list view.
type PaymentSummary struct {
	Payment
	CustomerID    int64           `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	OrderTotal    decimal.Decimal `json:"order_total"`
	OrderStatus   OrderStatus     `json:"order_status"`
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment, tx *sql.Tx) error
	GetByID(ctx context.Context, id int64) (Payment, error)
	List(ctx context.Context) ([]PaymentSummary, error)
	CountSuccessfulByOrderID(ctx context.Context, orderID int64, excludeID int64) (int64, error)
	Delete(ctx context.Context, id int64, tx *sql.Tx) error
}

type PaymentUsecase interface {
	Process(ctx context.Context, actor string, req PaymentCreateRequest) (*Payment, error)
	List(ctx context.Context) ([]PaymentSummary, error)
	Delete(ctx context.Context, id int64, actor string) error
}
