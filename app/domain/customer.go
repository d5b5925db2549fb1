package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusInactive  CustomerStatus = "inactive"
	CustomerStatusSuspended CustomerStatus = "suspended"
)

type Customer struct {
	ID           int64          `json:"id"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Status       CustomerStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type Address struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Line1      string    `json:"line_1"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CustomerCreateRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type AddressCreateRequest struct {
	CustomerID int64  `json:"customer_id" validate:"required"`
	Line1      string `json:"line_1" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

type LoyaltySummary struct {
	CustomerID int64  `json:"customer_id"`
	FullName   string `json:"full_name"`
	Points     int64  `json:"loyalty_points"`
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, id int64) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	HasOrders(ctx context.Context, id int64) (bool, error)
	CompletedOrderSpend(ctx context.Context, id int64) (decimal.Decimal, error)
}

type AddressRepository interface {
	Create(ctx context.Context, address *Address) error
	GetByID(ctx context.Context, id int64) (Address, error)
	ListByCustomerID(ctx context.Context, customerID int64) ([]Address, error)
}

type CustomerUsecase interface {
	Create(ctx context.Context, req CustomerCreateRequest) (*Customer, error)
	GetByID(ctx context.Context, id int64) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	HasOrders(ctx context.Context, id int64) (bool, error)
	// LoyaltyPoints awards one point per ten currency units spent on
	// completed orders.
	LoyaltyPoints(ctx context.Context, id int64) (LoyaltySummary, error)
	CreateAddress(ctx context.Context, req AddressCreateRequest) (*Address, error)
	ListAddresses(ctx context.Context, customerID int64) ([]Address, error)
}
