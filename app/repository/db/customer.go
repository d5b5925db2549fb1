package db

import (
	"context"
	"database/sql"
	"log/slog"

	"backoffice-service/app/domain"

	"github.com/shopspring/decimal"
)

type customerRepository struct {
	conn *sql.DB
}

func NewCustomerRepository(db *sql.DB) domain.CustomerRepository {
	return &customerRepository{db}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `INSERT INTO customers (first_name, last_name, email, password_hash)
	VALUES ($1, $2, $3, $4) RETURNING id, status, created_at, updated_at`

	err := r.conn.QueryRowContext(ctx, query, customer.FirstName, customer.LastName,
		customer.Email, customer.PasswordHash).
		Scan(&customer.ID, &customer.Status, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[customerRepository] Create", "queryRowContext", err)
		return err
	}

	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (domain.Customer, error) {
	query := `SELECT id, first_name, last_name, email, password_hash, status, created_at, updated_at
	FROM customers WHERE id = $1`

	var customer domain.Customer
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&customer.ID, &customer.FirstName,
		&customer.LastName, &customer.Email, &customer.PasswordHash, &customer.Status,
		&customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[customerRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return customer, domain.ErrNotFound
		}
		return customer, err
	}

	return customer, nil
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	query := `SELECT id, first_name, last_name, email, password_hash, status, created_at, updated_at
	FROM customers ORDER BY id`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[customerRepository] List", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.FirstName, &customer.LastName,
			&customer.Email, &customer.PasswordHash, &customer.Status,
			&customer.CreatedAt, &customer.UpdatedAt); err != nil {
			slog.ErrorContext(ctx, "[customerRepository] List", "scan", err)
			return nil, err
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[customerRepository] List", "rowError", err)
		return nil, err
	}

	return customers, nil
}

func (r *customerRepository) HasOrders(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM orders WHERE customer_id = $1)`

	var hasOrders bool
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&hasOrders)
	if err != nil {
		slog.ErrorContext(ctx, "[customerRepository] HasOrders", "queryRowContext", err)
		return false, err
	}

	return hasOrders, nil
}

func (r *customerRepository) CompletedOrderSpend(ctx context.Context, id int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(total), 0) FROM orders WHERE customer_id = $1 AND status = 'completed'`

	var spend decimal.Decimal
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&spend)
	if err != nil {
		slog.ErrorContext(ctx, "[customerRepository] CompletedOrderSpend", "queryRowContext", err)
		return decimal.Zero, err
	}

	return spend, nil
}

type addressRepository struct {
	conn *sql.DB
}

func NewAddressRepository(db *sql.DB) domain.AddressRepository {
	return &addressRepository{db}
}

func (r *addressRepository) Create(ctx context.Context, address *domain.Address) error {
	query := `INSERT INTO addresses (customer_id, line_1, city, postal_code, country)
	VALUES ($1, $2, $3, $4, $5) RETURNING id, status, created_at, updated_at`

	err := r.conn.QueryRowContext(ctx, query, address.CustomerID, address.Line1,
		address.City, address.PostalCode, address.Country).
		Scan(&address.ID, &address.Status, &address.CreatedAt, &address.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[addressRepository] Create", "queryRowContext", err)
		return err
	}

	return nil
}

func (r *addressRepository) GetByID(ctx context.Context, id int64) (domain.Address, error) {
	query := `SELECT id, customer_id, line_1, city, postal_code, country, status, created_at, updated_at
	FROM addresses WHERE id = $1`

	var address domain.Address
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&address.ID, &address.CustomerID,
		&address.Line1, &address.City, &address.PostalCode, &address.Country,
		&address.Status, &address.CreatedAt, &address.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[addressRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return address, domain.ErrNotFound
		}
		return address, err
	}

	return address, nil
}

func (r *addressRepository) ListByCustomerID(ctx context.Context, customerID int64) ([]domain.Address, error) {
	query := `SELECT id, customer_id, line_1, city, postal_code, country, status, created_at, updated_at
	FROM addresses WHERE customer_id = $1 ORDER BY id`

	rows, err := r.conn.QueryContext(ctx, query, customerID)
	if err != nil {
		slog.ErrorContext(ctx, "[addressRepository] ListByCustomerID", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		var address domain.Address
		if err := rows.Scan(&address.ID, &address.CustomerID, &address.Line1,
			&address.City, &address.PostalCode, &address.Country,
			&address.Status, &address.CreatedAt, &address.UpdatedAt); err != nil {
			slog.ErrorContext(ctx, "[addressRepository] ListByCustomerID", "scan", err)
			return nil, err
		}
		addresses = append(addresses, address)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[addressRepository] ListByCustomerID", "rowError", err)
		return nil, err
	}

	return addresses, nil
}
