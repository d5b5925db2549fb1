package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"backoffice-service/app/domain"
)

type orderRepository struct {
	conn *sql.DB
}

func NewOrderRepository(db *sql.DB) domain.OrderRepository {
	return &orderRepository{db}
}

const orderColumns = `id, customer_id, shipping_address_id, coupon_id, placed_at, status, subtotal, discount_applied, taxes, total, updated_at`

func scanOrder(row interface{ Scan(...any) error }, o *domain.Order) error {
	return row.Scan(&o.ID, &o.CustomerID, &o.ShippingAddress, &o.CouponID, &o.PlacedAt,
		&o.Status, &o.Subtotal, &o.DiscountApplied, &o.Taxes, &o.Total, &o.UpdatedAt)
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order, tx *sql.Tx) error {
	query := `INSERT INTO orders (customer_id, shipping_address_id, coupon_id, status, subtotal, discount_applied, taxes, total)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, placed_at, updated_at`

	err := tx.QueryRowContext(ctx, query, order.CustomerID, order.ShippingAddress,
		order.CouponID, order.Status, order.Subtotal, order.DiscountApplied,
		order.Taxes, order.Total).
		Scan(&order.ID, &order.PlacedAt, &order.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] Create", "queryRowContext", err)
		return err
	}

	return nil
}

func (r *orderRepository) CreateLines(ctx context.Context, lines []domain.OrderLine, tx *sql.Tx) error {
	valuePlaceholders := []string{}
	valueArgs := []interface{}{}
	for i, line := range lines {
		valuePlaceholders = append(valuePlaceholders,
			fmt.Sprintf("($%d, $%d, $%d, $%d)", i*4+1, i*4+2, i*4+3, i*4+4))
		valueArgs = append(valueArgs, line.OrderID, line.SKUID, line.Quantity, line.UnitPrice)
	}

	query := fmt.Sprintf(`INSERT INTO order_lines (order_id, sku_id, quantity, unit_price) VALUES %s`,
		strings.Join(valuePlaceholders, ", "))

	res, err := tx.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] CreateLines", "execContext", err)
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] CreateLines", "rowsAffected", err)
		return err
	}

	if rowsAffected == 0 {
		slog.ErrorContext(ctx, "[orderRepository] CreateLines", "noRowsAffected", "No rows were inserted")
		return fmt.Errorf("no rows were inserted")
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order domain.Order
	err := scanOrder(r.conn.QueryRowContext(ctx, query, id), &order)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return order, domain.ErrNotFound
		}
		return order, err
	}

	return order, nil
}

func (r *orderRepository) LockByID(ctx context.Context, id int64, tx *sql.Tx) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	var order domain.Order
	err := scanOrder(tx.QueryRowContext(ctx, query, id), &order)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] LockByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return order, domain.ErrNotFound
		}
		return order, err
	}

	return order, nil
}

func (r *orderRepository) GetLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	query := `SELECT id, order_id, sku_id, quantity, unit_price FROM order_lines WHERE order_id = $1 ORDER BY id`

	rows, err := r.conn.QueryContext(ctx, query, orderID)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] GetLines", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.SKUID, &line.Quantity, &line.UnitPrice); err != nil {
			slog.ErrorContext(ctx, "[orderRepository] GetLines", "scan", err)
			return nil, err
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[orderRepository] GetLines", "rowError", err)
		return nil, err
	}

	return lines, nil
}

func (r *orderRepository) GetLineByID(ctx context.Context, lineID int64) (domain.OrderLine, error) {
	query := `SELECT id, order_id, sku_id, quantity, unit_price FROM order_lines WHERE id = $1`

	var line domain.OrderLine
	err := r.conn.QueryRowContext(ctx, query, lineID).
		Scan(&line.ID, &line.OrderID, &line.SKUID, &line.Quantity, &line.UnitPrice)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] GetLineByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return line, domain.ErrNotFound
		}
		return line, err
	}

	return line, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, tx *sql.Tx) error {
	query := `UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`
	_, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] UpdateStatus", "execContext", err)
		return err
	}

	return nil
}

func (r *orderRepository) UpdateTotals(ctx context.Context, id int64, couponID int64, totals domain.OrderTotals, tx *sql.Tx) error {
	query := `UPDATE orders SET coupon_id = $1, subtotal = $2, discount_applied = $3, taxes = $4, total = $5, updated_at = now()
	WHERE id = $6`
	_, err := tx.ExecContext(ctx, query, couponID, totals.Subtotal, totals.Discount, totals.Taxes, totals.Total, id)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] UpdateTotals", "execContext", err)
		return err
	}

	return nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.OrderSummary, error) {
	query := `SELECT o.id, o.customer_id, o.shipping_address_id, o.coupon_id, o.placed_at, o.status,
		o.subtotal, o.discount_applied, o.taxes, o.total, o.updated_at,
		c.first_name || ' ' || c.last_name, c.email, a.city, a.country, cu.code
	FROM orders o
	INNER JOIN customers c ON o.customer_id = c.id
	INNER JOIN addresses a ON o.shipping_address_id = a.id
	LEFT JOIN coupons cu ON o.coupon_id = cu.id
	ORDER BY o.id DESC`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] List", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var orders []domain.OrderSummary
	for rows.Next() {
		var o domain.OrderSummary
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.ShippingAddress, &o.CouponID, &o.PlacedAt,
			&o.Status, &o.Subtotal, &o.DiscountApplied, &o.Taxes, &o.Total, &o.UpdatedAt,
			&o.CustomerName, &o.CustomerEmail, &o.City, &o.Country, &o.CouponCode); err != nil {
			slog.ErrorContext(ctx, "[orderRepository] List", "scan", err)
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[orderRepository] List", "rowError", err)
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) CountPayments(ctx context.Context, orderID int64, tx *sql.Tx) (int64, error) {
	query := `SELECT COUNT(*) FROM payments WHERE order_id = $1`

	var count int64
	err := tx.QueryRowContext(ctx, query, orderID).Scan(&count)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] CountPayments", "queryRowContext", err)
		return 0, err
	}

	return count, nil
}

func (r *orderRepository) CountShipments(ctx context.Context, orderID int64, tx *sql.Tx) (int64, error) {
	query := `SELECT COUNT(*) FROM shipments WHERE order_id = $1`

	var count int64
	err := tx.QueryRowContext(ctx, query, orderID).Scan(&count)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] CountShipments", "queryRowContext", err)
		return 0, err
	}

	return count, nil
}

func (r *orderRepository) Delete(ctx context.Context, id int64, tx *sql.Tx) error {
	query := `DELETE FROM orders WHERE id = $1`
	_, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] Delete", "execContext", err)
		return err
	}

	return nil
}

func (r *orderRepository) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "[orderRepository] WithTransaction", "beginTx", err)
		return err
	}

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			slog.ErrorContext(ctx, "[orderRepository] WithTransaction", "rollback", rollbackErr)
			return err
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		slog.ErrorContext(ctx, "[orderRepository] WithTransaction", "commit", err)
		return err
	}

	return nil
}
