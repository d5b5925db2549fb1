package db

import (
	"context"
	"database/sql"
	"log/slog"

	"backoffice-service/app/domain"
)

type paymentRepository struct {
	conn *sql.DB
}

func NewPaymentRepository(db *sql.DB) domain.PaymentRepository {
	return &paymentRepository{db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment, tx *sql.Tx) error {
	query := `INSERT INTO payments (order_id, amount, method, status, external_txn_id)
	VALUES ($1, $2, $3, $4, $5) RETURNING id, paid_at, updated_at`

	err := tx.QueryRowContext(ctx, query, payment.OrderID, payment.Amount,
		payment.Method, payment.Status, payment.ExternalTxnID).
		Scan(&payment.ID, &payment.PaidAt, &payment.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[paymentRepository] Create", "queryRowContext", err)
		return err
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (domain.Payment, error) {
	query := `SELECT id, order_id, paid_at, amount, method, status, external_txn_id, updated_at
	FROM payments WHERE id = $1`

	var payment domain.Payment
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&payment.ID, &payment.OrderID,
		&payment.PaidAt, &payment.Amount, &payment.Method, &payment.Status,
		&payment.ExternalTxnID, &payment.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[paymentRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return payment, domain.ErrNotFound
		}
		return payment, err
	}

	return payment, nil
}

func (r *paymentRepository) List(ctx context.Context) ([]domain.PaymentSummary, error) {
	query := `SELECT pa.id, pa.order_id, pa.paid_at, pa.amount, pa.method, pa.status, pa.external_txn_id, pa.updated_at,
		o.customer_id, c.first_name || ' ' || c.last_name, c.email, o.total, o.status
	FROM payments pa
	INNER JOIN orders o ON pa.order_id = o.id
	INNER JOIN customers c ON o.customer_id = c.id
	ORDER BY pa.id DESC`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[paymentRepository] List", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var payments []domain.PaymentSummary
	for rows.Next() {
		var p domain.PaymentSummary
		if err := rows.Scan(&p.ID, &p.OrderID, &p.PaidAt, &p.Amount, &p.Method, &p.Status,
			&p.ExternalTxnID, &p.UpdatedAt, &p.CustomerID, &p.CustomerName, &p.CustomerEmail,
			&p.OrderTotal, &p.OrderStatus); err != nil {
			slog.ErrorContext(ctx, "[paymentRepository] List", "scan", err)
			return nil, err
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[paymentRepository] List", "rowError", err)
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) CountSuccessfulByOrderID(ctx context.Context, orderID int64, excludeID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM payments WHERE order_id = $1 AND status = 'successful' AND id <> $2`

	var count int64
	err := r.conn.QueryRowContext(ctx, query, orderID, excludeID).Scan(&count)
	if err != nil {
		slog.ErrorContext(ctx, "[paymentRepository] CountSuccessfulByOrderID", "queryRowContext", err)
		return 0, err
	}

	return count, nil
}

func (r *paymentRepository) Delete(ctx context.Context, id int64, tx *sql.Tx) error {
	query := `DELETE FROM payments WHERE id = $1`
	_, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		slog.ErrorContext(ctx, "[paymentRepository] Delete", "execContext", err)
		return err
	}

	return nil
}
