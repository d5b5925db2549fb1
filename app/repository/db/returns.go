package db

import (
	"context"
	"database/sql"
	"log/slog"

	"backoffice-service/app/domain"
)

type returnRepository struct {
	conn *sql.DB
}

func NewReturnRepository(db *sql.DB) domain.ReturnRepository {
	return &returnRepository{db}
}

func (r *returnRepository) Create(ctx context.Context, ret *domain.Return, tx *sql.Tx) error {
	query := `INSERT INTO returns (order_line_id, reason, quantity)
	VALUES ($1, $2, $3) RETURNING id, requested_at, status, updated_at`

	err := tx.QueryRowContext(ctx, query, ret.OrderLineID, ret.Reason, ret.Quantity).
		Scan(&ret.ID, &ret.RequestedAt, &ret.Status, &ret.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[returnRepository] Create", "queryRowContext", err)
		return err
	}

	return nil
}

func (r *returnRepository) LockByID(ctx context.Context, id int64, tx *sql.Tx) (domain.Return, error) {
	query := `SELECT id, order_line_id, reason, quantity, requested_at, status, updated_at
	FROM returns WHERE id = $1 FOR UPDATE`

	var ret domain.Return
	err := tx.QueryRowContext(ctx, query, id).Scan(&ret.ID, &ret.OrderLineID,
		&ret.Reason, &ret.Quantity, &ret.RequestedAt, &ret.Status, &ret.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[returnRepository] LockByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return ret, domain.ErrNotFound
		}
		return ret, err
	}

	return ret, nil
}

func (r *returnRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReturnStatus, tx *sql.Tx) error {
	query := `UPDATE returns SET status = $1, updated_at = now() WHERE id = $2`
	_, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		slog.ErrorContext(ctx, "[returnRepository] UpdateStatus", "execContext", err)
		return err
	}

	return nil
}

func (r *returnRepository) List(ctx context.Context) ([]domain.ReturnSummary, error) {
	query := `SELECT d.id, d.order_line_id, d.reason, d.quantity, d.requested_at, d.status, d.updated_at,
		ol.order_id, ol.quantity, ol.unit_price,
		o.customer_id, c.first_name || ' ' || c.last_name, c.email,
		p.name, s.code
	FROM returns d
	INNER JOIN order_lines ol ON d.order_line_id = ol.id
	INNER JOIN orders o ON ol.order_id = o.id
	INNER JOIN customers c ON o.customer_id = c.id
	INNER JOIN skus s ON ol.sku_id = s.id
	INNER JOIN products p ON s.product_id = p.id
	ORDER BY d.id DESC`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[returnRepository] List", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var returns []domain.ReturnSummary
	for rows.Next() {
		var ret domain.ReturnSummary
		if err := rows.Scan(&ret.ID, &ret.OrderLineID, &ret.Reason, &ret.Quantity,
			&ret.RequestedAt, &ret.Status, &ret.UpdatedAt,
			&ret.OrderID, &ret.OriginalQuantity, &ret.UnitPrice,
			&ret.CustomerID, &ret.CustomerName, &ret.CustomerEmail,
			&ret.ProductName, &ret.SKUCode); err != nil {
			slog.ErrorContext(ctx, "[returnRepository] List", "scan", err)
			return nil, err
		}
		returns = append(returns, ret)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[returnRepository] List", "rowError", err)
		return nil, err
	}

	return returns, nil
}

func (r *returnRepository) ReturnedQuantity(ctx context.Context, orderLineID int64, excludeID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM returns
	WHERE order_line_id = $1 AND status <> 'rejected' AND id <> $2`

	var total int64
	err := r.conn.QueryRowContext(ctx, query, orderLineID, excludeID).Scan(&total)
	if err != nil {
		slog.ErrorContext(ctx, "[returnRepository] ReturnedQuantity", "queryRowContext", err)
		return 0, err
	}

	return total, nil
}
