package db

import (
	"context"
	"database/sql"
	"log/slog"

	"backoffice-service/app/domain"

	"github.com/shopspring/decimal"
)

type skuRepository struct {
	conn *sql.DB
}

func NewSKURepository(db *sql.DB) domain.SKURepository {
	return &skuRepository{db}
}

func (r *skuRepository) Create(ctx context.Context, sku *domain.SKU) error {
	query := `INSERT INTO skus (product_id, code, unit_price, on_hand)
	VALUES ($1, $2, $3, $4) RETURNING id, status, created_at, updated_at`

	err := r.conn.QueryRowContext(ctx, query, sku.ProductID, sku.Code, sku.UnitPrice, sku.OnHand).
		Scan(&sku.ID, &sku.Status, &sku.CreatedAt, &sku.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[skuRepository] Create", "queryRowContext", err)
		return err
	}

	return nil
}

const skuColumns = `id, product_id, code, unit_price, on_hand, reserved, status, created_at, updated_at`

func scanSKU(row interface{ Scan(...any) error }, sku *domain.SKU) error {
	return row.Scan(&sku.ID, &sku.ProductID, &sku.Code, &sku.UnitPrice,
		&sku.OnHand, &sku.Reserved, &sku.Status, &sku.CreatedAt, &sku.UpdatedAt)
}

func (r *skuRepository) GetByID(ctx context.Context, id int64) (domain.SKU, error) {
	query := `SELECT ` + skuColumns + ` FROM skus WHERE id = $1`

	var sku domain.SKU
	err := scanSKU(r.conn.QueryRowContext(ctx, query, id), &sku)
	if err != nil {
		slog.ErrorContext(ctx, "[skuRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return sku, domain.ErrNotFound
		}
		return sku, err
	}

	return sku, nil
}

func (r *skuRepository) GetByProductID(ctx context.Context, productID int64) ([]domain.SKU, error) {
	query := `SELECT ` + skuColumns + ` FROM skus WHERE product_id = $1`

	rows, err := r.conn.QueryContext(ctx, query, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[skuRepository] GetByProductID", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var skus []domain.SKU
	for rows.Next() {
		var sku domain.SKU
		if err := scanSKU(rows, &sku); err != nil {
			slog.ErrorContext(ctx, "[skuRepository] GetByProductID", "scan", err)
			return nil, err
		}
		skus = append(skus, sku)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[skuRepository] GetByProductID", "rowError", err)
		return nil, err
	}

	return skus, nil
}

func (r *skuRepository) List(ctx context.Context) ([]domain.SKU, error) {
	query := `SELECT ` + skuColumns + ` FROM skus ORDER BY id`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[skuRepository] List", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var skus []domain.SKU
	for rows.Next() {
		var sku domain.SKU
		if err := scanSKU(rows, &sku); err != nil {
			slog.ErrorContext(ctx, "[skuRepository] List", "scan", err)
			return nil, err
		}
		skus = append(skus, sku)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[skuRepository] List", "rowError", err)
		return nil, err
	}

	return skus, nil
}

func (r *skuRepository) LockForUpdate(ctx context.Context, id int64, tx *sql.Tx) (domain.SKU, error) {
	query := `SELECT ` + skuColumns + ` FROM skus WHERE id = $1 FOR UPDATE`

	var sku domain.SKU
	err := scanSKU(tx.QueryRowContext(ctx, query, id), &sku)
	if err != nil {
		slog.ErrorContext(ctx, "[skuRepository] LockForUpdate", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return sku, domain.ErrNotFound
		}
		return sku, err
	}

	return sku, nil
}

func (r *skuRepository) UpdateQuantities(ctx context.Context, id, onHand, reserved int64, tx *sql.Tx) error {
	query := `UPDATE skus SET on_hand = $1, reserved = $2, updated_at = now() WHERE id = $3`
	_, err := tx.ExecContext(ctx, query, onHand, reserved, id)
	if err != nil {
		slog.ErrorContext(ctx, "[skuRepository] UpdateQuantities", "execContext", err)
		return err
	}

	return nil
}

func (r *skuRepository) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal, tx *sql.Tx) error {
	query := `UPDATE skus SET unit_price = $1, updated_at = now() WHERE id = $2`
	_, err := tx.ExecContext(ctx, query, price, id)
	if err != nil {
		slog.ErrorContext(ctx, "[skuRepository] UpdatePrice", "execContext", err)
		return err
	}

	return nil
}

func (r *skuRepository) ListByCategoryForUpdate(ctx context.Context, categoryID int64, tx *sql.Tx) ([]domain.SKU, error) {
	query := `SELECT s.id, s.product_id, s.code, s.unit_price, s.on_hand, s.reserved, s.status, s.created_at, s.updated_at
	FROM skus s
	JOIN products p ON s.product_id = p.id
	WHERE p.category_id = $1
	ORDER BY s.id
	FOR UPDATE OF s`

	rows, err := tx.QueryContext(ctx, query, categoryID)
	if err != nil {
		slog.ErrorContext(ctx, "[skuRepository] ListByCategoryForUpdate", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var skus []domain.SKU
	for rows.Next() {
		var sku domain.SKU
		if err := scanSKU(rows, &sku); err != nil {
			slog.ErrorContext(ctx, "[skuRepository] ListByCategoryForUpdate", "scan", err)
			return nil, err
		}
		skus = append(skus, sku)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[skuRepository] ListByCategoryForUpdate", "rowError", err)
		return nil, err
	}

	return skus, nil
}

func (r *skuRepository) LowStock(ctx context.Context, threshold int64, limit int64) ([]domain.StockAlert, error) {
	query := `SELECT s.id, s.product_id, s.code, p.name, s.on_hand - s.reserved AS available, s.reserved
	FROM skus s
	JOIN products p ON s.product_id = p.id
	WHERE s.status = 'active' AND s.on_hand - s.reserved <= $1
	ORDER BY available ASC
	LIMIT $2`

	rows, err := r.conn.QueryContext(ctx, query, threshold, limit)
	if err != nil {
		slog.ErrorContext(ctx, "[skuRepository] LowStock", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.StockAlert
	for rows.Next() {
		var a domain.StockAlert
		if err := rows.Scan(&a.SKUID, &a.ProductID, &a.Code, &a.ProductName, &a.Available, &a.Reserved); err != nil {
			slog.ErrorContext(ctx, "[skuRepository] LowStock", "scan", err)
			return nil, err
		}
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[skuRepository] LowStock", "rowError", err)
		return nil, err
	}

	return alerts, nil
}

func (r *skuRepository) ReferencedByOrderLines(ctx context.Context, productID int64) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM order_lines ol
		JOIN skus s ON ol.sku_id = s.id
		WHERE s.product_id = $1
	)`

	var referenced bool
	err := r.conn.QueryRowContext(ctx, query, productID).Scan(&referenced)
	if err != nil {
		slog.ErrorContext(ctx, "[skuRepository] ReferencedByOrderLines", "queryRowContext", err)
		return false, err
	}

	return referenced, nil
}

func (r *skuRepository) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "[skuRepository] WithTransaction", "beginTx", err)
		return err
	}

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			slog.ErrorContext(ctx, "[skuRepository] WithTransaction", "rollback", rollbackErr)
			return err
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		slog.ErrorContext(ctx, "[skuRepository] WithTransaction", "commit", err)
		return err
	}

	return nil
}
