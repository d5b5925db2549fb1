package db

import (
	"context"
	"database/sql"
	"log/slog"

	"backoffice-service/app/domain"
)

type couponRepository struct {
	conn *sql.DB
}

func NewCouponRepository(db *sql.DB) domain.CouponRepository {
	return &couponRepository{db}
}

const couponColumns = `id, code, discount_type, discount_value, expires_at, remaining_uses, status, created_at, updated_at`

func scanCoupon(row interface{ Scan(...any) error }, c *domain.Coupon) error {
	return row.Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue,
		&c.ExpiresAt, &c.RemainingUses, &c.Status, &c.CreatedAt, &c.UpdatedAt)
}

func (r *couponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	query := `INSERT INTO coupons (code, discount_type, discount_value, expires_at, remaining_uses)
	VALUES ($1, $2, $3, $4, $5) RETURNING id, status, created_at, updated_at`

	err := r.conn.QueryRowContext(ctx, query, coupon.Code, coupon.DiscountType,
		coupon.DiscountValue, coupon.ExpiresAt, coupon.RemainingUses).
		Scan(&coupon.ID, &coupon.Status, &coupon.CreatedAt, &coupon.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[couponRepository] Create", "queryRowContext", err)
		return err
	}

	return nil
}

func (r *couponRepository) GetByID(ctx context.Context, id int64) (domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	var coupon domain.Coupon
	err := scanCoupon(r.conn.QueryRowContext(ctx, query, id), &coupon)
	if err != nil {
		slog.ErrorContext(ctx, "[couponRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return coupon, domain.ErrNotFound
		}
		return coupon, err
	}

	return coupon, nil
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	var coupon domain.Coupon
	err := scanCoupon(r.conn.QueryRowContext(ctx, query, code), &coupon)
	if err != nil {
		slog.ErrorContext(ctx, "[couponRepository] GetByCode", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return coupon, domain.ErrNotFound
		}
		return coupon, err
	}

	return coupon, nil
}

func (r *couponRepository) LockByCode(ctx context.Context, code string, tx *sql.Tx) (domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1 FOR UPDATE`

	var coupon domain.Coupon
	err := scanCoupon(tx.QueryRowContext(ctx, query, code), &coupon)
	if err != nil {
		slog.ErrorContext(ctx, "[couponRepository] LockByCode", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return coupon, domain.ErrNotFound
		}
		return coupon, err
	}

	return coupon, nil
}

func (r *couponRepository) DecrementRemainingUses(ctx context.Context, id int64, tx *sql.Tx) error {
	query := `UPDATE coupons SET remaining_uses = remaining_uses - 1, updated_at = now()
	WHERE id = $1 AND remaining_uses IS NOT NULL AND remaining_uses > 0`

	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		slog.ErrorContext(ctx, "[couponRepository] DecrementRemainingUses", "execContext", err)
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		slog.ErrorContext(ctx, "[couponRepository] DecrementRemainingUses", "rowsAffected", err)
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrCouponInvalid
	}

	return nil
}

func (r *couponRepository) List(ctx context.Context) ([]domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY id`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[couponRepository] List", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		var coupon domain.Coupon
		if err := scanCoupon(rows, &coupon); err != nil {
			slog.ErrorContext(ctx, "[couponRepository] List", "scan", err)
			return nil, err
		}
		coupons = append(coupons, coupon)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[couponRepository] List", "rowError", err)
		return nil, err
	}

	return coupons, nil
}
