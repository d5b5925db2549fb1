package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"backoffice-service/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func NewPostgres(cfg config.DbConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DbName,
		cfg.SSLMode,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the relational schema on startup when it does not
// exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			category_id BIGINT NOT NULL REFERENCES categories(id),
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL CHECK (status IN ('active','inactive','discontinued')) DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS skus (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id),
			code TEXT NOT NULL UNIQUE,
			unit_price NUMERIC(18,2) NOT NULL CHECK (unit_price >= 0),
			on_hand BIGINT NOT NULL DEFAULT 0 CHECK (on_hand >= 0),
			reserved BIGINT NOT NULL DEFAULT 0 CHECK (reserved >= 0 AND reserved <= on_hand),
			status TEXT NOT NULL CHECK (status IN ('active','inactive')) DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id BIGSERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('active','inactive','suspended')) DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS addresses (
			id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			line_1 TEXT NOT NULL,
			city TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			country TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS coupons (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			discount_type TEXT NOT NULL CHECK (discount_type IN ('percentage','fixed')),
			discount_value NUMERIC(18,2) NOT NULL CHECK (discount_value >= 0),
			expires_at TIMESTAMPTZ,
			remaining_uses BIGINT,
			status TEXT NOT NULL CHECK (status IN ('active','inactive','expired')) DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			shipping_address_id BIGINT NOT NULL REFERENCES addresses(id),
			coupon_id BIGINT REFERENCES coupons(id),
			placed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			status TEXT NOT NULL CHECK (status IN ('pending','paid','shipped','cancelled','completed')) DEFAULT 'pending',
			subtotal NUMERIC(18,2) NOT NULL,
			discount_applied NUMERIC(18,2) NOT NULL DEFAULT 0,
			taxes NUMERIC(18,2) NOT NULL DEFAULT 0,
			total NUMERIC(18,2) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_lines (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			sku_id BIGINT NOT NULL REFERENCES skus(id),
			quantity BIGINT NOT NULL CHECK (quantity > 0),
			unit_price NUMERIC(18,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id),
			paid_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			amount NUMERIC(18,2) NOT NULL,
			method TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('successful','failed','pending','refunded')),
			external_txn_id TEXT,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS shipments (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id),
			shipped_at TIMESTAMPTZ,
			carrier TEXT,
			tracking_number TEXT,
			status TEXT NOT NULL CHECK (status IN ('preparing','in_transit','delivered','failed')) DEFAULT 'preparing',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS returns (
			id BIGSERIAL PRIMARY KEY,
			order_line_id BIGINT NOT NULL REFERENCES order_lines(id),
			reason TEXT NOT NULL DEFAULT '',
			quantity BIGINT NOT NULL CHECK (quantity > 0),
			requested_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			status TEXT NOT NULL CHECK (status IN ('requested','approved','received','refunded','rejected')) DEFAULT 'requested',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id BIGSERIAL PRIMARY KEY,
			entity_table TEXT NOT NULL,
			entity_id BIGINT NOT NULL,
			operation TEXT NOT NULL CHECK (operation IN ('insert','update','delete')),
			actor TEXT NOT NULL,
			changes JSONB NOT NULL DEFAULT '{}',
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_history (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			previous_status TEXT,
			new_status TEXT NOT NULL,
			actor TEXT NOT NULL,
			comment TEXT,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines (order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_sku ON order_lines (sku_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log (entity_table, entity_id, recorded_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_history_order ON order_history (order_id, recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments (order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_returns_line ON returns (order_line_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
