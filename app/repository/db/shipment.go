package db

import (
	"context"
	"database/sql"
	"log/slog"

	"backoffice-service/app/domain"
)

type shipmentRepository struct {
	conn *sql.DB
}

func NewShipmentRepository(db *sql.DB) domain.ShipmentRepository {
	return &shipmentRepository{db}
}

func (r *shipmentRepository) Create(ctx context.Context, shipment *domain.Shipment, tx *sql.Tx) error {
	query := `INSERT INTO shipments (order_id, carrier, tracking_number)
	VALUES ($1, $2, $3) RETURNING id, status, created_at, updated_at`

	err := tx.QueryRowContext(ctx, query, shipment.OrderID, shipment.Carrier, shipment.TrackingNumber).
		Scan(&shipment.ID, &shipment.Status, &shipment.CreatedAt, &shipment.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[shipmentRepository] Create", "queryRowContext", err)
		return err
	}

	return nil
}

func (r *shipmentRepository) LockByID(ctx context.Context, id int64, tx *sql.Tx) (domain.Shipment, error) {
	query := `SELECT id, order_id, shipped_at, carrier, tracking_number, status, created_at, updated_at
	FROM shipments WHERE id = $1 FOR UPDATE`

	var shipment domain.Shipment
	err := tx.QueryRowContext(ctx, query, id).Scan(&shipment.ID, &shipment.OrderID,
		&shipment.ShippedAt, &shipment.Carrier, &shipment.TrackingNumber,
		&shipment.Status, &shipment.CreatedAt, &shipment.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[shipmentRepository] LockByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return shipment, domain.ErrNotFound
		}
		return shipment, err
	}

	return shipment, nil
}

func (r *shipmentRepository) Update(ctx context.Context, shipment *domain.Shipment, tx *sql.Tx) error {
	query := `UPDATE shipments SET shipped_at = $1, carrier = $2, tracking_number = $3, status = $4, updated_at = now()
	WHERE id = $5`

	_, err := tx.ExecContext(ctx, query, shipment.ShippedAt, shipment.Carrier,
		shipment.TrackingNumber, shipment.Status, shipment.ID)
	if err != nil {
		slog.ErrorContext(ctx, "[shipmentRepository] Update", "execContext", err)
		return err
	}

	return nil
}

func (r *shipmentRepository) List(ctx context.Context) ([]domain.ShipmentSummary, error) {
	query := `SELECT e.id, e.order_id, e.shipped_at, e.carrier, e.tracking_number, e.status, e.created_at, e.updated_at,
		o.customer_id, c.first_name || ' ' || c.last_name
	FROM shipments e
	INNER JOIN orders o ON e.order_id = o.id
	INNER JOIN customers c ON o.customer_id = c.id
	ORDER BY e.id DESC`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[shipmentRepository] List", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var shipments []domain.ShipmentSummary
	for rows.Next() {
		var s domain.ShipmentSummary
		if err := rows.Scan(&s.ID, &s.OrderID, &s.ShippedAt, &s.Carrier, &s.TrackingNumber,
			&s.Status, &s.CreatedAt, &s.UpdatedAt, &s.CustomerID, &s.CustomerName); err != nil {
			slog.ErrorContext(ctx, "[shipmentRepository] List", "scan", err)
			return nil, err
		}
		shipments = append(shipments, s)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[shipmentRepository] List", "rowError", err)
		return nil, err
	}

	return shipments, nil
}
