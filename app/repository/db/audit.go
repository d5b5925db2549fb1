package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"backoffice-service/app/domain"
)

type auditRepository struct {
	conn *sql.DB
}

func NewAuditRepository(db *sql.DB) domain.AuditRepository {
	return &auditRepository{db}
}

func (r *auditRepository) Insert(ctx context.Context, rec *domain.AuditRecord, tx *sql.Tx) error {
	changes, err := json.Marshal(rec.Changes)
	if err != nil {
		slog.ErrorContext(ctx, "[auditRepository] Insert", "marshalChanges", err)
		return err
	}

	query := `INSERT INTO audit_log (entity_table, entity_id, operation, actor, changes)
	VALUES ($1, $2, $3, $4, $5) RETURNING id, recorded_at`

	err = tx.QueryRowContext(ctx, query, rec.EntityTable, rec.EntityID, rec.Operation, rec.Actor, changes).
		Scan(&rec.ID, &rec.RecordedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[auditRepository] Insert", "queryRowContext", err)
		return err
	}

	return nil
}

func scanAuditRows(ctx context.Context, rows *sql.Rows) ([]domain.AuditRecord, error) {
	var records []domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		var changes []byte
		if err := rows.Scan(&rec.ID, &rec.EntityTable, &rec.EntityID, &rec.Operation,
			&rec.Actor, &changes, &rec.RecordedAt); err != nil {
			slog.ErrorContext(ctx, "[auditRepository] scan", "scan", err)
			return nil, err
		}
		if err := json.Unmarshal(changes, &rec.Changes); err != nil {
			slog.ErrorContext(ctx, "[auditRepository] scan", "unmarshalChanges", err)
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[auditRepository] scan", "rowError", err)
		return nil, err
	}

	return records, nil
}

func (r *auditRepository) History(ctx context.Context, entityTable string, entityID int64, limit int64) ([]domain.AuditRecord, error) {
	query := `SELECT id, entity_table, entity_id, operation, actor, changes, recorded_at
	FROM audit_log
	WHERE entity_table = $1 AND entity_id = $2
	ORDER BY recorded_at DESC, id DESC
	LIMIT $3`

	rows, err := r.conn.QueryContext(ctx, query, entityTable, entityID, limit)
	if err != nil {
		slog.ErrorContext(ctx, "[auditRepository] History", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	return scanAuditRows(ctx, rows)
}

func (r *auditRepository) Search(ctx context.Context, req domain.AuditSearchRequest) ([]domain.AuditRecord, error) {
	query := `SELECT id, entity_table, entity_id, operation, actor, changes, recorded_at FROM audit_log WHERE 1=1`
	args := []any{}
	placeholder := 1

	if req.EntityTable != "" {
		query += fmt.Sprintf(" AND entity_table = $%d", placeholder)
		args = append(args, req.EntityTable)
		placeholder++
	}
	if req.Operation != "" {
		query += fmt.Sprintf(" AND operation = $%d", placeholder)
		args = append(args, req.Operation)
		placeholder++
	}
	if req.Actor != "" {
		query += fmt.Sprintf(" AND actor = $%d", placeholder)
		args = append(args, req.Actor)
		placeholder++
	}

	query += fmt.Sprintf(" ORDER BY recorded_at DESC, id DESC LIMIT $%d", placeholder)
	args = append(args, req.Limit)

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "[auditRepository] Search", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	return scanAuditRows(ctx, rows)
}

type orderHistoryRepository struct {
	conn *sql.DB
}

func NewOrderHistoryRepository(db *sql.DB) domain.OrderHistoryRepository {
	return &orderHistoryRepository{db}
}

func (r *orderHistoryRepository) Insert(ctx context.Context, entry *domain.OrderHistoryEntry, tx *sql.Tx) error {
	query := `INSERT INTO order_history (order_id, previous_status, new_status, actor, comment)
	VALUES ($1, $2, $3, $4, $5) RETURNING id, recorded_at`

	err := tx.QueryRowContext(ctx, query, entry.OrderID, entry.PreviousStatus,
		entry.NewStatus, entry.Actor, entry.Comment).
		Scan(&entry.ID, &entry.RecordedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[orderHistoryRepository] Insert", "queryRowContext", err)
		return err
	}

	return nil
}

func (r *orderHistoryRepository) ListByOrderID(ctx context.Context, orderID int64) ([]domain.OrderHistoryEntry, error) {
	query := `SELECT id, order_id, previous_status, new_status, actor, comment, recorded_at
	FROM order_history WHERE order_id = $1 ORDER BY recorded_at, id`

	rows, err := r.conn.QueryContext(ctx, query, orderID)
	if err != nil {
		slog.ErrorContext(ctx, "[orderHistoryRepository] ListByOrderID", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var entries []domain.OrderHistoryEntry
	for rows.Next() {
		var entry domain.OrderHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.PreviousStatus,
			&entry.NewStatus, &entry.Actor, &entry.Comment, &entry.RecordedAt); err != nil {
			slog.ErrorContext(ctx, "[orderHistoryRepository] ListByOrderID", "scan", err)
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[orderHistoryRepository] ListByOrderID", "rowError", err)
		return nil, err
	}

	return entries, nil
}
