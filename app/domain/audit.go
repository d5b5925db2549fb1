package domain

import (
	"context"
	"database/sql"
	"time"
)

type AuditOperation string

const (
	AuditOperationInsert AuditOperation = "insert"
	AuditOperationUpdate AuditOperation = "update"
	AuditOperationDelete AuditOperation = "delete"
)

// FieldChange is one before/after pair inside an audit record. Old or New
// may be nil for inserts and deletes.
type FieldChange struct {
	Old any `json:"old,omitempty"`
	New any `json:"new,omitempty"`
}

// AuditRecord is append-only; rows are never updated or deleted once
// written.
type AuditRecord struct {
	ID          int64                  `json:"id"`
	EntityTable string                 `json:"entity_table"`
	EntityID    int64                  `json:"entity_id"`
	Operation   AuditOperation         `json:"operation"`
	Actor       string                 `json:"actor"`
	Changes     map[string]FieldChange `json:"changes"`
	RecordedAt  time.Time              `json:"recorded_at"`
}

// OrderHistoryEntry is one order state transition; PreviousStatus is nil
// only for the row written on order creation.
type OrderHistoryEntry struct {
	ID             int64        `json:"id"`
	OrderID        int64        `json:"order_id"`
	PreviousStatus *OrderStatus `json:"previous_status"`
	NewStatus      OrderStatus  `json:"new_status"`
	Actor          string       `json:"actor"`
	Comment        *string      `json:"comment"`
	RecordedAt     time.Time    `json:"recorded_at"`
}

type AuditSearchRequest struct {
	EntityTable string `json:"entity_table" query:"entity_table"`
	Operation   string `json:"operation" query:"operation"`
	Actor       string `json:"actor" query:"actor"`
	Limit       int64  `json:"limit" query:"limit"`
}

type AuditRepository interface {
	Insert(ctx context.Context, rec *AuditRecord, tx *sql.Tx) error
	History(ctx context.Context, entityTable string, entityID int64, limit int64) ([]AuditRecord, error)
	Search(ctx context.Context, req AuditSearchRequest) ([]AuditRecord, error)
}

type OrderHistoryRepository interface {
	Insert(ctx context.Context, entry *OrderHistoryEntry, tx *sql.Tx) error
	ListByOrderID(ctx context.Context, orderID int64) ([]OrderHistoryEntry, error)
}

type AuditUsecase interface {
	History(ctx context.Context, entityTable string, entityID int64, limit int64) ([]AuditRecord, error)
	Search(ctx context.Context, req AuditSearchRequest) ([]AuditRecord, error)
}
