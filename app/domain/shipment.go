package domain

import (
	"context"
	"database/sql"
	"time"
)

type ShipmentStatus string

const (
	ShipmentStatusPreparing ShipmentStatus = "preparing"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusFailed    ShipmentStatus = "failed"
)

var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentStatusPreparing: {ShipmentStatusInTransit, ShipmentStatusFailed},
	ShipmentStatusInTransit: {ShipmentStatusDelivered, ShipmentStatusFailed},
	ShipmentStatusDelivered: {},
	ShipmentStatusFailed:    {ShipmentStatusPreparing},
}

func (s ShipmentStatus) IsValid() bool {
	_, ok := shipmentTransitions[s]
	return ok
}

func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	for _, t := range shipmentTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

type Shipment struct {
	ID             int64          `json:"id"`
	OrderID        int64          `json:"order_id"`
	ShippedAt      *time.Time     `json:"shipped_at"`
	Carrier        *string        `json:"carrier"`
	TrackingNumber *string        `json:"tracking_number"`
	Status         ShipmentStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ShipmentCreateRequest struct {
	OrderID        int64   `json:"order_id" validate:"required"`
	Carrier        *string `json:"carrier"`
	TrackingNumber *string `json:"tracking_number"`
}

type ShipmentUpdateRequest struct {
	Status         ShipmentStatus `json:"status" validate:"required,oneof=preparing in_transit delivered failed"`
	Carrier        *string        `json:"carrier"`
	TrackingNumber *string        `json:"tracking_number"`
}

type ShipmentSummary struct {
	Shipment
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
}

type ShipmentRepository interface {
	Create(ctx context.Context, shipment *Shipment, tx *sql.Tx) error
	LockByID(ctx context.Context, id int64, tx *sql.Tx) (Shipment, error)
	Update(ctx context.Context, shipment *Shipment, tx *sql.Tx) error
	List(ctx context.Context) ([]ShipmentSummary, error)
}

type ShipmentUsecase interface {
	Create(ctx context.Context, actor string, req ShipmentCreateRequest) (*Shipment, error)
	UpdateStatus(ctx context.Context, id int64, actor string, req ShipmentUpdateRequest) error
	List(ctx context.Context) ([]ShipmentSummary, error)
}
