package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"backoffice-service/app/domain"
)

type shipmentUsecase struct {
	shipmentRepo domain.ShipmentRepository
	orderRepo    domain.OrderRepository
	skuRepo      domain.SKURepository
	historyRepo  domain.OrderHistoryRepository
	auditRepo    domain.AuditRepository
	broker       domain.BrokerPublisher
}

func NewShipmentUsecase(shipmentRepo domain.ShipmentRepository, orderRepo domain.OrderRepository,
	skuRepo domain.SKURepository, historyRepo domain.OrderHistoryRepository,
	auditRepo domain.AuditRepository, broker domain.BrokerPublisher) domain.ShipmentUsecase {
	return &shipmentUsecase{shipmentRepo, orderRepo, skuRepo, historyRepo, auditRepo, broker}
}

func (u *shipmentUsecase) Create(ctx context.Context, actor string, req domain.ShipmentCreateRequest) (*domain.Shipment, error) {
	shipment := &domain.Shipment{
		OrderID:        req.OrderID,
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		Status:         domain.ShipmentStatusPreparing,
	}
	var stockMessages []domain.StockMessage

	if err := u.orderRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		order, err := u.orderRepo.LockByID(ctx, req.OrderID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[shipmentUsecase] Create", "lockOrder", err)
			return err
		}

		if order.Status != domain.OrderStatusPaid {
			return fmt.Errorf("%w: order %d is %s, only paid orders ship", domain.ErrInvalidState, order.ID, order.Status)
		}

		// Shipping consumes the reservation: units leave both the
		// reserved count and the shelf.
		lines, err := u.orderRepo.GetLines(ctx, order.ID)
		if err != nil {
			slog.ErrorContext(ctx, "[shipmentUsecase] Create", "getLines", err)
			return err
		}
		for _, line := range lines {
			sku, err := u.skuRepo.LockForUpdate(ctx, line.SKUID, tx)
			if err != nil {
				slog.ErrorContext(ctx, "[shipmentUsecase] Create", "lockSKU", err)
				return err
			}
			if err := sku.Ship(line.Quantity); err != nil {
				return err
			}
			if err := u.skuRepo.UpdateQuantities(ctx, sku.ID, sku.OnHand, sku.Reserved, tx); err != nil {
				slog.ErrorContext(ctx, "[shipmentUsecase] Create", "updateQuantities", err)
				return err
			}
			stockMessages = append(stockMessages, domain.StockMessage{
				SKUID:     sku.ID,
				ProductID: sku.ProductID,
				Available: sku.Available(),
			})
		}

		if err := u.shipmentRepo.Create(ctx, shipment, tx); err != nil {
			slog.ErrorContext(ctx, "[shipmentUsecase] Create", "createShipment", err)
			return err
		}

		if err := u.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusShipped, tx); err != nil {
			slog.ErrorContext(ctx, "[shipmentUsecase] Create", "updateOrderStatus", err)
			return err
		}

		previous := order.Status
		if err := u.historyRepo.Insert(ctx, &domain.OrderHistoryEntry{
			OrderID:        order.ID,
			PreviousStatus: &previous,
			NewStatus:      domain.OrderStatusShipped,
			Actor:          actor,
		}, tx); err != nil {
			slog.ErrorContext(ctx, "[shipmentUsecase] Create", "historyInsert", err)
			return err
		}

		return u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "shipments",
			EntityID:    shipment.ID,
			Operation:   domain.AuditOperationInsert,
			Actor:       actor,
			Changes: map[string]domain.FieldChange{
				"order_id": {New: shipment.OrderID},
				"status":   {New: shipment.Status},
			},
		}, tx)
	}); err != nil {
		slog.ErrorContext(ctx, "[shipmentUsecase] Create", "withTransaction", err)
		return nil, err
	}

	for _, msg := range stockMessages {
		if err := u.broker.PublishStockAvailable(ctx, msg); err != nil {
			slog.WarnContext(ctx, "[shipmentUsecase] Create", "publishStockAvailable", err)
		}
	}
	if err := u.broker.PublishOrderStatus(ctx, domain.OrderStatusMessage{
		OrderID:        shipment.OrderID,
		PreviousStatus: domain.OrderStatusPaid,
		NewStatus:      domain.OrderStatusShipped,
	}); err != nil {
		slog.WarnContext(ctx, "[shipmentUsecase] Create", "publishOrderStatus", err)
	}

	slog.InfoContext(ctx, "[shipmentUsecase] Create", "shipmentID", shipment.ID, "orderID", shipment.OrderID)
	return shipment, nil
}

func (u *shipmentUsecase) UpdateStatus(ctx context.Context, id int64, actor string, req domain.ShipmentUpdateRequest) error {
	var shipment domain.Shipment
	var previous domain.ShipmentStatus
	var completed bool

	if err := u.orderRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Guards run against the locked row so concurrent updates
		// cannot both pass a stale edge check.
		locked, err := u.shipmentRepo.LockByID(ctx, id, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[shipmentUsecase] UpdateStatus", "lockShipment", err)
			return err
		}
		shipment = locked

		if shipment.Status == domain.ShipmentStatusDelivered {
			return fmt.Errorf("%w: shipment %d is delivered and can no longer change", domain.ErrInvalidState, id)
		}
		if shipment.Status == req.Status {
			return fmt.Errorf("%w: shipment %d is already %s", domain.ErrNoOpTransition, id, req.Status)
		}
		if !shipment.Status.CanTransitionTo(req.Status) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, shipment.Status, req.Status)
		}

		previous = shipment.Status
		shipment.Status = req.Status
		if req.Carrier != nil {
			shipment.Carrier = req.Carrier
		}
		if req.TrackingNumber != nil {
			shipment.TrackingNumber = req.TrackingNumber
		}
		if req.Status == domain.ShipmentStatusInTransit && shipment.ShippedAt == nil {
			now := time.Now()
			shipment.ShippedAt = &now
		}

		if err := u.shipmentRepo.Update(ctx, &shipment, tx); err != nil {
			slog.ErrorContext(ctx, "[shipmentUsecase] UpdateStatus", "updateShipment", err)
			return err
		}

		// Delivery closes out the order.
		if req.Status == domain.ShipmentStatusDelivered {
			order, err := u.orderRepo.LockByID(ctx, shipment.OrderID, tx)
			if err != nil {
				slog.ErrorContext(ctx, "[shipmentUsecase] UpdateStatus", "lockOrder", err)
				return err
			}
			if order.Status == domain.OrderStatusShipped {
				if err := u.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusCompleted, tx); err != nil {
					slog.ErrorContext(ctx, "[shipmentUsecase] UpdateStatus", "updateOrderStatus", err)
					return err
				}
				completed = true

				prevOrder := order.Status
				if err := u.historyRepo.Insert(ctx, &domain.OrderHistoryEntry{
					OrderID:        order.ID,
					PreviousStatus: &prevOrder,
					NewStatus:      domain.OrderStatusCompleted,
					Actor:          actor,
				}, tx); err != nil {
					slog.ErrorContext(ctx, "[shipmentUsecase] UpdateStatus", "historyInsert", err)
					return err
				}
			}
		}

		return u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "shipments",
			EntityID:    id,
			Operation:   domain.AuditOperationUpdate,
			Actor:       actor,
			Changes: map[string]domain.FieldChange{
				"status": {Old: previous, New: req.Status},
			},
		}, tx)
	}); err != nil {
		slog.ErrorContext(ctx, "[shipmentUsecase] UpdateStatus", "withTransaction", err)
		return err
	}

	if completed {
		if err := u.broker.PublishOrderStatus(ctx, domain.OrderStatusMessage{
			OrderID:        shipment.OrderID,
			PreviousStatus: domain.OrderStatusShipped,
			NewStatus:      domain.OrderStatusCompleted,
		}); err != nil {
			slog.WarnContext(ctx, "[shipmentUsecase] UpdateStatus", "publishOrderStatus", err)
		}
	}

	slog.InfoContext(ctx, "[shipmentUsecase] UpdateStatus", "shipmentID", id, "from", previous, "to", req.Status)
	return nil
}

func (u *shipmentUsecase) List(ctx context.Context) ([]domain.ShipmentSummary, error) {
	return u.shipmentRepo.List(ctx)
}
