package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"backoffice-service/app/domain"
	"backoffice-service/config"

	"github.com/shopspring/decimal"
)

type orderUsecase struct {
	orderRepo    domain.OrderRepository
	skuRepo      domain.SKURepository
	customerRepo domain.CustomerRepository
	addressRepo  domain.AddressRepository
	couponRepo   domain.CouponRepository
	historyRepo  domain.OrderHistoryRepository
	auditRepo    domain.AuditRepository
	broker       domain.BrokerPublisher
	cfg          *config.Config
}

func NewOrderUsecase(orderRepo domain.OrderRepository, skuRepo domain.SKURepository,
	customerRepo domain.CustomerRepository, addressRepo domain.AddressRepository,
	couponRepo domain.CouponRepository, historyRepo domain.OrderHistoryRepository,
	auditRepo domain.AuditRepository, broker domain.BrokerPublisher, cfg *config.Config) domain.OrderUsecase {
	return &orderUsecase{orderRepo, skuRepo, customerRepo, addressRepo, couponRepo,
		historyRepo, auditRepo, broker, cfg}
}

func (u *orderUsecase) taxRate() decimal.Decimal {
	return decimal.NewFromFloat(u.cfg.Orders.TaxRatePercent)
}

func (u *orderUsecase) Create(ctx context.Context, actor string, req domain.OrderCreateRequest) (*domain.Order, error) {
	if _, err := u.customerRepo.GetByID(ctx, req.CustomerID); err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] Create", "getCustomer", err)
		return nil, fmt.Errorf("customer %d: %w", req.CustomerID, err)
	}

	address, err := u.addressRepo.GetByID(ctx, req.AddressID)
	if err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] Create", "getAddress", err)
		return nil, fmt.Errorf("address %d: %w", req.AddressID, err)
	}
	if address.CustomerID != req.CustomerID {
		slog.ErrorContext(ctx, "[orderUsecase] Create", "addressOwner", "address does not belong to customer")
		return nil, fmt.Errorf("%w: address %d does not belong to customer %d", domain.ErrInvalidRequest, req.AddressID, req.CustomerID)
	}

	var couponCode string
	if req.CouponID != nil {
		coupon, err := u.couponRepo.GetByID(ctx, *req.CouponID)
		if err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Create", "getCoupon", err)
			return nil, fmt.Errorf("coupon %d: %w", *req.CouponID, err)
		}
		couponCode = coupon.Code
	}

	// Lock SKUs in ascending id order so concurrent multi-line orders
	// cannot deadlock on each other.
	items := make([]domain.OrderItemRequest, len(req.Items))
	copy(items, req.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].SKUID < items[j].SKUID })

	order := &domain.Order{
		CustomerID:      req.CustomerID,
		ShippingAddress: req.AddressID,
		CouponID:        req.CouponID,
		Status:          domain.OrderStatusPending,
	}
	var stockMessages []domain.StockMessage

	if err := u.orderRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var lines []domain.OrderLine
		for _, item := range items {
			sku, err := u.skuRepo.LockForUpdate(ctx, item.SKUID, tx)
			if err != nil {
				slog.ErrorContext(ctx, "[orderUsecase] Create", "lockSKU", err)
				return fmt.Errorf("sku %d: %w", item.SKUID, err)
			}

			// Any failed reservation rolls back every reservation
			// already taken for this order.
			if err := sku.Reserve(item.Quantity); err != nil {
				return err
			}

			if err := u.skuRepo.UpdateQuantities(ctx, sku.ID, sku.OnHand, sku.Reserved, tx); err != nil {
				slog.ErrorContext(ctx, "[orderUsecase] Create", "updateQuantities", err)
				return err
			}

			lines = append(lines, domain.OrderLine{
				SKUID:     sku.ID,
				Quantity:  item.Quantity,
				UnitPrice: sku.UnitPrice,
			})
			stockMessages = append(stockMessages, domain.StockMessage{
				SKUID:     sku.ID,
				ProductID: sku.ProductID,
				Available: sku.Available(),
			})
		}

		var coupon *domain.Coupon
		if req.CouponID != nil {
			locked, err := u.couponRepo.LockByCode(ctx, couponCode, tx)
			if err != nil {
				slog.ErrorContext(ctx, "[orderUsecase] Create", "lockCoupon", err)
				return err
			}
			if !locked.Applicable(time.Now()) {
				return fmt.Errorf("%w: %s", domain.ErrCouponInvalid, locked.Code)
			}
			if locked.RemainingUses != nil {
				if err := u.couponRepo.DecrementRemainingUses(ctx, locked.ID, tx); err != nil {
					slog.ErrorContext(ctx, "[orderUsecase] Create", "decrementCouponUses", err)
					return err
				}
			}
			coupon = &locked
		}

		totals := domain.ComputeOrderTotals(lines, coupon, u.taxRate())
		order.Subtotal = totals.Subtotal
		order.DiscountApplied = totals.Discount
		order.Taxes = totals.Taxes
		order.Total = totals.Total

		if err := u.orderRepo.Create(ctx, order, tx); err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Create", "createOrder", err)
			return err
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := u.orderRepo.CreateLines(ctx, lines, tx); err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Create", "createLines", err)
			return err
		}
		order.Lines = lines

		if err := u.historyRepo.Insert(ctx, &domain.OrderHistoryEntry{
			OrderID:   order.ID,
			NewStatus: domain.OrderStatusPending,
			Actor:     actor,
		}, tx); err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Create", "historyInsert", err)
			return err
		}

		if err := u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "orders",
			EntityID:    order.ID,
			Operation:   domain.AuditOperationInsert,
			Actor:       actor,
			Changes: map[string]domain.FieldChange{
				"status": {New: domain.OrderStatusPending},
				"total":  {New: order.Total},
			},
		}, tx); err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Create", "auditInsert", err)
			return err
		}

		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] Create", "withTransaction", err)
		return nil, err
	}

	for _, msg := range stockMessages {
		if err := u.broker.PublishStockAvailable(ctx, msg); err != nil {
			slog.WarnContext(ctx, "[orderUsecase] Create", "publishStockAvailable", err)
		}
	}
	if err := u.broker.PublishOrderStatus(ctx, domain.OrderStatusMessage{
		OrderID:   order.ID,
		NewStatus: domain.OrderStatusPending,
	}); err != nil {
		slog.WarnContext(ctx, "[orderUsecase] Create", "publishOrderStatus", err)
	}

	slog.InfoContext(ctx, "[orderUsecase] Create", "orderID", order.ID, "total", order.Total)
	return order, nil
}

func (u *orderUsecase) GetByID(ctx context.Context, id int64) (domain.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, id)
	if err != nil {
		return order, err
	}

	lines, err := u.orderRepo.GetLines(ctx, id)
	if err != nil {
		return order, err
	}
	order.Lines = lines

	return order, nil
}

func (u *orderUsecase) List(ctx context.Context) ([]domain.OrderSummary, error) {
	return u.orderRepo.List(ctx)
}

func (u *orderUsecase) Transition(ctx context.Context, orderID int64, actor string, req domain.OrderTransitionRequest) error {
	return u.transition(ctx, orderID, actor, req.Status, req.Comment)
}

func (u *orderUsecase) transition(ctx context.Context, orderID int64, actor string, newStatus domain.OrderStatus, comment string) error {
	var previous domain.OrderStatus
	var stockMessages []domain.StockMessage

	if err := u.orderRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		order, err := u.orderRepo.LockByID(ctx, orderID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Transition", "lockOrder", err)
			return err
		}
		previous = order.Status

		if order.Status == newStatus {
			return fmt.Errorf("%w: order %d is already %s", domain.ErrNoOpTransition, orderID, newStatus)
		}
		if !order.Status.CanTransitionTo(newStatus) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, newStatus)
		}

		if err := u.orderRepo.UpdateStatus(ctx, orderID, newStatus, tx); err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Transition", "updateStatus", err)
			return err
		}

		// Cancellation frees every unit the order still holds reserved.
		if newStatus == domain.OrderStatusCancelled {
			messages, err := u.releaseOrderReservations(ctx, orderID, tx)
			if err != nil {
				return err
			}
			stockMessages = messages
		}

		entry := &domain.OrderHistoryEntry{
			OrderID:        orderID,
			PreviousStatus: &previous,
			NewStatus:      newStatus,
			Actor:          actor,
		}
		if comment != "" {
			entry.Comment = &comment
		}
		if err := u.historyRepo.Insert(ctx, entry, tx); err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Transition", "historyInsert", err)
			return err
		}

		if err := u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "orders",
			EntityID:    orderID,
			Operation:   domain.AuditOperationUpdate,
			Actor:       actor,
			Changes: map[string]domain.FieldChange{
				"status": {Old: previous, New: newStatus},
			},
		}, tx); err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Transition", "auditInsert", err)
			return err
		}

		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] Transition", "withTransaction", err)
		return err
	}

	for _, msg := range stockMessages {
		if err := u.broker.PublishStockAvailable(ctx, msg); err != nil {
			slog.WarnContext(ctx, "[orderUsecase] Transition", "publishStockAvailable", err)
		}
	}
	if err := u.broker.PublishOrderStatus(ctx, domain.OrderStatusMessage{
		OrderID:        orderID,
		PreviousStatus: previous,
		NewStatus:      newStatus,
	}); err != nil {
		slog.WarnContext(ctx, "[orderUsecase] Transition", "publishOrderStatus", err)
	}

	slog.InfoContext(ctx, "[orderUsecase] Transition", "orderID", orderID, "from", previous, "to", newStatus)
	return nil
}

// releaseOrderReservations frees the reserved quantity of every line,
// locking SKUs in line order (lines are stored sorted by sku id).
func (u *orderUsecase) releaseOrderReservations(ctx context.Context, orderID int64, tx *sql.Tx) ([]domain.StockMessage, error) {
	lines, err := u.orderRepo.GetLines(ctx, orderID)
	if err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] releaseOrderReservations", "getLines", err)
		return nil, err
	}

	var messages []domain.StockMessage
	for _, line := range lines {
		sku, err := u.skuRepo.LockForUpdate(ctx, line.SKUID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] releaseOrderReservations", "lockSKU", err)
			return nil, err
		}

		if err := sku.Release(line.Quantity); err != nil {
			return nil, err
		}

		if err := u.skuRepo.UpdateQuantities(ctx, sku.ID, sku.OnHand, sku.Reserved, tx); err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] releaseOrderReservations", "updateQuantities", err)
			return nil, err
		}

		messages = append(messages, domain.StockMessage{
			SKUID:     sku.ID,
			ProductID: sku.ProductID,
			Available: sku.Available(),
		})
	}

	return messages, nil
}

func (u *orderUsecase) Cancel(ctx context.Context, orderID int64, actor string, req domain.CancelOrderRequest) error {
	return u.transition(ctx, orderID, actor, domain.OrderStatusCancelled, req.Reason)
}

func (u *orderUsecase) Delete(ctx context.Context, orderID int64, actor string) error {
	var stockMessages []domain.StockMessage

	if err := u.orderRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		order, err := u.orderRepo.LockByID(ctx, orderID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Delete", "lockOrder", err)
			return err
		}

		// The dependent-row check holds the order lock so a payment
		// landing mid-delete still surfaces as a conflict.
		payments, err := u.orderRepo.CountPayments(ctx, orderID, tx)
		if err != nil {
			return err
		}
		shipments, err := u.orderRepo.CountShipments(ctx, orderID, tx)
		if err != nil {
			return err
		}
		if payments > 0 || shipments > 0 {
			return fmt.Errorf("%w: order %d has %d payments and %d shipments", domain.ErrConstraintConflict, orderID, payments, shipments)
		}

		// A deleted open order must not leave its reservations behind.
		if order.Status == domain.OrderStatusPending || order.Status == domain.OrderStatusPaid {
			messages, err := u.releaseOrderReservations(ctx, orderID, tx)
			if err != nil {
				return err
			}
			stockMessages = messages
		}

		if err := u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "orders",
			EntityID:    orderID,
			Operation:   domain.AuditOperationDelete,
			Actor:       actor,
			Changes: map[string]domain.FieldChange{
				"status": {Old: order.Status},
			},
		}, tx); err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Delete", "auditInsert", err)
			return err
		}

		if err := u.orderRepo.Delete(ctx, orderID, tx); err != nil {
			slog.ErrorContext(ctx, "[orderUsecase] Delete", "deleteOrder", err)
			return err
		}

		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] Delete", "withTransaction", err)
		return err
	}

	for _, msg := range stockMessages {
		if err := u.broker.PublishStockAvailable(ctx, msg); err != nil {
			slog.WarnContext(ctx, "[orderUsecase] Delete", "publishStockAvailable", err)
		}
	}

	slog.InfoContext(ctx, "[orderUsecase] Delete", "orderID", orderID)
	return nil
}

func (u *orderUsecase) Timeline(ctx context.Context, orderID int64) ([]domain.OrderHistoryEntry, error) {
	entries, err := u.historyRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		slog.ErrorContext(ctx, "[orderUsecase] Timeline", "listByOrderID", err)
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no history for order %d", domain.ErrNotFound, orderID)
	}

	return entries, nil
}
