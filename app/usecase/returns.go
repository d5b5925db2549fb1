package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"backoffice-service/app/domain"
	"backoffice-service/config"

	"github.com/shopspring/decimal"
)

type returnUsecase struct {
	returnRepo  domain.ReturnRepository
	orderRepo   domain.OrderRepository
	skuRepo     domain.SKURepository
	paymentRepo domain.PaymentRepository
	auditRepo   domain.AuditRepository
	broker      domain.BrokerPublisher
	cfg         *config.Config
}

func NewReturnUsecase(returnRepo domain.ReturnRepository, orderRepo domain.OrderRepository,
	skuRepo domain.SKURepository, paymentRepo domain.PaymentRepository,
	auditRepo domain.AuditRepository, broker domain.BrokerPublisher, cfg *config.Config) domain.ReturnUsecase {
	return &returnUsecase{returnRepo, orderRepo, skuRepo, paymentRepo, auditRepo, broker, cfg}
}

func (u *returnUsecase) ValidateEligible(ctx context.Context, orderID int64) (domain.ReturnEligibility, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		slog.ErrorContext(ctx, "[returnUsecase] ValidateEligible", "getOrder", err)
		return domain.ReturnEligibility{}, err
	}

	return domain.ReturnEligibility{
		OrderID:  orderID,
		Eligible: u.eligible(order),
	}, nil
}

// eligible reports whether the order accepts returns: it must be shipped or
// completed and inside the return window, counted from its last status change.
func (u *returnUsecase) eligible(order domain.Order) bool {
	if order.Status != domain.OrderStatusShipped && order.Status != domain.OrderStatusCompleted {
		return false
	}
	deadline := order.UpdatedAt.AddDate(0, 0, int(u.cfg.Orders.ReturnWindowDays))
	return time.Now().Before(deadline)
}

func (u *returnUsecase) CalculateRefund(ctx context.Context, orderLineID, quantity int64) (domain.RefundQuote, error) {
	if quantity <= 0 {
		return domain.RefundQuote{}, fmt.Errorf("%w: refund quantity must be positive", domain.ErrInvalidQuantity)
	}

	line, err := u.orderRepo.GetLineByID(ctx, orderLineID)
	if err != nil {
		slog.ErrorContext(ctx, "[returnUsecase] CalculateRefund", "getLine", err)
		return domain.RefundQuote{}, err
	}

	alreadyReturned, err := u.returnRepo.ReturnedQuantity(ctx, orderLineID, 0)
	if err != nil {
		slog.ErrorContext(ctx, "[returnUsecase] CalculateRefund", "returnedQuantity", err)
		return domain.RefundQuote{}, err
	}
	if quantity+alreadyReturned > line.Quantity {
		return domain.RefundQuote{}, fmt.Errorf("%w: %d requested with %d already returned of %d purchased",
			domain.ErrInvalidQuantity, quantity, alreadyReturned, line.Quantity)
	}

	return domain.RefundQuote{
		OrderLineID: orderLineID,
		Quantity:    quantity,
		Amount:      line.UnitPrice.Mul(decimal.NewFromInt(quantity)).Round(2),
	}, nil
}

func (u *returnUsecase) Create(ctx context.Context, actor string, req domain.ReturnCreateRequest) (*domain.Return, error) {
	line, err := u.orderRepo.GetLineByID(ctx, req.OrderLineID)
	if err != nil {
		slog.ErrorContext(ctx, "[returnUsecase] Create", "getLine", err)
		return nil, err
	}

	ret := &domain.Return{
		OrderLineID: req.OrderLineID,
		Reason:      req.Reason,
		Quantity:    req.Quantity,
		Status:      domain.ReturnStatusRequested,
	}

	if err := u.orderRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Concurrent returns for the same order serialize on the order
		// row, so the quantity bound holds under contention.
		order, err := u.orderRepo.LockByID(ctx, line.OrderID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[returnUsecase] Create", "lockOrder", err)
			return err
		}
		if !u.eligible(order) {
			return fmt.Errorf("%w: order %d is not eligible for returns", domain.ErrInvalidState, order.ID)
		}

		alreadyReturned, err := u.returnRepo.ReturnedQuantity(ctx, req.OrderLineID, 0)
		if err != nil {
			slog.ErrorContext(ctx, "[returnUsecase] Create", "returnedQuantity", err)
			return err
		}
		if req.Quantity+alreadyReturned > line.Quantity {
			return fmt.Errorf("%w: %d requested with %d already returned of %d purchased",
				domain.ErrInvalidQuantity, req.Quantity, alreadyReturned, line.Quantity)
		}

		if err := u.returnRepo.Create(ctx, ret, tx); err != nil {
			slog.ErrorContext(ctx, "[returnUsecase] Create", "createReturn", err)
			return err
		}

		return u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "returns",
			EntityID:    ret.ID,
			Operation:   domain.AuditOperationInsert,
			Actor:       actor,
			Changes: map[string]domain.FieldChange{
				"order_line_id": {New: ret.OrderLineID},
				"quantity":      {New: ret.Quantity},
				"status":        {New: ret.Status},
			},
		}, tx)
	}); err != nil {
		slog.ErrorContext(ctx, "[returnUsecase] Create", "withTransaction", err)
		return nil, err
	}

	slog.InfoContext(ctx, "[returnUsecase] Create", "returnID", ret.ID, "orderLineID", ret.OrderLineID, "quantity", ret.Quantity)
	return ret, nil
}

func (u *returnUsecase) Transition(ctx context.Context, id int64, actor string, req domain.ReturnTransitionRequest) error {
	var ret domain.Return
	var stockMessage *domain.StockMessage

	if err := u.orderRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// The edge check and its side effects must see the same row
		// state, so the return stays locked for the whole transition.
		locked, err := u.returnRepo.LockByID(ctx, id, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[returnUsecase] Transition", "lockReturn", err)
			return err
		}
		ret = locked

		if ret.Status == req.Status {
			return fmt.Errorf("%w: return %d is already %s", domain.ErrNoOpTransition, id, req.Status)
		}
		if !ret.Status.CanTransitionTo(req.Status) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, ret.Status, req.Status)
		}

		line, err := u.orderRepo.GetLineByID(ctx, ret.OrderLineID)
		if err != nil {
			slog.ErrorContext(ctx, "[returnUsecase] Transition", "getLine", err)
			return err
		}

		if err := u.returnRepo.UpdateStatus(ctx, id, req.Status, tx); err != nil {
			slog.ErrorContext(ctx, "[returnUsecase] Transition", "updateStatus", err)
			return err
		}

		switch req.Status {
		case domain.ReturnStatusReceived:
			// Received units go straight back on hand.
			sku, err := u.skuRepo.LockForUpdate(ctx, line.SKUID, tx)
			if err != nil {
				slog.ErrorContext(ctx, "[returnUsecase] Transition", "lockSKU", err)
				return err
			}
			if err := sku.ReturnToStock(ret.Quantity); err != nil {
				return err
			}
			if err := u.skuRepo.UpdateQuantities(ctx, sku.ID, sku.OnHand, sku.Reserved, tx); err != nil {
				slog.ErrorContext(ctx, "[returnUsecase] Transition", "updateQuantities", err)
				return err
			}
			stockMessage = &domain.StockMessage{
				SKUID:     sku.ID,
				ProductID: sku.ProductID,
				Available: sku.Available(),
			}

		case domain.ReturnStatusRefunded:
			amount := line.UnitPrice.Mul(decimal.NewFromInt(ret.Quantity)).Round(2)
			refund := &domain.Payment{
				OrderID: line.OrderID,
				Amount:  amount,
				Method:  "refund",
				Status:  domain.PaymentStatusRefunded,
			}
			if err := u.paymentRepo.Create(ctx, refund, tx); err != nil {
				slog.ErrorContext(ctx, "[returnUsecase] Transition", "createRefund", err)
				return err
			}
		}

		return u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "returns",
			EntityID:    id,
			Operation:   domain.AuditOperationUpdate,
			Actor:       actor,
			Changes: map[string]domain.FieldChange{
				"status": {Old: ret.Status, New: req.Status},
			},
		}, tx)
	}); err != nil {
		slog.ErrorContext(ctx, "[returnUsecase] Transition", "withTransaction", err)
		return err
	}

	if stockMessage != nil {
		if err := u.broker.PublishStockAvailable(ctx, *stockMessage); err != nil {
			slog.WarnContext(ctx, "[returnUsecase] Transition", "publishStockAvailable", err)
		}
	}

	slog.InfoContext(ctx, "[returnUsecase] Transition", "returnID", id, "from", ret.Status, "to", req.Status)
	return nil
}

func (u *returnUsecase) List(ctx context.Context) ([]domain.ReturnSummary, error) {
	return u.returnRepo.List(ctx)
}
