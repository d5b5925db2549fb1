package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"backoffice-service/app/domain"
)

type paymentUsecase struct {
	paymentRepo domain.PaymentRepository
	orderRepo   domain.OrderRepository
	historyRepo domain.OrderHistoryRepository
	auditRepo   domain.AuditRepository
	broker      domain.BrokerPublisher
}

func NewPaymentUsecase(paymentRepo domain.PaymentRepository, orderRepo domain.OrderRepository,
	historyRepo domain.OrderHistoryRepository, auditRepo domain.AuditRepository,
	broker domain.BrokerPublisher) domain.PaymentUsecase {
	return &paymentUsecase{paymentRepo, orderRepo, historyRepo, auditRepo, broker}
}

func (u *paymentUsecase) Process(ctx context.Context, actor string, req domain.PaymentCreateRequest) (*domain.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", domain.ErrInvalidRequest)
	}

	payment := &domain.Payment{
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		Method:        req.Method,
		Status:        domain.PaymentStatusSuccessful,
		ExternalTxnID: req.ExternalTxnID,
	}
	var transitioned bool

	if err := u.orderRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		order, err := u.orderRepo.LockByID(ctx, req.OrderID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[paymentUsecase] Process", "lockOrder", err)
			return err
		}

		if order.Status != domain.OrderStatusPending {
			return fmt.Errorf("%w: order %d is %s, payments are only accepted while pending", domain.ErrInvalidState, order.ID, order.Status)
		}

		// Partial payments are not supported, the payment must cover
		// the order total exactly.
		if !req.Amount.Equal(order.Total) {
			return fmt.Errorf("%w: payment of %s against order total %s", domain.ErrAmountMismatch, req.Amount, order.Total)
		}

		if err := u.paymentRepo.Create(ctx, payment, tx); err != nil {
			slog.ErrorContext(ctx, "[paymentUsecase] Process", "createPayment", err)
			return err
		}

		if err := u.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusPaid, tx); err != nil {
			slog.ErrorContext(ctx, "[paymentUsecase] Process", "updateStatus", err)
			return err
		}
		transitioned = true

		previous := order.Status
		if err := u.historyRepo.Insert(ctx, &domain.OrderHistoryEntry{
			OrderID:        order.ID,
			PreviousStatus: &previous,
			NewStatus:      domain.OrderStatusPaid,
			Actor:          actor,
		}, tx); err != nil {
			slog.ErrorContext(ctx, "[paymentUsecase] Process", "historyInsert", err)
			return err
		}

		if err := u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "payments",
			EntityID:    payment.ID,
			Operation:   domain.AuditOperationInsert,
			Actor:       actor,
			Changes: map[string]domain.FieldChange{
				"order_id": {New: payment.OrderID},
				"amount":   {New: payment.Amount},
				"status":   {New: payment.Status},
			},
		}, tx); err != nil {
			slog.ErrorContext(ctx, "[paymentUsecase] Process", "auditInsert", err)
			return err
		}

		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "[paymentUsecase] Process", "withTransaction", err)
		return nil, err
	}

	if transitioned {
		if err := u.broker.PublishOrderStatus(ctx, domain.OrderStatusMessage{
			OrderID:        payment.OrderID,
			PreviousStatus: domain.OrderStatusPending,
			NewStatus:      domain.OrderStatusPaid,
		}); err != nil {
			slog.WarnContext(ctx, "[paymentUsecase] Process", "publishOrderStatus", err)
		}
	}

	slog.InfoContext(ctx, "[paymentUsecase] Process", "paymentID", payment.ID, "orderID", payment.OrderID, "amount", payment.Amount)
	return payment, nil
}

func (u *paymentUsecase) List(ctx context.Context) ([]domain.PaymentSummary, error) {
	return u.paymentRepo.List(ctx)
}

func (u *paymentUsecase) Delete(ctx context.Context, id int64, actor string) error {
	payment, err := u.paymentRepo.GetByID(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "[paymentUsecase] Delete", "getPayment", err)
		return err
	}

	var regressed bool

	if err := u.orderRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		order, err := u.orderRepo.LockByID(ctx, payment.OrderID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[paymentUsecase] Delete", "lockOrder", err)
			return err
		}

		if order.Status == domain.OrderStatusShipped || order.Status == domain.OrderStatusCompleted {
			return fmt.Errorf("%w: cannot remove a payment from a %s order", domain.ErrInvalidState, order.Status)
		}

		if err := u.paymentRepo.Delete(ctx, id, tx); err != nil {
			slog.ErrorContext(ctx, "[paymentUsecase] Delete", "deletePayment", err)
			return err
		}

		// The order falls back to pending only when no successful
		// payment remains to back its paid status.
		if order.Status == domain.OrderStatusPaid && payment.Status == domain.PaymentStatusSuccessful {
			remaining, err := u.paymentRepo.CountSuccessfulByOrderID(ctx, order.ID, id)
			if err != nil {
				slog.ErrorContext(ctx, "[paymentUsecase] Delete", "countSuccessful", err)
				return err
			}
			if remaining == 0 {
				if err := u.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusPending, tx); err != nil {
					slog.ErrorContext(ctx, "[paymentUsecase] Delete", "updateStatus", err)
					return err
				}
				regressed = true

				previous := order.Status
				if err := u.historyRepo.Insert(ctx, &domain.OrderHistoryEntry{
					OrderID:        order.ID,
					PreviousStatus: &previous,
					NewStatus:      domain.OrderStatusPending,
					Actor:          actor,
				}, tx); err != nil {
					slog.ErrorContext(ctx, "[paymentUsecase] Delete", "historyInsert", err)
					return err
				}
			}
		}

		if err := u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "payments",
			EntityID:    id,
			Operation:   domain.AuditOperationDelete,
			Actor:       actor,
			Changes: map[string]domain.FieldChange{
				"order_id": {Old: payment.OrderID},
				"amount":   {Old: payment.Amount},
				"status":   {Old: payment.Status},
			},
		}, tx); err != nil {
			slog.ErrorContext(ctx, "[paymentUsecase] Delete", "auditInsert", err)
			return err
		}

		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "[paymentUsecase] Delete", "withTransaction", err)
		return err
	}

	if regressed {
		if err := u.broker.PublishOrderStatus(ctx, domain.OrderStatusMessage{
			OrderID:        payment.OrderID,
			PreviousStatus: domain.OrderStatusPaid,
			NewStatus:      domain.OrderStatusPending,
		}); err != nil {
			slog.WarnContext(ctx, "[paymentUsecase] Delete", "publishOrderStatus", err)
		}
	}

	slog.InfoContext(ctx, "[paymentUsecase] Delete", "paymentID", id, "orderID", payment.OrderID)
	return nil
}
