package broker

import (
	"context"
	"encoding/json"
	"log/slog"

	"backoffice-service/app/domain"

	"github.com/nats-io/nats.go/jetstream"
)

type eventBroker struct {
	js jetstream.JetStream
}

func NewEventBrokerPublisher(stream jetstream.JetStream) domain.BrokerPublisher {
	return &eventBroker{
		js: stream,
	}
}

func (b *eventBroker) PublishStockAvailable(ctx context.Context, data domain.StockMessage) error {
	msg, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "[eventBroker] PublishStockAvailable", "json.Marshal", err)
		return err
	}

	if _, err = b.js.Publish(ctx, "backoffice.stock_available", msg); err != nil {
		slog.ErrorContext(ctx, "[eventBroker] PublishStockAvailable", "Publish", err)
		return err
	}

	return nil
}

func (b *eventBroker) PublishOrderStatus(ctx context.Context, data domain.OrderStatusMessage) error {
	msg, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "[eventBroker] PublishOrderStatus", "json.Marshal", err)
		return err
	}

	if _, err = b.js.Publish(ctx, "backoffice.order_status", msg); err != nil {
		slog.ErrorContext(ctx, "[eventBroker] PublishOrderStatus", "Publish", err)
		return err
	}

	return nil
}
