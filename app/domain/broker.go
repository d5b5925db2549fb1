package domain

import "context"

type StockMessage struct {
	SKUID     int64 `json:"sku_id"`
	ProductID int64 `json:"product_id"`
	Available int64 `json:"available"`
}

type OrderStatusMessage struct {
	OrderID        int64       `json:"order_id"`
	PreviousStatus OrderStatus `json:"previous_status,omitempty"`
	NewStatus      OrderStatus `json:"new_status"`
}

type BrokerPublisher interface {
	PublishStockAvailable(ctx context.Context, data StockMessage) error
	PublishOrderStatus(ctx context.Context, data OrderStatusMessage) error
}
