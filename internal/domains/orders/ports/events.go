package ports

import "context"

// OrderAcceptedMessage notifies downstream services that an order was
// accepted and should be fulfilled.
type OrderAcceptedMessage struct {
	OrderID int64 `json:"orderId"`
}

// OrderDispatchedMessage arrives from the fulfillment stream once the copies
// for an order have shipped. Delivery is at-least-once.
type OrderDispatchedMessage struct {
	OrderID int64 `json:"orderId"`
}

// EventPublisher delivers domain events to the accepted-orders topic.
// Delivery is fire-and-forget; the core observes failures but does not retry.
type EventPublisher interface {
	PublishOrderAccepted(ctx context.Context, message OrderAcceptedMessage) error
}
