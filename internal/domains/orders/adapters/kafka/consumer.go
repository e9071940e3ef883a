package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/ports"
)

// DispatchConsumer drains the fulfillment stream and reconciles the matching
// orders. Delivery is at-least-once; the service-side transition is idempotent
// so replays are harmless.
type DispatchConsumer struct {
	reader   *kafka.Reader
	service  ports.Service
	logger   *slog.Logger
	instance string
}

// NewDispatchConsumer joins the given consumer group on the dispatched-orders
// topic.
func NewDispatchConsumer(brokers []string, topic, groupID string, service ports.Service, logger *slog.Logger) *DispatchConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		service:  service,
		logger:   logger.With(slog.String("consumer.instance", uuid.NewString())),
		instance: groupID,
	}
}

// Close releases the reader resources.
func (c *DispatchConsumer) Close() error { return c.reader.Close() }

// Run consumes dispatch notifications until the context is canceled. A bad
// payload or an unmatched order id is logged and dropped; neither halts the
// stream.
func (c *DispatchConsumer) Run(ctx context.Context) {
	c.logger.Info("dispatch consumer started", slog.String("consumer.group", c.instance))
	for {
		raw, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				c.logger.Error("dispatch consumer stopped", slog.String("error", err.Error()))
			}
			return
		}
		c.handle(ctx, raw)
	}
}

func (c *DispatchConsumer) handle(ctx context.Context, raw kafka.Message) {
	var message ports.OrderDispatchedMessage
	if err := json.Unmarshal(raw.Value, &message); err != nil {
		c.logger.Error("dropping malformed dispatch message", slog.String("error", err.Error()))
		return
	}
	order, err := c.service.DispatchOrder(ctx, message)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		c.logger.Warn("dropping dispatch message for unknown order",
			slog.Int64("order.id", message.OrderID))
	case err != nil:
		c.logger.Error("failed to reconcile dispatched order",
			slog.Int64("order.id", message.OrderID), slog.String("error", err.Error()))
	default:
		c.logger.Info("order dispatched", slog.Int64("order.id", order.ID))
	}
}
