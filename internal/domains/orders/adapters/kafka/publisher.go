// Package kafka carries order events over the message broker.
package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Publisher writes accepted-order notifications to the outbound topic.
// Messages are keyed by order id so notifications for the same order land on
// the same partition.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher configures a writer that waits for all in-sync replicas before
// acknowledging, bounding the window in which an acceptance event can be lost.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			WriteTimeout: 5 * time.Second,
			ReadTimeout:  5 * time.Second,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Close releases the writer resources.
func (p *Publisher) Close() error { return p.writer.Close() }

// PublishOrderAccepted delivers a single acceptance notification.
func (p *Publisher) PublishOrderAccepted(ctx context.Context, message ports.OrderAcceptedMessage) error {
	value, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(message.OrderID, 10)),
		Value: value,
	})
}
