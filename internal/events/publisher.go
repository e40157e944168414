// Package events publishes order lifecycle notifications to Kafka for
// downstream consumers (tracking views, notification fan-out). Publishing is
// best effort; the order state is durable before any event is emitted.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"

	"github.com/craftline/storefront/internal/domain/order"
)

var _ order.EventPublisher = (*KafkaPublisher)(nil)
var _ order.EventPublisher = NopPublisher{}

// StatusChangedEvent is the wire format for an order status transition.
type StatusChangedEvent struct {
	OrderID string    `json:"order_id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	At      time.Time `json:"at"`
}

// KafkaPublisher writes status change events to a Kafka topic, keyed by
// order id so per-order ordering is preserved.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher writing to the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// OrderStatusChanged publishes one transition event.
func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, orderID string, from, to order.Status, at time.Time) error {
	payload, err := json.Marshal(StatusChangedEvent{
		OrderID: orderID,
		From:    from.String(),
		To:      to.String(),
		At:      at,
	})
	if err != nil {
		return errors.Wrap(err, "marshal status event")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID),
		Value: payload,
	})
	if err != nil {
		return errors.Wrap(err, "write status event")
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops all events. Used when no brokers are configured and in
// tests.
type NopPublisher struct{}

// OrderStatusChanged discards the event.
func (NopPublisher) OrderStatusChanged(context.Context, string, order.Status, order.Status, time.Time) error {
	return nil
}
