// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shoe-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TypeOrderCreated       = "OrderCreated"
	TypeOrderStatusChanged = "OrderStatusChanged"
)

// Event is the envelope written to the orders topic.
type Event struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	Status             string             `json:"status"`
	Total              float64            `json:"total"`
	CancellationReason string             `json:"cancellation_reason,omitempty"`
	Items              []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string  `json:"product_id"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// NewOrderEvent builds an envelope for order.
func NewOrderEvent(eventType string, order *domain.Order, at time.Time) Event {
	items := make([]OrderItemPayload, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderItemPayload{
			ProductID: it.ProductID.String(),
			Size:      it.Size,
			Quantity:  it.Quantity,
			Price:     it.Price.Float(),
		})
	}

	return Event{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Payload: OrderPayload{
			ID:                 order.ID.String(),
			UserID:             order.UserID.String(),
			Status:             string(order.Status),
			Total:              order.Total,
			CancellationReason: order.CancellationReason,
			Items:              items,
		},
		Timestamp: at.UTC(),
	}
}

// Publisher emits order events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by order id so that all events of
// one order land on the same partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.EventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Payload.ID),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
