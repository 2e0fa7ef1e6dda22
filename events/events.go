// Package events publishes order lifecycle events to Kafka and to connected admin dashboards.
package events

import (
	"context"
	"time"

	"github.com/junaidrashid-git/storefront-api/config"
	"go.uber.org/zap"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderPaymentStatus = "order.payment_status_changed"
	OrderDeleted       = "order.deleted"
)

// Event is the JSON envelope written to the topic and sent to websocket clients
type Event struct {
	Type       string    `json:"type"`
	OrderRef   string    `json:"order_ref"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// NewEvent stamps an event with the current time
func NewEvent(eventType, orderRef string, data any) Event {
	return Event{Type: eventType, OrderRef: orderRef, OccurredAt: time.Now().UTC(), Data: data}
}

// Publisher sends events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// New returns a Kafka publisher, or a no-op publisher when no brokers are configured
func New(cfg config.KafkaConfig, logger *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		logger.Info("kafka.brokers not set, order events are not published")
		return NoopPublisher{}
	}
	return NewKafkaPublisher(cfg.Brokers, cfg.Topic, logger)
}

// NoopPublisher drops events
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
