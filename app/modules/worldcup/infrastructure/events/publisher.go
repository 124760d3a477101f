package worldcupevents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

type correlationKey struct{}

// WithCorrelationID returns a context whose published events carry id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFromContext returns the correlation id set by WithCorrelationID.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// Publisher publishes worldcup events.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// EventPublisher encodes payloads as JSON watermill messages.
type EventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewEventPublisher wraps a watermill publisher.
func NewEventPublisher(publisher message.Publisher, logger *slog.Logger) *EventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventPublisher{publisher: publisher, logger: logger}
}

func (p *EventPublisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	msg.Metadata.Set("topic", topic)
	msg.Metadata.Set("content_type", "application/json")

	correlationID := CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = watermill.NewUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "Published worldcup event",
		slog.String("topic", topic),
		slog.String("message_id", msg.UUID),
		slog.String("correlation_id", correlationID),
	)
	return nil
}

var _ Publisher = (*EventPublisher)(nil)
