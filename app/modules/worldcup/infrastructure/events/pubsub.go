package worldcupevents

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// PubSub bundles the publisher and subscriber sides of one transport.
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Close closes both sides.
func (ps *PubSub) Close() error {
	pubErr := ps.Publisher.Close()
	if ps.Subscriber == nil {
		return pubErr
	}
	// gochannel uses one value for both sides.
	if c, ok := ps.Subscriber.(message.Publisher); ok && c == ps.Publisher {
		return pubErr
	}
	if subErr := ps.Subscriber.Close(); subErr != nil {
		return subErr
	}
	return pubErr
}

// NewPubSub returns a NATS-backed pubsub when natsURL is set, or an in-process
// gochannel pubsub otherwise.
func NewPubSub(natsURL string, logger *slog.Logger) (*PubSub, error) {
	wmLogger := watermill.NewSlogLogger(logger)
	if natsURL == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return &PubSub{Publisher: ch, Subscriber: ch}, nil
	}
	return NewNATSPubSub(natsURL, wmLogger)
}

// NewNATSPubSub connects watermill to core NATS subjects.
func NewNATSPubSub(natsURL string, logger watermill.LoggerAdapter) (*PubSub, error) {
	marshaler := &wmnats.NATSMarshaler{}
	options := []nc.Option{
		nc.Name("topbun-worldcup"),
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}
	jsConfig := wmnats.JetStreamConfig{Disabled: true}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: options,
			Marshaler:   marshaler,
			JetStream:   jsConfig,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:              natsURL,
			QueueGroupPrefix: "worldcup",
			SubscribersCount: 1,
			CloseTimeout:     10 * time.Second,
			NatsOptions:      options,
			Unmarshaler:      marshaler,
			JetStream:        jsConfig,
		},
		logger,
	)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return &PubSub{Publisher: publisher, Subscriber: subscriber}, nil
}
