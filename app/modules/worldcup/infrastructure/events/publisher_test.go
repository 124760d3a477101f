package worldcupevents

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestEventPublisher_Publish(t *testing.T) {
	ch := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer ch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := ch.Subscribe(ctx, MatchDecidedV1)
	require.NoError(t, err)

	pub := NewEventPublisher(ch, slog.Default())
	payload := MatchDecidedPayloadV1{
		SessionKey:    "abc",
		Round:         1,
		Match:         0,
		WinnerID:      3,
		LoserID:       7,
		WinnerRating:  1516,
		LoserRating:   1484,
		WinnerDelta:   16,
		LoserDelta:    -16,
		RatingApplied: true,
		DecidedAt:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, pub.Publish(WithCorrelationID(ctx, "corr-1"), MatchDecidedV1, payload))

	msg := receive(t, messages)
	assert.Equal(t, "corr-1", middleware.MessageCorrelationID(msg))
	assert.Equal(t, MatchDecidedV1, msg.Metadata.Get("topic"))

	var got MatchDecidedPayloadV1
	require.NoError(t, json.Unmarshal(msg.Payload, &got))
	assert.Equal(t, payload, got)
}

func TestEventPublisher_GeneratesCorrelationID(t *testing.T) {
	ch := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer ch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := ch.Subscribe(ctx, TournamentCompletedV1)
	require.NoError(t, err)

	pub := NewEventPublisher(ch, nil)
	require.NoError(t, pub.Publish(ctx, TournamentCompletedV1, TournamentCompletedPayloadV1{SessionKey: "k", WinnerID: 1}))

	msg := receive(t, messages)
	assert.NotEmpty(t, middleware.MessageCorrelationID(msg))
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("broker down") }
func (failingPublisher) Close() error                              { return nil }

func TestEventPublisher_PropagatesErrors(t *testing.T) {
	pub := NewEventPublisher(failingPublisher{}, nil)

	err := pub.Publish(context.Background(), TournamentStartedV1, TournamentStartedPayloadV1{})
	assert.ErrorContains(t, err, "broker down")

	err = pub.Publish(context.Background(), TournamentStartedV1, func() {})
	assert.ErrorContains(t, err, "marshal")
}

func TestNewPubSub_InProcess(t *testing.T) {
	ps, err := NewPubSub("", slog.Default())
	require.NoError(t, err)
	assert.Same(t, ps.Publisher.(*gochannel.GoChannel), ps.Subscriber.(*gochannel.GoChannel))
	assert.NoError(t, ps.Close())
}
