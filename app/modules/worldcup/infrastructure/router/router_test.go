package worldcuprouter

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	worldcupevents "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/events"
	worldcupmetrics "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/metrics"
)

type recordingMetrics struct {
	worldcupmetrics.Metrics
	mu       sync.Mutex
	consumed []string
}

func (m *recordingMetrics) RecordEventConsumed(_ context.Context, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumed = append(m.consumed, topic)
}

func (m *recordingMetrics) Consumed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.consumed...)
}

func TestWorldcupRouter_ConsumesEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wmLogger := watermill.NewSlogLogger(logger)

	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, wmLogger)
	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	require.NoError(t, err)

	m := &recordingMetrics{Metrics: worldcupmetrics.NewNoop()}
	wr := NewWorldcupRouter(logger, router, pubSub, m, noop.NewTracerProvider().Tracer("test"), prometheus.NewRegistry())
	wr.Configure()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = wr.Run(ctx) }()
	t.Cleanup(func() { _ = wr.Close() })

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	publisher := worldcupevents.NewEventPublisher(pubSub, logger)
	pubCtx := worldcupevents.WithCorrelationID(ctx, "corr-1")

	// Undecodable payloads are dropped without being counted.
	require.NoError(t, pubSub.Publish(worldcupevents.MatchDecidedV1, message.NewMessage(watermill.NewUUID(), []byte("{"))))

	require.NoError(t, publisher.Publish(pubCtx, worldcupevents.MatchDecidedV1, worldcupevents.MatchDecidedPayloadV1{
		SessionKey: "s1", WinnerID: 1, LoserID: 2, RatingApplied: true,
	}))
	require.NoError(t, publisher.Publish(pubCtx, worldcupevents.TournamentCompletedV1, worldcupevents.TournamentCompletedPayloadV1{
		SessionKey: "s1", WinnerID: 1, WinnerName: "Whopper", Size: 4,
	}))

	assert.Eventually(t, func() bool { return len(m.Consumed()) == 2 }, 5*time.Second, 20*time.Millisecond)
	assert.ElementsMatch(t, []string{worldcupevents.MatchDecidedV1, worldcupevents.TournamentCompletedV1}, m.Consumed())
}

func TestNewWorldcupRouter_SkipsMetricsInTestEnv(t *testing.T) {
	t.Setenv(TestEnvironmentFlag, TestEnvironmentValue)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	wr := NewWorldcupRouter(logger, router, nil, nil, nil, prometheus.NewRegistry())
	assert.Nil(t, wr.metricsBuilder)
	assert.NotNil(t, wr.metrics)
}
