package worldcuprouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	worldcupevents "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/events"
	worldcupmetrics "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/metrics"
)

const (
	// TestEnvironmentFlag is the flag to check if we're in a test environment
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// WorldcupRouter consumes worldcup events off the bus.
type WorldcupRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	metrics        worldcupmetrics.Metrics
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewWorldcupRouter creates a new WorldcupRouter. Router metrics are only
// registered when a registry is given and APP_ENV is not "test".
func NewWorldcupRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	m worldcupmetrics.Metrics,
	tracer trace.Tracer,
	prometheusRegistry prometheus.Registerer,
) *WorldcupRouter {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = worldcupmetrics.NewNoop()
	}

	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "worldcup", "")
		metricsBuilder = &builder
	} else {
		logger.Info("Skipping Prometheus router metrics",
			"prometheusRegistryProvided", prometheusRegistry != nil,
			"inTestEnv", inTestEnv,
		)
	}

	return &WorldcupRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		metrics:        m,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure installs middleware and registers the event consumers.
func (r *WorldcupRouter) Configure() {
	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware for Worldcup")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	registerConsumer(r, worldcupevents.MatchDecidedV1, r.handleMatchDecided)
	registerConsumer(r, worldcupevents.TournamentCompletedV1, r.handleTournamentCompleted)
}

// registerConsumer decodes the JSON payload of topic into T before calling handle.
// Undecodable messages are logged and acked so they do not redeliver forever.
func registerConsumer[T any](r *WorldcupRouter, topic string, handle func(ctx context.Context, payload *T) error) {
	handlerName := "worldcup." + topic

	r.Router.AddConsumerHandler(handlerName, topic, r.subscriber, func(msg *message.Message) error {
		ctx := worldcupevents.WithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))
		if r.tracer != nil {
			var span trace.Span
			ctx, span = r.tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message_id", msg.UUID),
			))
			defer span.End()
		}

		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			r.logger.ErrorContext(ctx, "Dropping undecodable event",
				slog.String("topic", topic),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			return nil
		}

		if err := handle(ctx, &payload); err != nil {
			return err
		}
		r.metrics.RecordEventConsumed(ctx, topic)
		return nil
	})
}

func (r *WorldcupRouter) handleMatchDecided(ctx context.Context, p *worldcupevents.MatchDecidedPayloadV1) error {
	r.logger.InfoContext(ctx, "Match decided",
		slog.String("correlation_id", worldcupevents.CorrelationIDFromContext(ctx)),
		slog.String("session_key", p.SessionKey),
		slog.Int("round", p.Round),
		slog.Int("match", p.Match),
		slog.Int64("winner_id", int64(p.WinnerID)),
		slog.Int64("loser_id", int64(p.LoserID)),
		slog.Bool("rating_applied", p.RatingApplied),
		slog.Float64("winner_delta", p.WinnerDelta),
	)
	return nil
}

func (r *WorldcupRouter) handleTournamentCompleted(ctx context.Context, p *worldcupevents.TournamentCompletedPayloadV1) error {
	r.logger.InfoContext(ctx, "Tournament completed",
		slog.String("correlation_id", worldcupevents.CorrelationIDFromContext(ctx)),
		slog.String("session_key", p.SessionKey),
		slog.Int64("winner_id", int64(p.WinnerID)),
		slog.String("winner_name", p.WinnerName),
		slog.Int("size", p.Size),
	)
	return nil
}

// Run blocks until ctx is done or the router is closed.
func (r *WorldcupRouter) Run(ctx context.Context) error {
	return r.Router.Run(ctx)
}

// Close stops the router.
func (r *WorldcupRouter) Close() error {
	return r.Router.Close()
}
