package worldcup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	worldcupservice "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/application"
	worldcupevents "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/events"
	worldcuphandlers "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/handlers"
	worldcupmetrics "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/metrics"
	worldcupdb "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/repositories"
	worldcuprouter "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/router"
	worldcupsessions "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/sessions"
	"github.com/Black-And-White-Club/topbun-worldcup/config"
)

// Deps are the shared resources the worldcup module is built from.
type Deps struct {
	Config     *config.Config
	Logger     *slog.Logger
	Tracer     trace.Tracer
	Registry   *prometheus.Registry
	DB         *bun.DB
	Repo       worldcupdb.Repository
	Sessions   worldcupsessions.Store
	PubSub     *worldcupevents.PubSub
	HTTPRouter chi.Router
}

// Module represents the worldcup module.
type Module struct {
	service     worldcupservice.Service
	eventRouter *worldcuprouter.WorldcupRouter
	cancelFunc  context.CancelFunc
	logger      *slog.Logger
}

// NewModule creates a new worldcup module and mounts its HTTP routes.
func NewModule(ctx context.Context, deps Deps) (*Module, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Initializing worldcup module")

	var metrics worldcupmetrics.Metrics = worldcupmetrics.NewNoop()
	if deps.Registry != nil {
		pm, err := worldcupmetrics.NewPrometheusMetrics(deps.Registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register worldcup metrics: %w", err)
		}
		metrics = pm
	}

	service := worldcupservice.NewWorldcupService(
		deps.Repo,
		deps.Sessions,
		worldcupevents.NewEventPublisher(deps.PubSub.Publisher, logger),
		logger,
		metrics,
		deps.Tracer,
		deps.DB,
		worldcupservice.Config{KFactor: deps.Config.Worldcup.KFactor},
	)

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create event router: %w", err)
	}
	var registerer prometheus.Registerer
	if deps.Registry != nil {
		registerer = deps.Registry
	}
	eventRouter := worldcuprouter.NewWorldcupRouter(logger, router, deps.PubSub.Subscriber, metrics, deps.Tracer, registerer)
	eventRouter.Configure()

	if deps.HTTPRouter != nil {
		handlers := worldcuphandlers.NewWorldcupHandlers(service, logger, deps.Tracer)
		limiter := worldcuphandlers.NewIPRateLimiter(
			rate.Limit(deps.Config.Worldcup.RateLimitRPS),
			deps.Config.Worldcup.RateLimitBurst,
		)
		deps.HTTPRouter.Route("/api/worldcup", func(r chi.Router) {
			worldcuphandlers.Mount(r, handlers, limiter)
		})
	}

	return &Module{
		service:     service,
		eventRouter: eventRouter,
		logger:      logger,
	}, nil
}

// Run starts the event router and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting worldcup module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.eventRouter.Run(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Worldcup event router stopped", "error", err)
		return
	}
	m.logger.InfoContext(ctx, "Worldcup module goroutine stopped")
}

// Close stops the worldcup module.
func (m *Module) Close() error {
	m.logger.Info("Stopping worldcup module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if err := m.eventRouter.Close(); err != nil {
		m.logger.Error("Error stopping worldcup event router", "error", err)
		return fmt.Errorf("error stopping router: %w", err)
	}

	m.logger.Info("Worldcup module stopped")
	return nil
}

// GetService returns the worldcup service.
func (m *Module) GetService() worldcupservice.Service {
	return m.service
}
