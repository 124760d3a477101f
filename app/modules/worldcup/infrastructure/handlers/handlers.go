package worldcuphandlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	worldcupservice "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/application"
)

// Handlers serves the worldcup HTTP API.
type Handlers interface {
	HandleSizes(w http.ResponseWriter, r *http.Request)
	HandleStartTournament(w http.ResponseWriter, r *http.Request)
	HandleGetTournament(w http.ResponseWriter, r *http.Request)
	HandleDecide(w http.ResponseWriter, r *http.Request)
	HandleAbandonTournament(w http.ResponseWriter, r *http.Request)
	HandleRankings(w http.ResponseWriter, r *http.Request)
	HandleRankingsXLSX(w http.ResponseWriter, r *http.Request)
	HandleRankingsChart(w http.ResponseWriter, r *http.Request)
}

// WorldcupHandlers implements the Handlers interface.
type WorldcupHandlers struct {
	service worldcupservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewWorldcupHandlers creates a new WorldcupHandlers instance.
func NewWorldcupHandlers(
	service worldcupservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("worldcup")
	}
	return &WorldcupHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// Mount registers the API on r. Decisions are rate limited per client IP.
func Mount(r chi.Router, h Handlers, limiter *IPRateLimiter) {
	r.Use(CorrelationIDMiddleware)

	r.Get("/sizes", h.HandleSizes)

	r.Route("/tournaments", func(r chi.Router) {
		r.Post("/", h.HandleStartTournament)
		r.Get("/{key}", h.HandleGetTournament)
		r.Delete("/{key}", h.HandleAbandonTournament)
		r.With(RateLimitMiddleware(limiter)).Post("/{key}/decisions", h.HandleDecide)
	})

	r.Get("/rankings", h.HandleRankings)
	r.Get("/rankings.xlsx", h.HandleRankingsXLSX)
	r.Get("/rankings/chart.png", h.HandleRankingsChart)
}
