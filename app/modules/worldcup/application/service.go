package worldcupservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
	worldcupevents "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/events"
	worldcupmetrics "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/metrics"
	worldcupdb "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/repositories"
	worldcupsessions "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/sessions"
)

const serviceName = "WorldcupService"

// Config holds tunables of the worldcup service. Zero values pick production defaults.
type Config struct {
	KFactor  float64
	Shuffler worldcupdomain.Shuffler
	Now      func() time.Time
	NewKey   func() string
}

// WorldcupService implements the Service interface.
type WorldcupService struct {
	repo      worldcupdb.Repository
	sessions  worldcupsessions.Store
	publisher worldcupevents.Publisher
	logger    *slog.Logger
	metrics   worldcupmetrics.Metrics
	tracer    trace.Tracer
	db        *bun.DB

	kFactor  float64
	shuffler worldcupdomain.Shuffler
	now      func() time.Time
	newKey   func() string
}

// NewWorldcupService creates a new WorldcupService.
func NewWorldcupService(
	repo worldcupdb.Repository,
	sessions worldcupsessions.Store,
	publisher worldcupevents.Publisher,
	logger *slog.Logger,
	metrics worldcupmetrics.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
	cfg Config,
) *WorldcupService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = worldcupmetrics.NewNoop()
	}
	if cfg.KFactor <= 0 {
		cfg.KFactor = worldcupdomain.DefaultKFactor
	}
	if cfg.Shuffler == nil {
		cfg.Shuffler = worldcupdomain.NewDefaultShuffler()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewKey == nil {
		cfg.NewKey = func() string { return uuid.NewString() }
	}
	return &WorldcupService{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		kFactor:   cfg.KFactor,
		shuffler:  cfg.Shuffler,
		now:       cfg.Now,
		newKey:    cfg.NewKey,
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[T any] func(ctx context.Context) (T, error)

// isDomainFailure reports whether err is an expected business outcome rather
// than an infrastructure fault.
func isDomainFailure(err error) bool {
	for _, target := range []error{
		worldcupdomain.ErrInvalidBracketSize,
		worldcupdomain.ErrPoolTooSmall,
		worldcupdomain.ErrWinnerNotInMatch,
		worldcupdomain.ErrTournamentComplete,
		ErrCompetitorNotFound,
		ErrSameCompetitor,
		ErrSizeNotOffered,
		ErrSessionNotFound,
		ErrSessionConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *WorldcupService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[T],
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	correlationID := worldcupevents.CorrelationIDFromContext(ctx)
	s.logger.InfoContext(ctx, "Operation triggered",
		slog.String("correlation_id", correlationID),
		slog.String("operation", operationName),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("correlation_id", correlationID),
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		if isDomainFailure(err) {
			s.logger.WarnContext(ctx, "Operation returned failure result",
				slog.String("correlation_id", correlationID),
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.String("failure", err.Error()),
			)
			return result, wrappedErr
		}

		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("correlation_id", correlationID),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		slog.String("correlation_id", correlationID),
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[T any](
	s *WorldcupService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (T, error),
) (T, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// publish emits an event. Failures are logged and never fail the caller.
func (s *WorldcupService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	}
}

func toDomainCompetitor(c worldcupdb.Competitor) worldcupdomain.Competitor {
	return worldcupdomain.Competitor{
		ID:         worldcupdomain.CompetitorID(c.ID),
		Name:       c.Name,
		NameEn:     c.NameEn,
		Brand:      c.Brand,
		ImageURL:   c.ImageURL,
		Rating:     c.Rating,
		MatchCount: c.MatchCount,
		LastDelta:  c.LastDelta,
	}
}
