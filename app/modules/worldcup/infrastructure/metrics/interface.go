package worldcupmetrics

import (
	"context"
	"time"
)

// Metrics records worldcup service and event activity.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordTournamentStarted(ctx context.Context, size int)
	RecordMatchDecided(ctx context.Context, ratingApplied bool)
	RecordTournamentCompleted(ctx context.Context, size int)
	RecordRatingConflict(ctx context.Context)
	RecordEventConsumed(ctx context.Context, topic string)
}
