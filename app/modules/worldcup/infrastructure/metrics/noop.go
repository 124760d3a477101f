package worldcupmetrics

import (
	"context"
	"time"
)

type noop struct{}

// NewNoop returns a Metrics that discards everything.
func NewNoop() Metrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordTournamentStarted(context.Context, int)                           {}
func (noop) RecordMatchDecided(context.Context, bool)                               {}
func (noop) RecordTournamentCompleted(context.Context, int)                         {}
func (noop) RecordRatingConflict(context.Context)                                   {}
func (noop) RecordEventConsumed(context.Context, string)                            {}
