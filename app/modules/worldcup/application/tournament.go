package worldcupservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/uptrace/bun"

	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
	worldcupevents "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/events"
)

// AvailableSizes lists the offered bracket sizes the current pool can fill.
func (s *WorldcupService) AvailableSizes(ctx context.Context) ([]int, error) {
	return withTelemetry(s, ctx, "AvailableSizes", "", func(ctx context.Context) ([]int, error) {
		pool, err := s.loadPool(ctx)
		if err != nil {
			return nil, err
		}
		if len(pool) < worldcupdomain.MinPoolSize {
			return nil, fmt.Errorf("%w: need %d, have %d", worldcupdomain.ErrPoolTooSmall, worldcupdomain.MinPoolSize, len(pool))
		}
		return worldcupdomain.AvailableSizes(len(pool)), nil
	})
}

// StartTournament draws a bracket of size from the current pool.
func (s *WorldcupService) StartTournament(ctx context.Context, size int) (*Session, error) {
	return withTelemetry(s, ctx, "StartTournament", fmt.Sprintf("size=%d", size), func(ctx context.Context) (*Session, error) {
		if !slices.Contains(worldcupdomain.OfferedSizes, size) {
			if !worldcupdomain.IsValidBracketSize(size) {
				return nil, fmt.Errorf("%w: got %d", worldcupdomain.ErrInvalidBracketSize, size)
			}
			return nil, fmt.Errorf("%w: %d", ErrSizeNotOffered, size)
		}

		pool, err := s.loadPool(ctx)
		if err != nil {
			return nil, err
		}

		state, err := worldcupdomain.NewTournament(pool, size, s.shuffler)
		if err != nil {
			return nil, err
		}

		session := &Session{Key: s.newKey(), State: state}
		if err := s.sessions.Save(ctx, session.Key, state); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}

		ids := make([]worldcupdomain.CompetitorID, 0, size)
		for _, m := range state.Rounds[0].Matches {
			ids = append(ids, m.SlotA.ID, m.SlotB.ID)
		}
		s.publish(ctx, worldcupevents.TournamentStartedV1, worldcupevents.TournamentStartedPayloadV1{
			SessionKey:    session.Key,
			Size:          size,
			TotalRounds:   state.TotalRounds,
			CompetitorIDs: ids,
			StartedAt:     s.now().UTC(),
		})
		s.metrics.RecordTournamentStarted(ctx, size)

		return session, nil
	})
}

// GetTournament loads the bracket stored under key.
func (s *WorldcupService) GetTournament(ctx context.Context, key string) (*Session, error) {
	return withTelemetry(s, ctx, "GetTournament", key, func(ctx context.Context) (*Session, error) {
		state, err := s.sessions.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		return &Session{Key: key, State: state}, nil
	})
}

// Decide resolves the current match of the bracket stored under key.
func (s *WorldcupService) Decide(ctx context.Context, key string, winnerID worldcupdomain.CompetitorID) (*DecisionResult, error) {
	identifier := fmt.Sprintf("%s/%d", key, winnerID)
	return withTelemetry(s, ctx, "Decide", identifier, func(ctx context.Context) (*DecisionResult, error) {
		state, err := s.sessions.Load(ctx, key)
		if err != nil {
			return nil, err
		}

		match, ok := state.PendingMatch()
		if !ok {
			return nil, worldcupdomain.ErrTournamentComplete
		}
		loser, ok := match.Opponent(winnerID)
		if !ok {
			return nil, fmt.Errorf("%w: competitor %d", worldcupdomain.ErrWinnerNotInMatch, winnerID)
		}
		roundIdx, matchIdx := state.CurrentRound, state.CurrentMatch

		// The bracket is claimed before any rating is written. A stale version
		// stops here with nothing rated.
		next, err := state.Advance(winnerID)
		if err != nil {
			return nil, err
		}
		if err := s.sessions.CompareAndSave(ctx, key, state.Version, next); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}

		result := &DecisionResult{}
		change, ratingErr := s.ApplyMatchResult(ctx, winnerID, loser.ID)
		if ratingErr != nil {
			// Play continues; the caller sees the failure in the result.
			s.logger.WarnContext(ctx, "Rating update failed, bracket already advanced",
				slog.String("session_key", key),
				slog.Any("error", ratingErr),
			)
			result.RatingError = ratingErr.Error()
		} else {
			result.Rating = change
		}

		result.Session = &Session{Key: key, State: next}
		result.Match = next.Rounds[roundIdx].Matches[matchIdx]
		result.Completed = next.IsComplete()

		decided := worldcupevents.MatchDecidedPayloadV1{
			SessionKey:    key,
			Round:         roundIdx,
			Match:         matchIdx,
			WinnerID:      winnerID,
			LoserID:       loser.ID,
			RatingApplied: change != nil,
			DecidedAt:     s.now().UTC(),
		}
		if change != nil {
			decided.WinnerRating = change.WinnerAfter
			decided.LoserRating = change.LoserAfter
			decided.WinnerDelta = change.WinnerDelta()
			decided.LoserDelta = change.LoserDelta()
		}
		s.publish(ctx, worldcupevents.MatchDecidedV1, decided)
		s.metrics.RecordMatchDecided(ctx, change != nil)

		if champion, ok := next.Winner(); ok {
			result.Champion = &champion
			s.publish(ctx, worldcupevents.TournamentCompletedV1, worldcupevents.TournamentCompletedPayloadV1{
				SessionKey:  key,
				WinnerID:    champion.ID,
				WinnerName:  champion.Name,
				Size:        next.Size(),
				CompletedAt: s.now().UTC(),
			})
			s.metrics.RecordTournamentCompleted(ctx, next.Size())
		}

		return result, nil
	})
}

// AbandonTournament deletes the bracket stored under key. Unknown keys are not an error.
func (s *WorldcupService) AbandonTournament(ctx context.Context, key string) error {
	_, err := withTelemetry(s, ctx, "AbandonTournament", key, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.sessions.Delete(ctx, key)
	})
	return err
}

func (s *WorldcupService) loadPool(ctx context.Context) ([]worldcupdomain.Competitor, error) {
	return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) ([]worldcupdomain.Competitor, error) {
		rows, err := s.repo.ListPool(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("failed to load pool: %w", err)
		}
		pool := make([]worldcupdomain.Competitor, len(rows))
		for i, row := range rows {
			pool[i] = toDomainCompetitor(row)
		}
		return pool, nil
	})
}

var _ Service = (*WorldcupService)(nil)
