package worldcupservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
	worldcupdb "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/repositories"
)

// ApplyMatchResult reads both competitors under a row lock, computes their new
// Elo ratings and writes them with a version check. A missing competitor aborts
// before anything is written.
func (s *WorldcupService) ApplyMatchResult(ctx context.Context, winnerID, loserID worldcupdomain.CompetitorID) (*worldcupdomain.RatingChange, error) {
	identifier := fmt.Sprintf("%d>%d", winnerID, loserID)
	return withTelemetry(s, ctx, "ApplyMatchResult", identifier, func(ctx context.Context) (*worldcupdomain.RatingChange, error) {
		if winnerID == loserID {
			return nil, fmt.Errorf("%w: %d", ErrSameCompetitor, winnerID)
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*worldcupdomain.RatingChange, error) {
			return s.applyMatchResultLogic(ctx, db, winnerID, loserID)
		})
	})
}

func (s *WorldcupService) applyMatchResultLogic(ctx context.Context, db bun.IDB, winnerID, loserID worldcupdomain.CompetitorID) (*worldcupdomain.RatingChange, error) {
	rows, err := s.repo.GetByIDsForUpdate(ctx, db, int64(winnerID), int64(loserID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock competitors: %w", err)
	}

	byID := make(map[worldcupdomain.CompetitorID]worldcupdb.Competitor, len(rows))
	for _, row := range rows {
		byID[worldcupdomain.CompetitorID(row.ID)] = row
	}
	winner, ok := byID[winnerID]
	if !ok {
		return nil, fmt.Errorf("%w: winner %d", ErrCompetitorNotFound, winnerID)
	}
	loser, ok := byID[loserID]
	if !ok {
		return nil, fmt.Errorf("%w: loser %d", ErrCompetitorNotFound, loserID)
	}

	change := worldcupdomain.RateWin(toDomainCompetitor(winner), toDomainCompetitor(loser), s.kFactor)

	updates := []worldcupdb.RatingUpdate{
		{ID: winner.ID, ExpectedVersion: winner.Version, Rating: change.WinnerAfter, Delta: change.WinnerDelta()},
		{ID: loser.ID, ExpectedVersion: loser.Version, Rating: change.LoserAfter, Delta: change.LoserDelta()},
	}
	for _, u := range updates {
		if err := s.repo.ApplyRating(ctx, db, u); err != nil {
			if errors.Is(err, worldcupdb.ErrVersionConflict) {
				s.metrics.RecordRatingConflict(ctx)
			}
			return nil, fmt.Errorf("failed to write rating for %d: %w", u.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "Ratings updated",
		slog.Int64("winner_id", winner.ID),
		slog.Int64("loser_id", loser.ID),
		slog.Float64("winner_delta", change.WinnerDelta()),
		slog.Float64("loser_delta", change.LoserDelta()),
	)
	return &change, nil
}

// GetRankings lists competitors by rating, highest first.
func (s *WorldcupService) GetRankings(ctx context.Context, limit int) ([]RankingEntry, error) {
	return withTelemetry(s, ctx, "GetRankings", fmt.Sprintf("limit=%d", limit), func(ctx context.Context) ([]RankingEntry, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) ([]RankingEntry, error) {
			rows, err := s.repo.ListRankings(ctx, db, limit)
			if err != nil {
				return nil, fmt.Errorf("failed to list rankings: %w", err)
			}
			entries := make([]RankingEntry, len(rows))
			for i, row := range rows {
				entries[i] = RankingEntry{
					Rank:       i + 1,
					ID:         worldcupdomain.CompetitorID(row.ID),
					Name:       row.Name,
					NameEn:     row.NameEn,
					Brand:      row.Brand,
					ImageURL:   row.ImageURL,
					Rating:     row.Rating,
					MatchCount: row.MatchCount,
					LastDelta:  row.LastDelta,
				}
			}
			return entries, nil
		})
	})
}
