package worldcupservice

import (
	"context"

	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
)

// Service defines the worldcup tournament and rating operations.
type Service interface {
	// AvailableSizes lists the offered bracket sizes the current pool can fill.
	AvailableSizes(ctx context.Context) ([]int, error)

	// StartTournament draws a new bracket and stores it under a fresh session key.
	StartTournament(ctx context.Context, size int) (*Session, error)

	// GetTournament loads a stored bracket.
	GetTournament(ctx context.Context, key string) (*Session, error)

	// Decide records winnerID on the current match, saves the advanced bracket
	// against the version it was read at, then updates both ratings. A
	// concurrent decision on the same key fails with ErrSessionConflict. A
	// failed rating update does not stop the bracket.
	Decide(ctx context.Context, key string, winnerID worldcupdomain.CompetitorID) (*DecisionResult, error)

	// AbandonTournament discards a stored bracket.
	AbandonTournament(ctx context.Context, key string) error

	// ApplyMatchResult atomically updates the ratings of one decided match.
	ApplyMatchResult(ctx context.Context, winnerID, loserID worldcupdomain.CompetitorID) (*worldcupdomain.RatingChange, error)

	// GetRankings lists competitors by rating. A limit <= 0 returns all.
	GetRankings(ctx context.Context, limit int) ([]RankingEntry, error)
}

// Session is a stored bracket and the key it lives under.
type Session struct {
	Key   string                          `json:"key"`
	State *worldcupdomain.TournamentState `json:"state"`
}

// DecisionResult is the outcome of one Decide call.
type DecisionResult struct {
	Session *Session             `json:"session"`
	Match   worldcupdomain.Match `json:"match"`
	// Rating is nil when the rating update failed; RatingError then says why.
	Rating      *worldcupdomain.RatingChange `json:"rating,omitempty"`
	RatingError string                       `json:"rating_error,omitempty"`
	Completed   bool                         `json:"completed"`
	Champion    *worldcupdomain.Competitor   `json:"champion,omitempty"`
}

// RankingEntry is one row of the rankings table.
type RankingEntry struct {
	Rank       int                         `json:"rank"`
	ID         worldcupdomain.CompetitorID `json:"id"`
	Name       string                      `json:"name"`
	NameEn     string                      `json:"name_en,omitempty"`
	Brand      string                      `json:"brand,omitempty"`
	ImageURL   string                      `json:"image_url"`
	Rating     float64                     `json:"rating"`
	MatchCount int                         `json:"match_count"`
	LastDelta  float64                     `json:"last_delta"`
}
