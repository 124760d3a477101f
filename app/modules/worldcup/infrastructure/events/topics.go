package worldcupevents

import (
	"time"

	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
)

const (
	// TournamentStartedV1 is published when a new bracket is drawn.
	TournamentStartedV1 = "worldcup.tournament.started.v1"
	// MatchDecidedV1 is published after every decided match.
	MatchDecidedV1 = "worldcup.match.decided.v1"
	// TournamentCompletedV1 is published once a bracket has a winner.
	TournamentCompletedV1 = "worldcup.tournament.completed.v1"
)

// TournamentStartedPayloadV1 describes a freshly drawn bracket.
type TournamentStartedPayloadV1 struct {
	SessionKey    string                        `json:"session_key"`
	Size          int                           `json:"size"`
	TotalRounds   int                           `json:"total_rounds"`
	CompetitorIDs []worldcupdomain.CompetitorID `json:"competitor_ids"`
	StartedAt     time.Time                     `json:"started_at"`
}

// MatchDecidedPayloadV1 describes one decided match. Rating fields are zero
// when RatingApplied is false.
type MatchDecidedPayloadV1 struct {
	SessionKey    string                      `json:"session_key"`
	Round         int                         `json:"round"`
	Match         int                         `json:"match"`
	WinnerID      worldcupdomain.CompetitorID `json:"winner_id"`
	LoserID       worldcupdomain.CompetitorID `json:"loser_id"`
	WinnerRating  float64                     `json:"winner_rating"`
	LoserRating   float64                     `json:"loser_rating"`
	WinnerDelta   float64                     `json:"winner_delta"`
	LoserDelta    float64                     `json:"loser_delta"`
	RatingApplied bool                        `json:"rating_applied"`
	DecidedAt     time.Time                   `json:"decided_at"`
}

// TournamentCompletedPayloadV1 names the champion of a bracket.
type TournamentCompletedPayloadV1 struct {
	SessionKey  string                      `json:"session_key"`
	WinnerID    worldcupdomain.CompetitorID `json:"winner_id"`
	WinnerName  string                      `json:"winner_name"`
	Size        int                         `json:"size"`
	CompletedAt time.Time                   `json:"completed_at"`
}
