package worldcupdomain

import "math"

// DefaultKFactor is the fixed Elo sensitivity used for every decided match.
const DefaultKFactor = 32.0

// InitialRating is the rating a competitor starts with.
const InitialRating = 1500.0

// ExpectedScore is the logistic win expectation of rating against opponent.
func ExpectedScore(rating, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-rating)/400))
}

// ComputeElo returns the new ratings of both sides. Each side's expectation is
// computed from the opposing rating. No rounding is applied.
func ComputeElo(ratingWinner, ratingLoser, scoreWinner, scoreLoser, kFactor float64) (float64, float64) {
	expectedWinner := ExpectedScore(ratingWinner, ratingLoser)
	expectedLoser := ExpectedScore(ratingLoser, ratingWinner)
	return ratingWinner + kFactor*(scoreWinner-expectedWinner),
		ratingLoser + kFactor*(scoreLoser-expectedLoser)
}

// RatingChange describes one decided match's effect on both competitors.
type RatingChange struct {
	WinnerID     CompetitorID `json:"winner_id"`
	LoserID      CompetitorID `json:"loser_id"`
	WinnerBefore float64      `json:"winner_before"`
	LoserBefore  float64      `json:"loser_before"`
	WinnerAfter  float64      `json:"winner_after"`
	LoserAfter   float64      `json:"loser_after"`
}

// WinnerDelta is the winner's rating movement.
func (c RatingChange) WinnerDelta() float64 { return c.WinnerAfter - c.WinnerBefore }

// LoserDelta is the loser's rating movement.
func (c RatingChange) LoserDelta() float64 { return c.LoserAfter - c.LoserBefore }

// RateWin applies a 1/0 result between winner and loser.
func RateWin(winner, loser Competitor, kFactor float64) RatingChange {
	if kFactor <= 0 {
		kFactor = DefaultKFactor
	}
	w, l := ComputeElo(winner.Rating, loser.Rating, 1, 0, kFactor)
	return RatingChange{
		WinnerID:     winner.ID,
		LoserID:      loser.ID,
		WinnerBefore: winner.Rating,
		LoserBefore:  loser.Rating,
		WinnerAfter:  w,
		LoserAfter:   l,
	}
}
