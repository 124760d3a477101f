package worldcupdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const ratingTolerance = 1e-9

func TestComputeElo_EqualRatings(t *testing.T) {
	w, l := ComputeElo(1500, 1500, 1, 0, DefaultKFactor)

	assert.InDelta(t, 1516.0, w, ratingTolerance)
	assert.InDelta(t, 1484.0, l, ratingTolerance)
}

func TestComputeElo_ZeroSum(t *testing.T) {
	tests := []struct {
		name   string
		winner float64
		loser  float64
		k      float64
	}{
		{name: "equal", winner: 1500, loser: 1500, k: 32},
		{name: "favourite wins", winner: 1800, loser: 1400, k: 32},
		{name: "upset", winner: 1300, loser: 1900, k: 32},
		{name: "fractional ratings", winner: 1523.37, loser: 1476.63, k: 32},
		{name: "different k", winner: 1600, loser: 1550, k: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, l := ComputeElo(tt.winner, tt.loser, 1, 0, tt.k)

			assert.InDelta(t, -(l - tt.loser), w-tt.winner, ratingTolerance)
			assert.Greater(t, w, tt.winner, "a win always gains rating")
			assert.Less(t, l, tt.loser, "a loss always costs rating")
		})
	}
}

func TestComputeElo_UpsetSwingsMore(t *testing.T) {
	upsetWinner, _ := ComputeElo(1400, 1600, 1, 0, DefaultKFactor)
	expectedWinner, _ := ComputeElo(1600, 1400, 1, 0, DefaultKFactor)

	assert.Greater(t, upsetWinner-1400, expectedWinner-1600)

	biggerUpset, _ := ComputeElo(1200, 1800, 1, 0, DefaultKFactor)
	assert.Greater(t, biggerUpset-1200, upsetWinner-1400)
}

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1500, 1500), ratingTolerance)
	assert.InDelta(t, 1.0, ExpectedScore(1700, 1500)+ExpectedScore(1500, 1700), ratingTolerance)
	// 400 points is a 10:1 favourite.
	assert.InDelta(t, 10.0/11.0, ExpectedScore(1900, 1500), ratingTolerance)
}

func TestRateWin(t *testing.T) {
	winner := Competitor{ID: 1, Rating: 1500}
	loser := Competitor{ID: 2, Rating: 1500}

	change := RateWin(winner, loser, 0)

	assert.Equal(t, CompetitorID(1), change.WinnerID)
	assert.Equal(t, CompetitorID(2), change.LoserID)
	assert.InDelta(t, 16.0, change.WinnerDelta(), ratingTolerance)
	assert.InDelta(t, -16.0, change.LoserDelta(), ratingTolerance)
	assert.InDelta(t, 1516.0, change.WinnerAfter, ratingTolerance)
	assert.InDelta(t, 1484.0, change.LoserAfter, ratingTolerance)
}
