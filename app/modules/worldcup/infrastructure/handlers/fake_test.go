package worldcuphandlers

import (
	"context"

	worldcupservice "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/application"
	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	AvailableSizesFunc    func(ctx context.Context) ([]int, error)
	StartTournamentFunc   func(ctx context.Context, size int) (*worldcupservice.Session, error)
	GetTournamentFunc     func(ctx context.Context, key string) (*worldcupservice.Session, error)
	DecideFunc            func(ctx context.Context, key string, winnerID worldcupdomain.CompetitorID) (*worldcupservice.DecisionResult, error)
	AbandonTournamentFunc func(ctx context.Context, key string) error
	ApplyMatchResultFunc  func(ctx context.Context, winnerID, loserID worldcupdomain.CompetitorID) (*worldcupdomain.RatingChange, error)
	GetRankingsFunc       func(ctx context.Context, limit int) ([]worldcupservice.RankingEntry, error)
}

func (f *FakeService) AvailableSizes(ctx context.Context) ([]int, error) {
	if f.AvailableSizesFunc != nil {
		return f.AvailableSizesFunc(ctx)
	}
	return []int{16, 8, 4}, nil
}

func (f *FakeService) StartTournament(ctx context.Context, size int) (*worldcupservice.Session, error) {
	if f.StartTournamentFunc != nil {
		return f.StartTournamentFunc(ctx, size)
	}
	return newFakeSession("fake-key", size), nil
}

func (f *FakeService) GetTournament(ctx context.Context, key string) (*worldcupservice.Session, error) {
	if f.GetTournamentFunc != nil {
		return f.GetTournamentFunc(ctx, key)
	}
	return newFakeSession(key, 4), nil
}

func (f *FakeService) Decide(ctx context.Context, key string, winnerID worldcupdomain.CompetitorID) (*worldcupservice.DecisionResult, error) {
	if f.DecideFunc != nil {
		return f.DecideFunc(ctx, key, winnerID)
	}
	session := newFakeSession(key, 4)
	next, err := session.State.Advance(winnerID)
	if err != nil {
		return nil, err
	}
	return &worldcupservice.DecisionResult{
		Session: &worldcupservice.Session{Key: key, State: next},
		Match:   next.Rounds[0].Matches[0],
	}, nil
}

func (f *FakeService) AbandonTournament(ctx context.Context, key string) error {
	if f.AbandonTournamentFunc != nil {
		return f.AbandonTournamentFunc(ctx, key)
	}
	return nil
}

func (f *FakeService) ApplyMatchResult(ctx context.Context, winnerID, loserID worldcupdomain.CompetitorID) (*worldcupdomain.RatingChange, error) {
	if f.ApplyMatchResultFunc != nil {
		return f.ApplyMatchResultFunc(ctx, winnerID, loserID)
	}
	return &worldcupdomain.RatingChange{WinnerID: winnerID, LoserID: loserID}, nil
}

func (f *FakeService) GetRankings(ctx context.Context, limit int) ([]worldcupservice.RankingEntry, error) {
	if f.GetRankingsFunc != nil {
		return f.GetRankingsFunc(ctx, limit)
	}
	return nil, nil
}

var _ worldcupservice.Service = (*FakeService)(nil)

func newFakeSession(key string, size int) *worldcupservice.Session {
	pool := make([]worldcupdomain.Competitor, size)
	for i := range pool {
		pool[i] = worldcupdomain.Competitor{
			ID:     worldcupdomain.CompetitorID(i + 1),
			Name:   string(rune('A' + i)),
			Rating: worldcupdomain.InitialRating,
		}
	}
	state, err := worldcupdomain.NewTournament(pool, size, worldcupdomain.IdentityShuffler)
	if err != nil {
		panic(err)
	}
	return &worldcupservice.Session{Key: key, State: state}
}
