package worldcupservice

import (
	"context"
	"slices"
	"sync"

	"github.com/uptrace/bun"

	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
	worldcupevents "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/events"
	worldcupdb "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/repositories"
	worldcupsessions "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/sessions"
)

// ------------------------
// Fake Competitor Repo
// ------------------------

// FakeRepo keeps competitors in memory. The XxxFunc fields override the
// default in-memory behaviour.
type FakeRepo struct {
	mu    sync.Mutex
	trace []string
	rows  map[int64]worldcupdb.Competitor

	GetByIDFunc           func(ctx context.Context, db bun.IDB, id int64) (*worldcupdb.Competitor, error)
	GetByIDsForUpdateFunc func(ctx context.Context, db bun.IDB, ids ...int64) ([]worldcupdb.Competitor, error)
	ApplyRatingFunc       func(ctx context.Context, db bun.IDB, update worldcupdb.RatingUpdate) error
	ListPoolFunc          func(ctx context.Context, db bun.IDB) ([]worldcupdb.Competitor, error)
	ListRankingsFunc      func(ctx context.Context, db bun.IDB, limit int) ([]worldcupdb.Competitor, error)
	UpsertFunc            func(ctx context.Context, db bun.IDB, competitor *worldcupdb.Competitor) error
}

func NewFakeRepo(competitors ...worldcupdb.Competitor) *FakeRepo {
	f := &FakeRepo{trace: []string{}, rows: map[int64]worldcupdb.Competitor{}}
	for _, c := range competitors {
		f.rows[c.ID] = c
	}
	return f
}

func (f *FakeRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeRepo) GetByID(ctx context.Context, db bun.IDB, id int64) (*worldcupdb.Competitor, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, worldcupdb.ErrNotFound
	}
	return &c, nil
}

func (f *FakeRepo) GetByIDsForUpdate(ctx context.Context, db bun.IDB, ids ...int64) ([]worldcupdb.Competitor, error) {
	f.record("GetByIDsForUpdate")
	if f.GetByIDsForUpdateFunc != nil {
		return f.GetByIDsForUpdateFunc(ctx, db, ids...)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	var out []worldcupdb.Competitor
	for _, id := range slices.Compact(sorted) {
		if c, ok := f.rows[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *FakeRepo) ApplyRating(ctx context.Context, db bun.IDB, update worldcupdb.RatingUpdate) error {
	f.record("ApplyRating")
	if f.ApplyRatingFunc != nil {
		return f.ApplyRatingFunc(ctx, db, update)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[update.ID]
	if !ok || c.Version != update.ExpectedVersion {
		return worldcupdb.ErrVersionConflict
	}
	c.Rating = update.Rating
	c.LastDelta = update.Delta
	c.MatchCount++
	c.Version++
	f.rows[update.ID] = c
	return nil
}

func (f *FakeRepo) ListPool(ctx context.Context, db bun.IDB) ([]worldcupdb.Competitor, error) {
	f.record("ListPool")
	if f.ListPoolFunc != nil {
		return f.ListPoolFunc(ctx, db)
	}
	return f.sorted(func(a, b worldcupdb.Competitor) int { return int(a.ID - b.ID) }), nil
}

func (f *FakeRepo) ListRankings(ctx context.Context, db bun.IDB, limit int) ([]worldcupdb.Competitor, error) {
	f.record("ListRankings")
	if f.ListRankingsFunc != nil {
		return f.ListRankingsFunc(ctx, db, limit)
	}
	out := f.sorted(func(a, b worldcupdb.Competitor) int {
		switch {
		case a.Rating > b.Rating:
			return -1
		case a.Rating < b.Rating:
			return 1
		}
		return int(a.ID - b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeRepo) Upsert(ctx context.Context, db bun.IDB, competitor *worldcupdb.Competitor) error {
	f.record("Upsert")
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, db, competitor)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[competitor.ID] = *competitor
	return nil
}

// --- Accessors for assertions ---

func (f *FakeRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRepo) Row(id int64) worldcupdb.Competitor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

func (f *FakeRepo) sorted(cmp func(a, b worldcupdb.Competitor) int) []worldcupdb.Competitor {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]worldcupdb.Competitor, 0, len(f.rows))
	for _, c := range f.rows {
		out = append(out, c)
	}
	slices.SortFunc(out, cmp)
	return out
}

// Ensure the fake actually satisfies the interface
var _ worldcupdb.Repository = (*FakeRepo)(nil)

// ------------------------
// Fake Session Store
// ------------------------

type FakeSessionStore struct {
	*worldcupsessions.MemoryStore
	mu    sync.Mutex
	trace []string

	SaveFunc           func(ctx context.Context, key string, state *worldcupdomain.TournamentState) error
	CompareAndSaveFunc func(ctx context.Context, key string, expectedVersion int64, state *worldcupdomain.TournamentState) error
}

func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{MemoryStore: worldcupsessions.NewMemoryStore(0), trace: []string{}}
}

func (f *FakeSessionStore) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeSessionStore) Save(ctx context.Context, key string, state *worldcupdomain.TournamentState) error {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, key, state)
	}
	return f.MemoryStore.Save(ctx, key, state)
}

func (f *FakeSessionStore) CompareAndSave(ctx context.Context, key string, expectedVersion int64, state *worldcupdomain.TournamentState) error {
	f.record("CompareAndSave")
	if f.CompareAndSaveFunc != nil {
		return f.CompareAndSaveFunc(ctx, key, expectedVersion, state)
	}
	return f.MemoryStore.CompareAndSave(ctx, key, expectedVersion, state)
}

func (f *FakeSessionStore) Load(ctx context.Context, key string) (*worldcupdomain.TournamentState, error) {
	f.record("Load")
	return f.MemoryStore.Load(ctx, key)
}

func (f *FakeSessionStore) Delete(ctx context.Context, key string) error {
	f.record("Delete")
	return f.MemoryStore.Delete(ctx, key)
}

func (f *FakeSessionStore) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ worldcupsessions.Store = (*FakeSessionStore)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type publishedEvent struct {
	Topic   string
	Payload any
}

type FakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *FakePublisher) Publish(_ context.Context, topic string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Topic: topic, Payload: payload})
	return f.err
}

func (f *FakePublisher) Topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Topic
	}
	return out
}

var _ worldcupevents.Publisher = (*FakePublisher)(nil)
