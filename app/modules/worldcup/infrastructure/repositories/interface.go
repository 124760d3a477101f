package worldcupdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for competitor persistence.
// Every method takes an optional bun.IDB so callers can run it inside a transaction.
type Repository interface {
	// GetByID retrieves a competitor. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, db bun.IDB, id int64) (*Competitor, error)

	// GetByIDsForUpdate row-locks the given competitors in ascending id order.
	// Missing ids are simply absent from the result.
	GetByIDsForUpdate(ctx context.Context, db bun.IDB, ids ...int64) ([]Competitor, error)

	// ApplyRating writes rating and last_delta, increments match_count and bumps
	// the version. Returns ErrVersionConflict when the stored version moved.
	ApplyRating(ctx context.Context, db bun.IDB, update RatingUpdate) error

	// ListPool returns every competitor eligible for a tournament, ordered by id.
	ListPool(ctx context.Context, db bun.IDB) ([]Competitor, error)

	// ListRankings returns competitors by rating descending. A limit <= 0 returns all.
	ListRankings(ctx context.Context, db bun.IDB, limit int) ([]Competitor, error)

	// Upsert creates or updates a competitor's descriptive fields. Ratings are untouched.
	Upsert(ctx context.Context, db bun.IDB, competitor *Competitor) error
}
