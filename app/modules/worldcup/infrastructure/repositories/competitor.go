package worldcupdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new competitor repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id int64) (*Competitor, error) {
	db = r.resolveDB(db)
	competitor := new(Competitor)
	err := db.NewSelect().
		Model(competitor).
		Where("c.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("worldcupdb.GetByID: %w", err)
	}
	return competitor, nil
}

func (r *Impl) GetByIDsForUpdate(ctx context.Context, db bun.IDB, ids ...int64) ([]Competitor, error) {
	db = r.resolveDB(db)
	if len(ids) == 0 {
		return nil, nil
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var competitors []Competitor
	err := db.NewSelect().
		Model(&competitors).
		Where("c.id IN (?)", bun.In(sorted)).
		OrderExpr("c.id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("worldcupdb.GetByIDsForUpdate: %w", err)
	}
	return competitors, nil
}

func (r *Impl) ApplyRating(ctx context.Context, db bun.IDB, update RatingUpdate) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Competitor)(nil)).
		Set("rating = ?", update.Rating).
		Set("last_delta = ?", update.Delta).
		Set("match_count = match_count + 1").
		Set("version = version + 1").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", update.ID).
		Where("version = ?", update.ExpectedVersion).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("worldcupdb.ApplyRating: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("worldcupdb.ApplyRating: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: competitor %d at version %d", ErrVersionConflict, update.ID, update.ExpectedVersion)
	}
	return nil
}

func (r *Impl) ListPool(ctx context.Context, db bun.IDB) ([]Competitor, error) {
	db = r.resolveDB(db)
	var competitors []Competitor
	err := db.NewSelect().
		Model(&competitors).
		OrderExpr("c.id ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("worldcupdb.ListPool: %w", err)
	}
	return competitors, nil
}

func (r *Impl) ListRankings(ctx context.Context, db bun.IDB, limit int) ([]Competitor, error) {
	db = r.resolveDB(db)
	var competitors []Competitor
	q := db.NewSelect().
		Model(&competitors).
		OrderExpr("c.rating DESC").
		OrderExpr("c.id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("worldcupdb.ListRankings: %w", err)
	}
	return competitors, nil
}

func (r *Impl) Upsert(ctx context.Context, db bun.IDB, competitor *Competitor) error {
	db = r.resolveDB(db)
	competitor.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(competitor).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("name_en = EXCLUDED.name_en").
		Set("brand = EXCLUDED.brand").
		Set("brand_en = EXCLUDED.brand_en").
		Set("description = EXCLUDED.description").
		Set("description_en = EXCLUDED.description_en").
		Set("category = EXCLUDED.category").
		Set("image_url = EXCLUDED.image_url").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("worldcupdb.Upsert: %w", err)
	}
	return nil
}
