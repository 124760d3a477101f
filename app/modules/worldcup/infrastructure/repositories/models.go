package worldcupdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Competitor is a rated entry of the worldcup pool.
type Competitor struct {
	bun.BaseModel `bun:"table:competitors,alias:c"`

	ID            int64   `bun:"id,pk,autoincrement"`
	Name          string  `bun:"name,notnull"`
	NameEn        string  `bun:"name_en"`
	Brand         string  `bun:"brand"`
	BrandEn       string  `bun:"brand_en"`
	Description   string  `bun:"description"`
	DescriptionEn string  `bun:"description_en"`
	Category      string  `bun:"category,notnull,default:'classic'"`
	ImageURL      string  `bun:"image_url,notnull,default:''"`
	Rating        float64 `bun:"rating,notnull,default:1500"`
	MatchCount    int     `bun:"match_count,notnull,default:0"`
	LastDelta     float64 `bun:"last_delta,notnull,default:0"`
	// Version is bumped on every rating write and guards ApplyRating.
	Version int64 `bun:"version,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// RatingUpdate is the result of one decided match for a single competitor.
type RatingUpdate struct {
	ID int64
	// ExpectedVersion is the version read under lock before computing Rating.
	ExpectedVersion int64
	Rating          float64
	Delta           float64
}
