package testutils

import (
	"context"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	worldcupmigrations "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/repositories/migrations"
)

// runMigrations creates the migration tables and applies the worldcup schema
// including the seeded pool.
func runMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, worldcupmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migrator: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run worldcup migrations: %w", err)
	}
	if group.IsZero() {
		log.Printf("No worldcup migrations to run")
	} else {
		log.Printf("Ran worldcup migrations group #%d", group.ID)
	}
	return nil
}

// ResetRatings puts every competitor back to the initial rating with no
// recorded matches, leaving the pool itself intact.
func ResetRatings(ctx context.Context, db *bun.DB) error {
	_, err := db.NewUpdate().
		Table("competitors").
		Set("rating = 1500").
		Set("match_count = 0").
		Set("last_delta = 0").
		Set("version = 0").
		Where("TRUE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset ratings: %w", err)
	}
	return nil
}

// TruncateCompetitors removes the whole pool.
func TruncateCompetitors(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, `TRUNCATE TABLE "competitors" RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("failed to truncate competitors: %w", err)
	}
	return nil
}
