package worldcupmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating competitors table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS competitors (
					id BIGSERIAL PRIMARY KEY,
					name TEXT NOT NULL,
					name_en TEXT NOT NULL DEFAULT '',
					brand TEXT NOT NULL DEFAULT '',
					brand_en TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					description_en TEXT NOT NULL DEFAULT '',
					category TEXT NOT NULL DEFAULT 'classic',
					image_url TEXT NOT NULL DEFAULT '',
					rating DOUBLE PRECISION NOT NULL DEFAULT 1500,
					match_count INTEGER NOT NULL DEFAULT 0 CHECK (match_count >= 0),
					last_delta DOUBLE PRECISION NOT NULL DEFAULT 0,
					version BIGINT NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT uq_competitors_name_brand UNIQUE (name, brand)
				);
				CREATE INDEX IF NOT EXISTS idx_competitors_rating ON competitors (rating DESC, id ASC);
			`); err != nil {
				return fmt.Errorf("failed to create competitors table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping competitors table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS competitors;`); err != nil {
				return fmt.Errorf("failed to drop competitors table: %w", err)
			}
			return nil
		})
	})
}
