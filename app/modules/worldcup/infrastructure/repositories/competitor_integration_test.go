package worldcupdb_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/migrate"

	worldcupdb "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/repositories"
	worldcupmigrations "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/topbun-worldcup/integration_tests/containers"
)

func setupDB(t *testing.T) *bun.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, connStr, err := containers.SetupPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	sqlDB, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	db := bun.NewDB(sqlDB, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })

	migrator := migrate.NewMigrator(db, worldcupmigrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return db
}

func TestRepository_Integration(t *testing.T) {
	db := setupDB(t)
	repo := worldcupdb.NewRepository(db)
	ctx := context.Background()

	t.Run("seed provides sixteen unrated burgers", func(t *testing.T) {
		pool, err := repo.ListPool(ctx, nil)
		require.NoError(t, err)
		require.Len(t, pool, 16)
		for _, c := range pool {
			assert.Equal(t, 1500.0, c.Rating)
			assert.Zero(t, c.MatchCount)
		}
	})

	t.Run("missing competitor", func(t *testing.T) {
		_, err := repo.GetByID(ctx, nil, 999999)
		assert.ErrorIs(t, err, worldcupdb.ErrNotFound)
	})

	t.Run("locked read is ordered and skips missing ids", func(t *testing.T) {
		err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			rows, err := repo.GetByIDsForUpdate(ctx, tx, 3, 999999, 1)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, int64(1), rows[0].ID)
			assert.Equal(t, int64(3), rows[1].ID)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("apply rating increments and guards version", func(t *testing.T) {
		before, err := repo.GetByID(ctx, nil, 2)
		require.NoError(t, err)

		require.NoError(t, repo.ApplyRating(ctx, nil, worldcupdb.RatingUpdate{
			ID: 2, ExpectedVersion: before.Version, Rating: 1516, Delta: 16,
		}))

		after, err := repo.GetByID(ctx, nil, 2)
		require.NoError(t, err)
		assert.Equal(t, 1516.0, after.Rating)
		assert.Equal(t, 16.0, after.LastDelta)
		assert.Equal(t, before.MatchCount+1, after.MatchCount)
		assert.Equal(t, before.Version+1, after.Version)

		err = repo.ApplyRating(ctx, nil, worldcupdb.RatingUpdate{
			ID: 2, ExpectedVersion: before.Version, Rating: 1, Delta: -1,
		})
		assert.ErrorIs(t, err, worldcupdb.ErrVersionConflict)

		unchanged, err := repo.GetByID(ctx, nil, 2)
		require.NoError(t, err)
		assert.Equal(t, after.Rating, unchanged.Rating)
		assert.Equal(t, after.MatchCount, unchanged.MatchCount)
	})

	t.Run("rankings order by rating", func(t *testing.T) {
		rankings, err := repo.ListRankings(ctx, nil, 3)
		require.NoError(t, err)
		require.Len(t, rankings, 3)
		assert.Equal(t, int64(2), rankings[0].ID)
		assert.GreaterOrEqual(t, rankings[1].Rating, rankings[2].Rating)
	})

	t.Run("concurrent locked increments do not lose updates", func(t *testing.T) {
		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
					rows, err := repo.GetByIDsForUpdate(ctx, tx, 5)
					if err != nil {
						return err
					}
					if len(rows) != 1 {
						return errors.New("competitor 5 missing")
					}
					return repo.ApplyRating(ctx, tx, worldcupdb.RatingUpdate{
						ID:              5,
						ExpectedVersion: rows[0].Version,
						Rating:          rows[0].Rating + 1,
						Delta:           1,
					})
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		final, err := repo.GetByID(ctx, nil, 5)
		require.NoError(t, err)
		assert.Equal(t, 1500.0+workers, final.Rating)
		assert.Equal(t, workers, final.MatchCount)
	})

	t.Run("upsert keeps rating", func(t *testing.T) {
		c, err := repo.GetByID(ctx, nil, 2)
		require.NoError(t, err)
		c.ImageURL = "https://img.example/whopper.png"
		c.Rating = 0
		require.NoError(t, repo.Upsert(ctx, nil, c))

		got, err := repo.GetByID(ctx, nil, 2)
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/whopper.png", got.ImageURL)
		assert.Equal(t, 1516.0, got.Rating)
	})
}
