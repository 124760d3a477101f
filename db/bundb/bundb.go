// db/bundb/bundb.go
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	worldcupdb "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/repositories"
	"github.com/Black-And-White-Club/topbun-worldcup/config"
)

// DBService owns the Postgres pool and the repositories built on it.
type DBService struct {
	CompetitorDB worldcupdb.Repository
	db           *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// Close closes the connection pool.
func (dbService *DBService) Close() error {
	return dbService.db.Close()
}

// NewBunDBService initializes a new DBService with the provided Postgres configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*DBService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to PostgreSQL", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bunDB(sqldb)
	db.RegisterModel((*worldcupdb.Competitor)(nil))

	logger.InfoContext(ctx, "Database service initialized")
	return &DBService{
		CompetitorDB: worldcupdb.NewRepository(db),
		db:           db,
	}, nil
}

// bunDB returns a new bun.DB for given sql.DB connection pool.
func bunDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, pgdialect.New())
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
