package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	_ "github.com/jackc/pgx/v5/stdlib"

	worldcupevents "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/events"
	worldcupdb "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/repositories"
	worldcupsessions "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/sessions"
	"github.com/Black-And-White-Club/topbun-worldcup/config"
	"github.com/Black-And-White-Club/topbun-worldcup/integration_tests/containers"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx            context.Context
	CancelContext  context.CancelFunc
	PgContainer    *postgres.PostgresContainer
	RedisContainer testcontainers.Container
	NatsContainer  *nats.NATSContainer
	DB             *bun.DB
	Repo           worldcupdb.Repository
	Sessions       *worldcupsessions.RedisStore
	PubSub         *worldcupevents.PubSub
	Logger         *slog.Logger
	Config         *config.Config
	T              *testing.T
}

// NewTestEnvironment starts Postgres, Redis and NATS containers and wires the
// worldcup infrastructure against them. The schema is migrated and seeded.
func NewTestEnvironment(t *testing.T) (*TestEnvironment, error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		T:             t,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	if err := env.setupContainers(ctx); err != nil {
		env.Cleanup()
		return nil, err
	}
	return env, nil
}

// setupContainers initializes all containers and connections
func (env *TestEnvironment) setupContainers(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	redisContainer, redisURL, err := containers.SetupRedisContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup redis container: %w", err)
	}
	env.RedisContainer = redisContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		return fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	env.DB = bun.NewDB(sqlDB, pgdialect.New())

	if err := runMigrations(ctx, env.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	env.Repo = worldcupdb.NewRepository(env.DB)

	env.Config = &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr},
		NATS:     config.NATSConfig{URL: natsURL},
		Redis:    config.RedisConfig{URL: redisURL},
		Worldcup: config.WorldcupConfig{
			SessionTTL:     time.Hour,
			KFactor:        32,
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		},
	}

	sessions, err := worldcupsessions.NewRedisStore(ctx, redisURL, env.Config.Worldcup.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to connect session store: %w", err)
	}
	env.Sessions = sessions

	pubSub, err := worldcupevents.NewPubSub(natsURL, env.Logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	env.PubSub = pubSub

	return nil
}

// CheckContainerHealth verifies that containers are running and responsive
func (env *TestEnvironment) CheckContainerHealth() error {
	ctx, cancel := context.WithTimeout(env.Ctx, 10*time.Second)
	defer cancel()

	for name, c := range map[string]testcontainers.Container{
		"PostgreSQL": env.PgContainer,
		"Redis":      env.RedisContainer,
		"NATS":       env.NatsContainer,
	} {
		state, err := c.State(ctx)
		if err != nil || !state.Running {
			return fmt.Errorf("%s container not healthy: err=%v", name, err)
		}
	}

	var result int
	if err := env.DB.NewSelect().ColumnExpr("1").Scan(ctx, &result); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Cleanup tears down all resources created for testing
func (env *TestEnvironment) Cleanup() {
	if env.CancelContext != nil {
		env.CancelContext()
	}
	if env.PubSub != nil {
		if err := env.PubSub.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}
	if env.Sessions != nil {
		_ = env.Sessions.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
	if env.RedisContainer != nil {
		if err := env.RedisContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Redis container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
}
