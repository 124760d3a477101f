package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"

	"github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup"
	worldcupevents "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/events"
	worldcupsessions "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/sessions"
	"github.com/Black-And-White-Club/topbun-worldcup/config"
	"github.com/Black-And-White-Club/topbun-worldcup/db/bundb"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cliApp := &cli.App{
		Name:  "worldcup",
		Usage: "burger worldcup bracket and rating server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"WORLDCUP_CONFIG"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return run(c.Context, cfg)
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("service", "worldcup"), slog.String("env", env))
}

func newSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (worldcupsessions.Store, func() error, error) {
	if cfg.Redis.URL == "" {
		logger.WarnContext(ctx, "REDIS_URL not set, keeping sessions in process memory")
		return worldcupsessions.NewMemoryStore(cfg.Worldcup.SessionTTL), func() error { return nil }, nil
	}
	store, err := worldcupsessions.NewRedisStore(ctx, cfg.Redis.URL, cfg.Worldcup.SessionTTL)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func run(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg.Observability.Environment)
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer dbService.Close()

	sessions, closeSessions, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer closeSessions()

	pubSub, err := worldcupevents.NewPubSub(cfg.NATS.URL, logger)
	if err != nil {
		return fmt.Errorf("failed to open event bus: %w", err)
	}
	defer pubSub.Close()

	httpRouter := chi.NewRouter()
	httpRouter.Use(middleware.RealIP)
	httpRouter.Use(middleware.Recoverer)
	httpRouter.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	module, err := worldcup.NewModule(ctx, worldcup.Deps{
		Config:     cfg,
		Logger:     logger,
		Tracer:     otel.Tracer("worldcup"),
		Registry:   registry,
		DB:         dbService.GetDB(),
		Repo:       dbService.CompetitorDB,
		Sessions:   sessions,
		PubSub:     pubSub,
		HTTPRouter: httpRouter,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize worldcup module: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go module.Run(ctx, &wg)

	servers := []*http.Server{{
		Addr:         cfg.HTTP.Address,
		Handler:      httpRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}}
	if cfg.Observability.MetricsAddress != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
		servers = append(servers, &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	serverErrors := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			logger.Info("starting server", slog.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrors <- err
			}
		}()
	}

	var runErr error
	select {
	case runErr = <-serverErrors:
		logger.Error("server error", slog.Any("error", runErr))
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.String("address", srv.Addr), slog.Any("error", err))
		}
	}

	if err := module.Close(); err != nil {
		logger.Error("failed to close worldcup module", slog.Any("error", err))
	}
	wg.Wait()

	logger.Info("application exited")
	return runErr
}
