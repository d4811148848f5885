package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oggyb/groupmatch/internal/app"
	"github.com/oggyb/groupmatch/internal/cache"
	"github.com/oggyb/groupmatch/internal/config"
	"github.com/oggyb/groupmatch/internal/db"
	"github.com/oggyb/groupmatch/internal/logger"
	"github.com/oggyb/groupmatch/internal/notify"
	"github.com/oggyb/groupmatch/internal/scheduler"
	"github.com/oggyb/groupmatch/internal/server"
	"github.com/oggyb/groupmatch/internal/service/match"
	"github.com/oggyb/groupmatch/internal/service/matching"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis; counters and the sweep lock degrade without it
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Warn("redis unavailable, running without cache", "addr", cfg.Redis.Addr, "err", err)
		redisCache = nil
	}

	// Notifications go to NATS when configured, to the log otherwise
	var notifier notify.Notifier
	if cfg.NATS.URL != "" {
		nc, err := notify.Connect(cfg.NATS.URL, cfg.Log.Component)
		if err != nil {
			log.Error("failed to connect to nats", "url", cfg.NATS.URL, "err", err)
			return
		}
		defer nc.Close()
		notifier = notify.NewNATSNotifier(nc, cfg.NATS.SubjectPrefix)
	}

	appCtx := app.New(cfg, database, redisCache, notifier, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	// Daily expiry sweep
	var locker scheduler.Locker
	if redisCache != nil {
		locker = redisCache
	}
	sweeper := scheduler.NewSweeper(match.NewService(appCtx).CleanupExpiredMatches, locker, cfg.Matching, log.With("component", "sweeper"))
	go sweeper.Start(ctx)

	// Admin HTTP: metrics + health
	checks := map[string]server.HealthCheck{
		"db": func(ctx context.Context) error {
			sqlDB, err := database.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisCache != nil {
		checks["redis"] = redisCache.Ping
	}
	admin := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.NewAdminRouter(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("starting admin http server", "addr", cfg.HTTP.Addr)
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("admin http server failed", "err", err)
		}
	}()

	grpcServer, health := server.NewGRPCServer(log, matching.NewRegistrar(appCtx))

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = admin.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
	}()

	addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
	log.Info("starting gRPC server", "addr", addr)

	if err := server.StartGRPCServer(cfg, grpcServer); err != nil {
		log.Error("failed to start gRPC server", "err", err)
	}
}
