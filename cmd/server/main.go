package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/empanadas-abdonur/api/internal/availability"
	"github.com/empanadas-abdonur/api/internal/cache"
	"github.com/empanadas-abdonur/api/internal/config"
	"github.com/empanadas-abdonur/api/internal/logger"
	"github.com/empanadas-abdonur/api/internal/router"
	"github.com/empanadas-abdonur/api/internal/store"
)

const monitorInterval = time.Minute

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Server.Env); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.RunMigrations {
		if err := runMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
			zap.L().Fatal("migrations failed", zap.Error(err))
		}
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		zap.L().Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		zap.L().Fatal("database ping failed", zap.Error(err))
	}
	zap.L().Info("connected to database")

	queries := store.New(pool)

	// Redis is optional. Without it the admin order listings just skip
	// the cache and hit Postgres every time.
	orders, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		zap.L().Warn("redis unavailable, order list caching disabled", zap.Error(err))
		orders = nil
	}

	calc := availability.NewCalculator(cfg.Business.Timezone)
	monitor := availability.NewMonitor(queries, calc, monitorInterval)
	go monitor.Start(ctx)

	r := router.New(cfg, queries, orders, monitor)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}

func runMigrations(databaseURL, dir string) error {
	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
