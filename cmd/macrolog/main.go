package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/macrolog-lab/macrolog/internal/analytics"
	corecfg "github.com/macrolog-lab/macrolog/internal/core/config"
	"github.com/macrolog-lab/macrolog/internal/core/storage/postgres"
	"github.com/macrolog-lab/macrolog/internal/entries"
	"github.com/macrolog-lab/macrolog/internal/migrations"
	"github.com/macrolog-lab/macrolog/internal/rollup"
	"github.com/macrolog-lab/macrolog/internal/server"
)

func main() {
	configPath := flag.String("config", "macrolog.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 3. Initialize the Rollup Engine
	// Recompute runs synchronously inside each mutation's transaction;
	// there is no background aggregation worker.
	engine := rollup.NewEngine()
	dispatcher := rollup.NewDispatcher(engine)
	rebuilder := rollup.NewRebuilder(dbAdapter, engine, cfg.Rollup.RebuildWorkers)

	// 4. Initialize the Entry CRUD layer (mutations + dispatch)
	entriesSvc := entries.NewService(dbAdapter, dbAdapter, dispatcher, cfg.Server.MaxBodySizeMB)

	// 5. Initialize Analytics (query API)
	analyticsSvc := analytics.NewService(dbAdapter)

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode)
	entriesSvc.RegisterRoutes(srv.Engine)
	analyticsSvc.RegisterRoutes(srv.Engine)
	rebuilder.RegisterRoutes(srv.Engine)

	// 7. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
