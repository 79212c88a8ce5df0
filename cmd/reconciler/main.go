package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/campuslink/engage-core/internal/adapter"
	"github.com/campuslink/engage-core/internal/config"
	"github.com/campuslink/engage-core/internal/engage"
	"github.com/campuslink/engage-core/internal/logger"
	"github.com/campuslink/engage-core/internal/reconciler"
	"github.com/campuslink/engage-core/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadReconcilerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "reconciler",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting reconciler")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize clock adapter
	clock := adapter.NewClock()

	// The reconciler repairs state; it never publishes notifications
	engine := engage.New(engage.Config{
		FeeBasisPoints:            cfg.Engine.FeeBasisPoints,
		DailyLoginXP:              cfg.Engine.DailyLoginXP,
		LikeRewardXP:              cfg.Engine.LikeRewardXP,
		PostRewardCoin:            cfg.Engine.PostRewardCoin,
		ClaimedCancelNeedsConsent: cfg.Engine.ClaimedCancelNeedsConsent,
		UnfundedOrderGrace:        cfg.Engine.UnfundedOrderGrace,
	}, dataStore, nil, clock)

	// Initialize ledger sweeper
	sweeperConfig := &reconciler.LedgerSweeperConfig{
		Interval:       cfg.Sweep.Interval,
		WorkerPoolSize: cfg.Sweep.Worker.WorkerPoolSize,
		QueueSize:      cfg.Sweep.Worker.WorkerQueueSize,
	}
	ledgerSweeper := reconciler.NewLedgerSweeper(sweeperConfig, dataStore, engine, clock)

	logger.InfoCtx(ctx, "Initialized ledger sweeper",
		zap.Duration("interval", cfg.Sweep.Interval),
		zap.Int("worker_pool_size", cfg.Sweep.Worker.WorkerPoolSize),
	)

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := ledgerSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweeper
	cancel()

	// Give the sweeper time to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := ledgerSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Reconciler stopped")
}
