package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/campuslink/engage-core/internal/adapter"
	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/engage"
	"github.com/campuslink/engage-core/internal/logger"
	"github.com/campuslink/engage-core/internal/store"
)

// LedgerSweeperConfig holds configuration for the ledger sweeper
type LedgerSweeperConfig struct {
	Interval       time.Duration // Time to sleep between sweep cycles
	WorkerPoolSize int           // Concurrent workers
	QueueSize      int           // Worker pool queue size
}

// ledgerSweeper implements the Sweeper interface. Each cycle it re-derives
// every account's balances from the ledger and repairs interrupted order
// money movement. All repairs are idempotent, so overlapping runs and crashes
// mid-cycle are harmless.
type ledgerSweeper struct {
	config    *LedgerSweeperConfig
	store     store.Store
	engine    *engage.Engine
	pool      pond.Pool
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewLedgerSweeper creates a new ledger sweeper
func NewLedgerSweeper(
	config *LedgerSweeperConfig,
	st store.Store,
	engine *engage.Engine,
	clock adapter.Clock,
) Sweeper {
	return &ledgerSweeper{
		config:    config,
		store:     st,
		engine:    engine,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *ledgerSweeper) Name() string {
	return "ledger-sweeper"
}

// Start begins the sweeper's main loop
func (s *ledgerSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	logger.InfoCtx(ctx, "Starting ledger sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Ledger sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			s.cleanup()
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Ledger sweeper stop requested")
			s.cleanup()
			return nil
		default:
			if err := s.runSweepCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
			if !s.sleep(ctx, s.config.Interval) {
				s.cleanup()
				return nil
			}
		}
	}
}

// cleanup stops the worker pool and waits for tasks to complete
func (s *ledgerSweeper) cleanup() {
	if s.pool != nil {
		s.pool.StopAndWait()
		s.pool = nil
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *ledgerSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping ledger sweeper")

	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Ledger sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Ledger sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle reconciles every account and every non-claimed order once
func (s *ledgerSweeper) runSweepCycle(ctx context.Context) error {
	startTime := s.clock.Now()
	logger.InfoCtx(ctx, "Starting reconciliation cycle")

	accountIDs, err := s.listAccountsWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	// Open orders may be waiting on escrow, settled/cancelled orders on payout
	// or refund. Claimed orders carry no pending money movement.
	orders, err := s.store.ListOrdersByState(ctx,
		domain.OrderOpen, domain.OrderSettled, domain.OrderCancelled)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}

	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.QueueSize),
		pond.WithContext(ctx),
	)

	var accountsRepaired, orderErrors atomic.Int32

	for _, accountID := range accountIDs {
		s.pool.Submit(func() {
			repaired, err := s.engine.ReconcileAccount(ctx, accountID)
			if err != nil {
				logger.ErrorCtx(ctx, err, zap.String("account_id", accountID))
				return
			}
			if repaired {
				accountsRepaired.Add(1)
			}
		})
	}

	for _, order := range orders {
		s.pool.Submit(func() {
			if err := s.engine.ReconcileOrder(ctx, order.ID); err != nil {
				logger.ErrorCtx(ctx, err, zap.String("order_id", order.ID))
				orderErrors.Add(1)
			}
		})
	}

	// Wait for all repairs to complete
	s.pool.StopAndWait()
	s.pool = nil

	logger.InfoCtx(ctx, "Reconciliation cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("accounts", len(accountIDs)),
		zap.Int("orders", len(orders)),
		zap.Int32("accounts_repaired", accountsRepaired.Load()),
		zap.Int32("order_errors", orderErrors.Load()),
	)
	return nil
}

// listAccountsWithRetry lists account IDs with bounded exponential backoff
func (s *ledgerSweeper) listAccountsWithRetry(ctx context.Context) ([]string, error) {
	var accountIDs []string
	operation := func() error {
		var err error
		accountIDs, err = s.store.ListUserIDs(ctx)
		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}
	return accountIDs, nil
}

// sleep waits for the given duration, returning false if interrupted
func (s *ledgerSweeper) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-s.clock.After(d):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
