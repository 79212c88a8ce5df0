package engage_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/engage-core/internal/adapter"
	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/engage"
	"github.com/campuslink/engage-core/internal/logger"
	"github.com/campuslink/engage-core/internal/store"
	"github.com/campuslink/engage-core/internal/store/schema"
)

// flakyAppendStore fails ledger appends while failing is set, simulating a
// store outage between two writes of one operation.
type flakyAppendStore struct {
	store.Store
	failing atomic.Bool
}

func (s *flakyAppendStore) AppendLedgerEntry(ctx context.Context, entry *schema.LedgerEntry) (bool, error) {
	if s.failing.Load() {
		return false, domain.ErrStoreUnavailable
	}
	return s.Store.AppendLedgerEntry(ctx, entry)
}

// mintCoins seeds an account with coin through the ledger
func mintCoins(t *testing.T, eng *engage.Engine, accountID string, amount int64) {
	t.Helper()
	err := eng.Transfer(context.Background(), engage.TransferParams{
		To:              accountID,
		Amount:          amount,
		Asset:           domain.AssetCoin,
		Reason:          domain.ReasonPostPublish,
		RelatedEntityID: accountID,
		Token:           "seed:" + accountID,
	})
	require.NoError(t, err)
}

func coinBalance(t *testing.T, eng *engage.Engine, accountID string) int64 {
	t.Helper()
	balance, err := eng.GetBalance(context.Background(), accountID)
	require.NoError(t, err)
	return balance.CoinBalance
}

func TestTransfer_MovesBalanceAndIsIdempotent(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "alice")
	seedUser(t, st, "bob")
	mintCoins(t, eng, "alice", 100)

	params := engage.TransferParams{
		From:            "alice",
		To:              "bob",
		Amount:          40,
		Asset:           domain.AssetCoin,
		Reason:          domain.ReasonOrderIncome,
		RelatedEntityID: "order-1",
		Token:           "transfer-1",
	}
	require.NoError(t, eng.Transfer(ctx, params))

	assert.Equal(t, int64(60), coinBalance(t, eng, "alice"))
	assert.Equal(t, int64(40), coinBalance(t, eng, "bob"))

	// Stored balances agree with the ledger
	sum, err := st.SumLedger(ctx, "alice", domain.AssetCoin)
	require.NoError(t, err)
	assert.Equal(t, int64(60), sum)
	sum, err = st.SumLedger(ctx, "bob", domain.AssetCoin)
	require.NoError(t, err)
	assert.Equal(t, int64(40), sum)

	// Replaying the same transfer moves nothing
	require.NoError(t, eng.Transfer(ctx, params))
	assert.Equal(t, int64(60), coinBalance(t, eng, "alice"))
	assert.Equal(t, int64(40), coinBalance(t, eng, "bob"))
}

func TestTransfer_ConcurrentReplaysApplyOnce(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "alice")
	seedUser(t, st, "bob")
	mintCoins(t, eng, "alice", 100)

	params := engage.TransferParams{
		From:   "alice",
		To:     "bob",
		Amount: 10,
		Asset:  domain.AssetCoin,
		Reason: domain.ReasonOrderIncome,
		Token:  "transfer-race",
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, eng.Transfer(ctx, params))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(90), coinBalance(t, eng, "alice"))
	assert.Equal(t, int64(10), coinBalance(t, eng, "bob"))
}

func TestTransfer_InsufficientBalance(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "alice")
	seedUser(t, st, "bob")
	mintCoins(t, eng, "alice", 10)

	err := eng.Transfer(ctx, engage.TransferParams{
		From:   "alice",
		To:     "bob",
		Amount: 40,
		Asset:  domain.AssetCoin,
		Reason: domain.ReasonOrderIncome,
		Token:  "transfer-too-big",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// Neither half applied
	assert.Equal(t, int64(10), coinBalance(t, eng, "alice"))
	assert.Equal(t, int64(0), coinBalance(t, eng, "bob"))

	entry, err := st.GetLedgerEntryByToken(ctx, "transfer-too-big:debit")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestTransfer_Validation(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	seedUser(t, st, "alice")

	tests := []struct {
		name   string
		params engage.TransferParams
	}{
		{
			name:   "non-positive amount",
			params: engage.TransferParams{To: "alice", Amount: 0, Asset: domain.AssetCoin, Token: "t"},
		},
		{
			name:   "missing recipient",
			params: engage.TransferParams{Amount: 1, Asset: domain.AssetCoin, Token: "t"},
		},
		{
			name:   "missing token",
			params: engage.TransferParams{To: "alice", Amount: 1, Asset: domain.AssetCoin},
		},
		{
			name:   "same endpoints",
			params: engage.TransferParams{From: "alice", To: "alice", Amount: 1, Asset: domain.AssetCoin, Token: "t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eng.Transfer(context.Background(), tt.params)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestDailyLoginReward_OncePerDay(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()
	seedUser(t, st, "alice")

	granted, err := eng.DailyLoginReward(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, granted)

	balance, err := eng.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance.Experience)

	// Same day: no second grant
	granted, err = eng.DailyLoginReward(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, granted)

	balance, err = eng.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance.Experience)
}

func TestDailyLoginReward_ReplaysGrantLostAfterStamp(t *testing.T) {
	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))
	st := &flakyAppendStore{Store: store.NewMemoryStore()}
	cfg := engage.DefaultConfig()
	cfg.StoreRetryInterval = time.Millisecond
	eng := engage.New(cfg, st, nil, adapter.NewClock())
	ctx := context.Background()
	require.NoError(t, eng.Bootstrap(ctx))
	seedUser(t, st, "alice")

	// The day gets stamped but the grant dies against the store
	st.failing.Store(true)
	_, err := eng.DailyLoginReward(ctx, "alice")
	require.Error(t, err)

	balance, err := eng.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Experience)

	// The retry finds the stamp without its grant and replays the transfer
	st.failing.Store(false)
	granted, err := eng.DailyLoginReward(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, granted)

	balance, err = eng.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance.Experience)

	// The replay spent the day's token; further logins grant nothing
	granted, err = eng.DailyLoginReward(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, granted)

	balance, err = eng.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance.Experience)
}

func TestDailyLoginReward_ConcurrentLogins(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()
	seedUser(t, st, "alice")

	var wg sync.WaitGroup
	grants := make([]bool, 8)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted, err := eng.DailyLoginReward(ctx, "alice")
			assert.NoError(t, err)
			grants[i] = granted
		}()
	}
	wg.Wait()

	granted := 0
	for _, g := range grants {
		if g {
			granted++
		}
	}
	assert.Equal(t, 1, granted)

	balance, err := eng.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance.Experience)
}

func TestLedgerHistory(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "alice")
	seedUser(t, st, "bob")
	mintCoins(t, eng, "alice", 100)

	require.NoError(t, eng.Transfer(ctx, engage.TransferParams{
		From:            "alice",
		To:              "bob",
		Amount:          25,
		Asset:           domain.AssetCoin,
		Reason:          domain.ReasonOrderIncome,
		RelatedEntityID: "order-7",
		Token:           "transfer-7",
	}))

	entries, err := eng.LedgerHistory(ctx, "order-7")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var total int64
	for _, entry := range entries {
		total += entry.Amount
	}
	assert.Equal(t, int64(0), total, "a two-sided transfer conserves the asset")
}
