package engage_test

import (
	"context"
	"fmt"
	"sync"
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

// slowSettleStore delays the claimed-to-settled transition so a concurrent
// cancel of the same order has time to arrive mid-settle.
type slowSettleStore struct {
	store.Store
	delay time.Duration
}

func (s *slowSettleStore) TransitionOrder(ctx context.Context, orderID string, from, to domain.OrderState, claimantID *string) (bool, error) {
	if from == domain.OrderClaimed && to == domain.OrderSettled {
		time.Sleep(s.delay)
	}
	return s.Store.TransitionOrder(ctx, orderID, from, to, claimantID)
}

func TestOrderLifecycle_OpenClaimSettle(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	seedUser(t, st, "worker")
	mintCoins(t, eng, "owner", 100)

	order, err := eng.OpenOrder(ctx, "owner", "translate a document", 100)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderOpen, order.State)
	assert.Equal(t, int64(100), order.EscrowAmount)

	// The price moved out of the owner into escrow
	assert.Equal(t, int64(0), coinBalance(t, eng, "owner"))
	assert.Equal(t, int64(100), coinBalance(t, eng, domain.AccountEscrow))

	order, err = eng.ClaimOrder(ctx, order.ID, "worker")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderClaimed, order.State)
	require.NotNil(t, order.ClaimantID)
	assert.Equal(t, "worker", *order.ClaimantID)

	order, err = eng.SettleOrder(ctx, order.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderSettled, order.State)

	// Default fee is 10%: worker gets 90, platform keeps 10, escrow empties
	assert.Equal(t, int64(90), coinBalance(t, eng, "worker"))
	assert.Equal(t, int64(10), coinBalance(t, eng, domain.AccountPlatform))
	assert.Equal(t, int64(0), coinBalance(t, eng, domain.AccountEscrow))
}

func TestOpenOrder_InsufficientFunds(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	mintCoins(t, eng, "owner", 10)

	_, err := eng.OpenOrder(ctx, "owner", "too expensive", 50)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// The unfundable order was cancelled, not left open
	orders, listErr := st.ListOrdersByState(ctx, domain.OrderCancelled)
	require.NoError(t, listErr)
	require.Len(t, orders, 1)

	open, listErr := st.ListOrdersByState(ctx, domain.OrderOpen)
	require.NoError(t, listErr)
	assert.Empty(t, open)

	assert.Equal(t, int64(10), coinBalance(t, eng, "owner"))
}

func TestOpenOrder_Validation(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()
	seedUser(t, st, "owner")

	_, err := eng.OpenOrder(ctx, "owner", "", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = eng.OpenOrder(ctx, "owner", "free work", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = eng.OpenOrder(ctx, "ghost", "no such owner", 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClaimOrder_SingleWinnerUnderContention(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	mintCoins(t, eng, "owner", 50)

	const claimants = 8
	for i := range claimants {
		seedUser(t, st, fmt.Sprintf("worker-%d", i))
	}

	order, err := eng.OpenOrder(ctx, "owner", "race to claim", 50)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, claimants)
	for i := range claimants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = eng.ClaimOrder(ctx, order.ID, fmt.Sprintf("worker-%d", i))
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
		}
	}
	assert.Equal(t, 1, winners)

	current, err := eng.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderClaimed, current.State)
	require.NotNil(t, current.ClaimantID)
}

func TestClaimOrder_RepeatByWinnerIsNoop(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	seedUser(t, st, "worker")
	mintCoins(t, eng, "owner", 50)

	order, err := eng.OpenOrder(ctx, "owner", "claim twice", 50)
	require.NoError(t, err)

	_, err = eng.ClaimOrder(ctx, order.ID, "worker")
	require.NoError(t, err)

	again, err := eng.ClaimOrder(ctx, order.ID, "worker")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderClaimed, again.State)
}

func TestClaimOrder_Rejections(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	seedUser(t, st, "worker")
	mintCoins(t, eng, "owner", 50)

	order, err := eng.OpenOrder(ctx, "owner", "no self claim", 50)
	require.NoError(t, err)

	_, err = eng.ClaimOrder(ctx, order.ID, "owner")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = eng.ClaimOrder(ctx, order.ID, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = eng.ClaimOrder(ctx, "no-such-order", "worker")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettleOrder_Idempotent(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	seedUser(t, st, "worker")
	mintCoins(t, eng, "owner", 100)

	order, err := eng.OpenOrder(ctx, "owner", "settle twice", 100)
	require.NoError(t, err)
	_, err = eng.ClaimOrder(ctx, order.ID, "worker")
	require.NoError(t, err)

	_, err = eng.SettleOrder(ctx, order.ID, "owner")
	require.NoError(t, err)

	// A second settle replays spent tokens and moves nothing
	settled, err := eng.SettleOrder(ctx, order.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderSettled, settled.State)

	assert.Equal(t, int64(90), coinBalance(t, eng, "worker"))
	assert.Equal(t, int64(10), coinBalance(t, eng, domain.AccountPlatform))
	assert.Equal(t, int64(0), coinBalance(t, eng, domain.AccountEscrow))
}

func TestSettleOrder_Rejections(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	seedUser(t, st, "worker")
	mintCoins(t, eng, "owner", 50)

	order, err := eng.OpenOrder(ctx, "owner", "settle rules", 50)
	require.NoError(t, err)

	// An open order has nobody to pay
	_, err = eng.SettleOrder(ctx, order.ID, "owner")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = eng.ClaimOrder(ctx, order.ID, "worker")
	require.NoError(t, err)

	// Only the owner settles
	_, err = eng.SettleOrder(ctx, order.ID, "worker")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCancelOrder_OpenRefundsEscrow(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	mintCoins(t, eng, "owner", 50)

	order, err := eng.OpenOrder(ctx, "owner", "changed my mind", 50)
	require.NoError(t, err)

	cancelled, err := eng.CancelOrder(ctx, order.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.State)

	assert.Equal(t, int64(50), coinBalance(t, eng, "owner"))
	assert.Equal(t, int64(0), coinBalance(t, eng, domain.AccountEscrow))

	// A cancelled order is terminal
	_, err = eng.CancelOrder(ctx, order.ID, "owner")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelOrder_ClaimedConsentRules(t *testing.T) {
	cfg := engage.DefaultConfig()
	cfg.ClaimedCancelNeedsConsent = true
	eng, st := newTestEngine(t, cfg)
	ctx := context.Background()

	seedUser(t, st, "owner")
	seedUser(t, st, "worker")
	seedUser(t, st, "stranger")
	mintCoins(t, eng, "owner", 50)

	order, err := eng.OpenOrder(ctx, "owner", "consent required", 50)
	require.NoError(t, err)
	_, err = eng.ClaimOrder(ctx, order.ID, "worker")
	require.NoError(t, err)

	// With consent mode on the owner alone cannot walk away
	_, err = eng.CancelOrder(ctx, order.ID, "owner")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = eng.CancelOrder(ctx, order.ID, "stranger")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// The claimant can release the order; the owner is refunded
	cancelled, err := eng.CancelOrder(ctx, order.ID, "worker")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.State)
	assert.Equal(t, int64(50), coinBalance(t, eng, "owner"))
}

func TestCancelOrder_ClaimedByOwnerWithoutConsentMode(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	seedUser(t, st, "worker")
	mintCoins(t, eng, "owner", 50)

	order, err := eng.OpenOrder(ctx, "owner", "owner cancels", 50)
	require.NoError(t, err)
	_, err = eng.ClaimOrder(ctx, order.ID, "worker")
	require.NoError(t, err)

	cancelled, err := eng.CancelOrder(ctx, order.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.State)
	assert.Equal(t, int64(50), coinBalance(t, eng, "owner"))
	assert.Equal(t, int64(0), coinBalance(t, eng, "worker"))
}

func TestCancelOrder_SettledIsTerminal(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	seedUser(t, st, "worker")
	mintCoins(t, eng, "owner", 100)

	order, err := eng.OpenOrder(ctx, "owner", "no takebacks", 100)
	require.NoError(t, err)
	_, err = eng.ClaimOrder(ctx, order.ID, "worker")
	require.NoError(t, err)
	_, err = eng.SettleOrder(ctx, order.ID, "owner")
	require.NoError(t, err)

	_, err = eng.CancelOrder(ctx, order.ID, "owner")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(90), coinBalance(t, eng, "worker"))
}

func TestOrderTransitions_ConcurrentSettleAndCancelConserveEscrow(t *testing.T) {
	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))
	st := &slowSettleStore{Store: store.NewMemoryStore(), delay: 50 * time.Millisecond}
	eng := engage.New(engage.DefaultConfig(), st, nil, adapter.NewClock())
	ctx := context.Background()
	require.NoError(t, eng.Bootstrap(ctx))

	seedUser(t, st, "owner")
	seedUser(t, st, "worker")
	mintCoins(t, eng, "owner", 200)

	order, err := eng.OpenOrder(ctx, "owner", "contested order", 100)
	require.NoError(t, err)
	bystander, err := eng.OpenOrder(ctx, "owner", "bystander order", 100)
	require.NoError(t, err)
	_, err = eng.ClaimOrder(ctx, order.ID, "worker")
	require.NoError(t, err)

	// Race a settle against a cancel of the same order; the settle's payouts
	// precede its slowed transition, which is exactly where an unserialized
	// cancel could refund escrow the settle already spent.
	var settleErr, cancelErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, settleErr = eng.SettleOrder(ctx, order.ID, "owner")
	}()
	time.Sleep(10 * time.Millisecond)
	_, cancelErr = eng.CancelOrder(ctx, order.ID, "worker")
	<-done

	// Exactly one transition applies; the loser sees a terminal state
	winners := 0
	for _, err := range []error{settleErr, cancelErr} {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, winners)

	// Only this order's 100 left escrow, whichever way the race went
	current, err := eng.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	switch current.State {
	case domain.OrderSettled:
		assert.Equal(t, int64(90), coinBalance(t, eng, "worker"))
		assert.Equal(t, int64(10), coinBalance(t, eng, domain.AccountPlatform))
		assert.Equal(t, int64(0), coinBalance(t, eng, "owner"))
	case domain.OrderCancelled:
		assert.Equal(t, int64(100), coinBalance(t, eng, "owner"))
		assert.Equal(t, int64(0), coinBalance(t, eng, "worker"))
	default:
		t.Fatalf("order ended in state %s", current.State)
	}
	assert.Equal(t, int64(100), coinBalance(t, eng, domain.AccountEscrow))

	// The bystander's escrow survived intact and refunds in full
	_, err = eng.CancelOrder(ctx, bystander.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(0), coinBalance(t, eng, domain.AccountEscrow))
}

func TestClaimOrder_UnfundedOrderRejected(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	seedUser(t, st, "worker")

	// An open order document with no escrow debit on the ledger, as left
	// behind by a crash between the order write and its funding transfer
	require.NoError(t, st.CreateOrder(ctx, &schema.Order{
		ID:           "order-1",
		OwnerID:      "owner",
		Title:        "never funded",
		Price:        100,
		State:        domain.OrderOpen,
		EscrowAmount: 100,
	}))

	_, err := eng.ClaimOrder(ctx, "order-1", "worker")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	current, err := eng.GetOrder(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderOpen, current.State)
}

func TestSettleOrder_UnfundedClaimedOrderPaysNothing(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()

	seedUser(t, st, "owner")
	seedUser(t, st, "worker")
	seedUser(t, st, "other")
	mintCoins(t, eng, "other", 100)

	// Another owner's funded order shares the escrow account; an unfunded
	// settle must not be able to spend it
	funded, err := eng.OpenOrder(ctx, "other", "funded order", 100)
	require.NoError(t, err)

	claimant := "worker"
	require.NoError(t, st.CreateOrder(ctx, &schema.Order{
		ID:           "order-1",
		OwnerID:      "owner",
		Title:        "never funded",
		Price:        100,
		State:        domain.OrderClaimed,
		ClaimantID:   &claimant,
		EscrowAmount: 100,
	}))

	_, err = eng.SettleOrder(ctx, "order-1", "owner")
	assert.ErrorIs(t, err, domain.ErrDriftDetected)

	assert.Equal(t, int64(0), coinBalance(t, eng, "worker"))
	assert.Equal(t, int64(100), coinBalance(t, eng, domain.AccountEscrow))

	_, err = eng.CancelOrder(ctx, funded.ID, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(100), coinBalance(t, eng, "other"))
}
