package engage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/engage-core/internal/adapter"
	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/engage"
	"github.com/campuslink/engage-core/internal/logger"
	"github.com/campuslink/engage-core/internal/mocks"
	"github.com/campuslink/engage-core/internal/notifier"
	"github.com/campuslink/engage-core/internal/store"
	"github.com/campuslink/engage-core/internal/store/schema"
)

func TestTransfer_RetriesTransientStoreFailures(t *testing.T) {
	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	cfg := engage.DefaultConfig()
	cfg.StoreRetryInterval = time.Millisecond
	eng := engage.New(cfg, st, nil, adapter.NewClock())
	ctx := context.Background()

	st.EXPECT().GetUser(gomock.Any(), "bob").Return(&schema.User{ID: "bob"}, nil)
	// Two transient failures, then the append lands
	st.EXPECT().AppendLedgerEntry(gomock.Any(), gomock.Any()).Return(false, domain.ErrStoreUnavailable).Times(2)
	st.EXPECT().AppendLedgerEntry(gomock.Any(), gomock.Any()).Return(true, nil)
	st.EXPECT().AddToCounter(gomock.Any(), domain.EntityUser, "bob", domain.FieldCoinBalance, int64(10)).Return(nil)

	err := eng.Transfer(ctx, engage.TransferParams{
		To:     "bob",
		Amount: 10,
		Asset:  domain.AssetCoin,
		Reason: domain.ReasonDailyLogin,
		Token:  "grant-1",
	})
	assert.NoError(t, err)
}

func TestTransfer_PermanentStoreErrorIsNotRetried(t *testing.T) {
	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	cfg := engage.DefaultConfig()
	cfg.StoreRetryInterval = time.Millisecond
	eng := engage.New(cfg, st, nil, adapter.NewClock())

	st.EXPECT().GetUser(gomock.Any(), "bob").Return(&schema.User{ID: "bob"}, nil)
	st.EXPECT().AppendLedgerEntry(gomock.Any(), gomock.Any()).Return(false, errors.New("constraint violation")).Times(1)

	err := eng.Transfer(context.Background(), engage.TransferParams{
		To:     "bob",
		Amount: 10,
		Asset:  domain.AssetCoin,
		Reason: domain.ReasonDailyLogin,
		Token:  "grant-1",
	})
	assert.Error(t, err)
}

func TestSetToggle_PublishesLikeNotification(t *testing.T) {
	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	events := mocks.NewMockNotifier(ctrl)
	st := store.NewMemoryStore()
	eng := engage.New(engage.DefaultConfig(), st, events, adapter.NewClock())
	ctx := context.Background()
	require.NoError(t, eng.Bootstrap(ctx))

	seedUser(t, st, "alice")
	seedUser(t, st, "bob")
	seedPost(t, st, "post-1", "bob")

	events.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event *notifier.Event) error {
			assert.Equal(t, domain.NotifyLike, event.Kind)
			assert.Equal(t, "bob", event.ToActorID)
			assert.Equal(t, "alice", event.FromActorID)
			return nil
		})

	changed, err := eng.SetToggle(ctx, "alice", "post-1", domain.ToggleLikePost, true)
	require.NoError(t, err)
	assert.True(t, changed)

	// A repeated like publishes nothing; gomock would fail on a second call
	changed, err = eng.SetToggle(ctx, "alice", "post-1", domain.ToggleLikePost, true)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCreatePost_GrantsPublishReward(t *testing.T) {
	eng, st := newTestEngine(t, engage.DefaultConfig())
	ctx := context.Background()
	seedUser(t, st, "alice")

	post, err := eng.CreatePost(ctx, "alice", "my first post", "", nil, false)
	require.NoError(t, err)

	alice, err := eng.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.PostCount)
	assert.Equal(t, int64(10), alice.CoinBalance)

	entry, err := st.GetLedgerEntryByToken(ctx, "post-reward:"+post.ID+":credit")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, domain.ReasonPostPublish, entry.Reason)
}

func TestCreatePost_RewardDisabled(t *testing.T) {
	cfg := engage.DefaultConfig()
	cfg.PostRewardCoin = 0
	eng, st := newTestEngine(t, cfg)
	ctx := context.Background()
	seedUser(t, st, "alice")

	_, err := eng.CreatePost(ctx, "alice", "no faucet", "", nil, false)
	require.NoError(t, err)

	alice, err := eng.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), alice.CoinBalance)
}

func TestNotifierFailureDoesNotFailOperation(t *testing.T) {
	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	events := mocks.NewMockNotifier(ctrl)
	st := store.NewMemoryStore()
	eng := engage.New(engage.DefaultConfig(), st, events, adapter.NewClock())
	ctx := context.Background()
	require.NoError(t, eng.Bootstrap(ctx))

	seedUser(t, st, "alice")
	seedUser(t, st, "bob")

	events.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("stream unavailable"))

	changed, err := eng.SetToggle(ctx, "alice", "bob", domain.ToggleFollowUser, true)
	require.NoError(t, err)
	assert.True(t, changed)

	bob, err := eng.GetUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), bob.FollowerCount)
}
