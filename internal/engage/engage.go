package engage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/campuslink/engage-core/internal/adapter"
	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/logger"
	"github.com/campuslink/engage-core/internal/notifier"
	"github.com/campuslink/engage-core/internal/store"
	"github.com/campuslink/engage-core/internal/store/schema"
)

// Config holds the engine's policy knobs
type Config struct {
	// FeeBasisPoints is the platform fee retained on settle, in basis points
	// of the escrow amount (1000 = 10%)
	FeeBasisPoints int
	// DailyLoginXP is the experience granted once per UTC day on login
	DailyLoginXP int64
	// LikeRewardXP is the experience granted to a post's author the first time
	// another user likes the post
	LikeRewardXP int64
	// PostRewardCoin is the coin granted to the author on publishing a post;
	// zero disables the grant
	PostRewardCoin int64
	// ClaimedCancelNeedsConsent makes cancelling a claimed order require the
	// claimant's consent
	ClaimedCancelNeedsConsent bool
	// UnfundedOrderGrace is how long an open order may stay unfunded before
	// reconciliation cancels it
	UnfundedOrderGrace time.Duration
	// StoreRetries bounds retries of transiently failing store calls
	StoreRetries uint64
	// StoreRetryInterval is the initial backoff interval between retries
	StoreRetryInterval time.Duration
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		FeeBasisPoints:     1000,
		DailyLoginXP:       5,
		LikeRewardXP:       2,
		PostRewardCoin:     10,
		UnfundedOrderGrace: 10 * time.Minute,
		StoreRetries:       3,
		StoreRetryInterval: 100 * time.Millisecond,
	}
}

// Engine is the social-interaction ledger and order engine. All mutations of
// counters, balances, toggle records, and order state go through it; the
// surrounding request layer only ever calls these methods.
type Engine struct {
	store    store.Store
	notifier notifier.Notifier
	clock    adapter.Clock
	locks    *keyLock
	// orderLocks is a separate shard set from locks: an order transition holds
	// its order lock across transfers, which take account locks from locks.
	orderLocks *keyLock
	cfg        Config
}

// New creates an engine on top of the given store and collaborators
func New(cfg Config, st store.Store, n notifier.Notifier, clk adapter.Clock) *Engine {
	if cfg.StoreRetries == 0 {
		cfg.StoreRetries = DefaultConfig().StoreRetries
	}
	if cfg.StoreRetryInterval == 0 {
		cfg.StoreRetryInterval = DefaultConfig().StoreRetryInterval
	}
	if cfg.UnfundedOrderGrace == 0 {
		cfg.UnfundedOrderGrace = DefaultConfig().UnfundedOrderGrace
	}
	return &Engine{
		store:      st,
		notifier:   n,
		clock:      clk,
		locks:      newKeyLock(),
		orderLocks: newKeyLock(),
		cfg:        cfg,
	}
}

// Bootstrap ensures the system escrow and platform accounts exist
func (e *Engine) Bootstrap(ctx context.Context) error {
	for _, id := range []string{domain.AccountEscrow, domain.AccountPlatform} {
		_, err := e.store.CreateUser(ctx, &schema.User{ID: id, Nickname: id})
		if err != nil {
			return fmt.Errorf("failed to bootstrap account %s: %w", id, err)
		}
	}
	return nil
}

// withRetry runs a store operation, retrying transient failures with bounded
// exponential backoff. Business errors pass through untouched.
func (e *Engine) withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.StoreRetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, e.cfg.StoreRetries), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err != nil && !errors.Is(err, domain.ErrStoreUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// notify dispatches a notification event best effort; failures are logged and
// never affect the outcome of the triggering operation
func (e *Engine) notify(ctx context.Context, event *notifier.Event) {
	if e.notifier == nil || event.ToActorID == "" || event.ToActorID == event.FromActorID {
		return
	}
	if err := e.notifier.Notify(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Notification dispatch failed",
			zap.String("kind", string(event.Kind)),
			zap.String("to", event.ToActorID),
			zap.Error(err),
		)
	}
}

// Balance is an account's stored balances
type Balance struct {
	CoinBalance int64 `json:"coin_balance"`
	Experience  int64 `json:"experience"`
}

// GetBalance returns the stored coin and experience balances of an account
func (e *Engine) GetBalance(ctx context.Context, accountID string) (*Balance, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account ID is required: %w", domain.ErrInvalidInput)
	}
	user, err := e.store.GetUser(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}
	return &Balance{CoinBalance: user.CoinBalance, Experience: user.Experience}, nil
}

// GetUser returns a user by ID
func (e *Engine) GetUser(ctx context.Context, id string) (*schema.User, error) {
	user, err := e.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return user, nil
}

// GetPost returns a post by ID
func (e *Engine) GetPost(ctx context.Context, id string) (*schema.Post, error) {
	post, err := e.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	return post, nil
}

// GetComment returns a comment by ID
func (e *Engine) GetComment(ctx context.Context, id string) (*schema.Comment, error) {
	comment, err := e.store.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	return comment, nil
}

// EnsureUser creates the account if it does not exist yet and returns it
func (e *Engine) EnsureUser(ctx context.Context, id, nickname string) (*schema.User, error) {
	if id == "" {
		return nil, fmt.Errorf("user ID is required: %w", domain.ErrInvalidInput)
	}
	user := &schema.User{ID: id, Nickname: nickname}
	if _, err := e.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return e.store.GetUser(ctx, id)
}

// DailyLoginReward grants the daily login experience at most once per UTC
// day. The day stamp is a conditional single-document write and the grant is
// keyed on (account, day), so replays and concurrent logins are no-ops. The
// return value reports whether this call stamped the day; a login that finds
// the day stamped but the grant missing (an earlier attempt died between the
// two writes) replays the grant and reports false.
func (e *Engine) DailyLoginReward(ctx context.Context, accountID string) (bool, error) {
	user, err := e.store.GetUser(ctx, accountID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}

	day := e.clock.Now().UTC().Format("2006-01-02")
	token := fmt.Sprintf("daily-login:%s:%s", accountID, day)

	stamped, err := e.store.SetLoginRewardDay(ctx, accountID, day)
	if err != nil {
		return false, err
	}
	if !stamped {
		granted, err := e.store.GetLedgerEntryByToken(ctx, token+":credit")
		if err != nil {
			return false, err
		}
		if granted != nil {
			return false, nil
		}
	}

	err = e.Transfer(ctx, TransferParams{
		To:              accountID,
		Amount:          e.cfg.DailyLoginXP,
		Asset:           domain.AssetExperience,
		Reason:          domain.ReasonDailyLogin,
		RelatedEntityID: accountID,
		Token:           token,
	})
	if err != nil {
		return false, err
	}
	return stamped, nil
}

// CreatePost publishes a post and bumps the author's post count
func (e *Engine) CreatePost(ctx context.Context, authorID, content, tag string, images datatypes.JSON, anonymous bool) (*schema.Post, error) {
	if authorID == "" || content == "" {
		return nil, fmt.Errorf("author and content are required: %w", domain.ErrInvalidInput)
	}
	author, err := e.store.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("author %s: %w", authorID, domain.ErrNotFound)
	}

	post := &schema.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Content:   content,
		Images:    images,
		Tag:       tag,
		Anonymous: anonymous,
		CreatedAt: e.clock.Now(),
		UpdatedAt: e.clock.Now(),
	}
	if err := e.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	if err := e.applyDelta(ctx, domain.EntityUser, authorID, domain.FieldPostCount, 1); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("post_id", post.ID),
			zap.String("detail", "post created but post_count delta failed; reconciliation will repair"),
		)
	}

	// Publishing is the coin faucet of the economy. Keyed on the post ID, so a
	// retried publish grants once; a failed grant loses the reward, not the post.
	if e.cfg.PostRewardCoin > 0 {
		err := e.Transfer(ctx, TransferParams{
			To:              authorID,
			Amount:          e.cfg.PostRewardCoin,
			Asset:           domain.AssetCoin,
			Reason:          domain.ReasonPostPublish,
			RelatedEntityID: post.ID,
			Token:           "post-reward:" + post.ID,
		})
		if err != nil {
			logger.WarnCtx(ctx, "Post publish reward failed",
				zap.String("post_id", post.ID),
				zap.String("author_id", authorID),
				zap.Error(err),
			)
		}
	}
	return post, nil
}

// CreateComment adds a comment (or reply), bumps the post's comment count,
// and notifies the post author or the parent commenter
func (e *Engine) CreateComment(ctx context.Context, authorID, postID, parentID, content string) (*schema.Comment, error) {
	if authorID == "" || postID == "" || content == "" {
		return nil, fmt.Errorf("author, post, and content are required: %w", domain.ErrInvalidInput)
	}
	post, err := e.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %s: %w", postID, domain.ErrNotFound)
	}

	var parent *schema.Comment
	if parentID != "" {
		parent, err = e.store.GetComment(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.PostID != postID {
			return nil, fmt.Errorf("parent comment %s: %w", parentID, domain.ErrNotFound)
		}
	}

	comment := &schema.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  authorID,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: e.clock.Now(),
	}
	if err := e.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if err := e.applyDelta(ctx, domain.EntityPost, postID, domain.FieldCommentCount, 1); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("comment_id", comment.ID),
			zap.String("detail", "comment created but comment_count delta failed; reconciliation will repair"),
		)
	}

	if parent != nil {
		e.notify(ctx, &notifier.Event{
			Kind:            domain.NotifyCommentReply,
			ToActorID:       parent.AuthorID,
			FromActorID:     authorID,
			RelatedEntityID: postID,
			Content:         "replied to your comment",
		})
	} else {
		e.notify(ctx, &notifier.Event{
			Kind:            domain.NotifyComment,
			ToActorID:       post.AuthorID,
			FromActorID:     authorID,
			RelatedEntityID: postID,
			Content:         "commented on your post",
		})
	}
	return comment, nil
}

// Inbox returns the account's materialized notification messages, newest
// first. Messages are written by the messenger consumer, not by the engine,
// so an empty inbox right after a like is a normal answer.
func (e *Engine) Inbox(ctx context.Context, accountID string, unreadOnly bool, limit int) ([]*schema.Message, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account ID is required: %w", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return e.store.ListMessages(ctx, accountID, unreadOnly, limit)
}

// MarkMessagesRead marks the caller's messages as read and reports how many
// actually changed. IDs belonging to other inboxes are silently skipped.
func (e *Engine) MarkMessagesRead(ctx context.Context, accountID string, ids []string) (int64, error) {
	if accountID == "" || len(ids) == 0 {
		return 0, fmt.Errorf("account ID and message IDs are required: %w", domain.ErrInvalidInput)
	}
	return e.store.MarkMessagesRead(ctx, accountID, ids)
}

// RecordView bumps a post's view counter
func (e *Engine) RecordView(ctx context.Context, postID string) error {
	if postID == "" {
		return fmt.Errorf("post ID is required: %w", domain.ErrInvalidInput)
	}
	return e.applyDelta(ctx, domain.EntityPost, postID, domain.FieldViewCount, 1)
}
