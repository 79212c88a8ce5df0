package store

import (
	"context"

	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/store/schema"
)

// Store is the entity-store contract the engine is written against. It is
// deliberately narrow: point reads and writes, predicate reads, an atomic
// single-field signed increment, conditional inserts that report duplicates as
// no-ops, and a single-document compare-and-swap for order transitions. The
// engine never assumes multi-document atomicity; anything that needs to span
// documents goes through per-key locks, idempotency tokens, and reconciliation.
//
// Lookup methods return (nil, nil) when the record is absent. Transient
// failures are wrapped with domain.ErrStoreUnavailable so callers can retry.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetUser retrieves a user/account by ID
	GetUser(ctx context.Context, id string) (*schema.User, error)
	// CreateUser inserts a new user; reports false when the ID already exists
	CreateUser(ctx context.Context, user *schema.User) (bool, error)
	// SetLoginRewardDay conditionally stamps the daily-reward day; reports false
	// when the stored day already equals day (reward already granted)
	SetLoginRewardDay(ctx context.Context, userID string, day string) (bool, error)
	// ListUserIDs returns all account IDs, system accounts included
	ListUserIDs(ctx context.Context) ([]string, error)

	// GetPost retrieves a post by ID
	GetPost(ctx context.Context, id string) (*schema.Post, error)
	// CreatePost inserts a new post
	CreatePost(ctx context.Context, post *schema.Post) error
	// GetComment retrieves a comment by ID
	GetComment(ctx context.Context, id string) (*schema.Comment, error)
	// CreateComment inserts a new comment
	CreateComment(ctx context.Context, comment *schema.Comment) error

	// AddToCounter atomically applies a signed delta to one counter field of one
	// document. Count-like fields clamp at zero; balances do not.
	AddToCounter(ctx context.Context, entity domain.EntityKind, id string, field domain.CounterField, delta int64) error
	// SetCounter overwrites one counter field; reserved for reconciliation
	SetCounter(ctx context.Context, entity domain.EntityKind, id string, field domain.CounterField, value int64) error

	// GetToggle retrieves the toggle record for a natural key
	GetToggle(ctx context.Context, actorID, targetID string, kind domain.ToggleKind) (*schema.ToggleRecord, error)
	// InsertToggle conditionally inserts a toggle record; reports false when the
	// natural key already exists
	InsertToggle(ctx context.Context, rec *schema.ToggleRecord) (bool, error)
	// DeleteToggle removes the toggle record for a natural key; reports false
	// when it was already absent
	DeleteToggle(ctx context.Context, actorID, targetID string, kind domain.ToggleKind) (bool, error)
	// CountTogglesForTarget counts live toggles of a kind referencing a target
	CountTogglesForTarget(ctx context.Context, targetID string, kind domain.ToggleKind) (int64, error)
	// CountTogglesByActor counts live toggles of a kind set by an actor
	CountTogglesByActor(ctx context.Context, actorID string, kind domain.ToggleKind) (int64, error)

	// GetLedgerEntryByToken retrieves a ledger entry by its idempotency token
	GetLedgerEntryByToken(ctx context.Context, token string) (*schema.LedgerEntry, error)
	// AppendLedgerEntry conditionally appends an immutable ledger entry; reports
	// false when an entry with the same idempotency token already exists
	AppendLedgerEntry(ctx context.Context, entry *schema.LedgerEntry) (bool, error)
	// SumLedger derives an account's balance from its ledger entries
	SumLedger(ctx context.Context, accountID string, asset domain.Asset) (int64, error)
	// ListLedgerByRelatedEntity returns all entries referencing a related entity
	ListLedgerByRelatedEntity(ctx context.Context, relatedEntityID string) ([]*schema.LedgerEntry, error)

	// CreateMessage conditionally inserts an inbox message; reports false when
	// the ID already exists (a redelivered event)
	CreateMessage(ctx context.Context, msg *schema.Message) (bool, error)
	// ListMessages returns a recipient's messages, newest first
	ListMessages(ctx context.Context, toID string, unreadOnly bool, limit int) ([]*schema.Message, error)
	// MarkMessagesRead marks the given messages of a recipient as read and
	// returns how many changed
	MarkMessagesRead(ctx context.Context, toID string, ids []string) (int64, error)

	// GetOrder retrieves an order by ID
	GetOrder(ctx context.Context, id string) (*schema.Order, error)
	// CreateOrder inserts a new order
	CreateOrder(ctx context.Context, order *schema.Order) error
	// TransitionOrder compare-and-swaps the order state from `from` to `to`,
	// recording claimantID when non-nil. Reports false when the current state no
	// longer matches `from`.
	TransitionOrder(ctx context.Context, orderID string, from, to domain.OrderState, claimantID *string) (bool, error)
	// ListOrdersByState returns orders currently in any of the given states
	ListOrdersByState(ctx context.Context, states ...domain.OrderState) ([]*schema.Order, error)
}
