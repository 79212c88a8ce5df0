package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates the engine's tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.User{},
		&schema.Post{},
		&schema.Comment{},
		&schema.ToggleRecord{},
		&schema.LedgerEntry{},
		&schema.Order{},
		&schema.Message{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults suitable for the API
// server (20 open / 5 idle, 5m lifetime, 10m idle time).
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// storeErr wraps an unexpected database error so callers can classify it as
// transient and retry with backoff
func storeErr(msg string, err error) error {
	return fmt.Errorf("%s: %v: %w", msg, err, domain.ErrStoreUnavailable)
}

// GetUser retrieves a user/account by ID
func (s *pgStore) GetUser(ctx context.Context, id string) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("failed to get user", err)
	}
	return &user, nil
}

// CreateUser inserts a new user; reports false when the ID already exists
func (s *pgStore) CreateUser(ctx context.Context, user *schema.User) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return false, storeErr("failed to create user", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SetLoginRewardDay conditionally stamps the daily-reward day
func (s *pgStore) SetLoginRewardDay(ctx context.Context, userID string, day string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&schema.User{}).
		Where("id = ? AND last_login_reward_day IS DISTINCT FROM ?", userID, day).
		UpdateColumn("last_login_reward_day", day)
	if res.Error != nil {
		return false, storeErr("failed to set login reward day", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListUserIDs returns all account IDs, system accounts included
func (s *pgStore) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&schema.User{}).Pluck("id", &ids).Error
	if err != nil {
		return nil, storeErr("failed to list user IDs", err)
	}
	return ids, nil
}

// GetPost retrieves a post by ID
func (s *pgStore) GetPost(ctx context.Context, id string) (*schema.Post, error) {
	var post schema.Post
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("failed to get post", err)
	}
	return &post, nil
}

// CreatePost inserts a new post
func (s *pgStore) CreatePost(ctx context.Context, post *schema.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return storeErr("failed to create post", err)
	}
	return nil
}

// GetComment retrieves a comment by ID
func (s *pgStore) GetComment(ctx context.Context, id string) (*schema.Comment, error) {
	var comment schema.Comment
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("failed to get comment", err)
	}
	return &comment, nil
}

// CreateComment inserts a new comment
func (s *pgStore) CreateComment(ctx context.Context, comment *schema.Comment) error {
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return storeErr("failed to create comment", err)
	}
	return nil
}

// AddToCounter atomically applies a signed delta to one counter field of one
// document using a single-field UPDATE expression, never read-modify-write
func (s *pgStore) AddToCounter(ctx context.Context, entity domain.EntityKind, id string, field domain.CounterField, delta int64) error {
	table, column, ok := counterColumn(entity, field)
	if !ok {
		return fmt.Errorf("no counter %q on entity %q: %w", field, entity, domain.ErrInvalidInput)
	}

	var expr clause.Expr
	if clampedFields[field] {
		expr = gorm.Expr("GREATEST("+column+" + ?, 0)", delta)
	} else {
		expr = gorm.Expr(column+" + ?", delta)
	}

	res := s.db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		UpdateColumn(column, expr)
	if res.Error != nil {
		return storeErr("failed to apply counter delta", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

// SetCounter overwrites one counter field; reserved for reconciliation
func (s *pgStore) SetCounter(ctx context.Context, entity domain.EntityKind, id string, field domain.CounterField, value int64) error {
	table, column, ok := counterColumn(entity, field)
	if !ok {
		return fmt.Errorf("no counter %q on entity %q: %w", field, entity, domain.ErrInvalidInput)
	}

	res := s.db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		UpdateColumn(column, value)
	if res.Error != nil {
		return storeErr("failed to set counter", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

// GetToggle retrieves the toggle record for a natural key
func (s *pgStore) GetToggle(ctx context.Context, actorID, targetID string, kind domain.ToggleKind) (*schema.ToggleRecord, error) {
	var rec schema.ToggleRecord
	err := s.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ? AND kind = ?", actorID, targetID, kind).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("failed to get toggle", err)
	}
	return &rec, nil
}

// InsertToggle conditionally inserts a toggle record; a natural-key duplicate
// is reported as an ordinary no-op, not an error
func (s *pgStore) InsertToggle(ctx context.Context, rec *schema.ToggleRecord) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}, {Name: "kind"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return false, storeErr("failed to insert toggle", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteToggle removes the toggle record for a natural key
func (s *pgStore) DeleteToggle(ctx context.Context, actorID, targetID string, kind domain.ToggleKind) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ? AND kind = ?", actorID, targetID, kind).
		Delete(&schema.ToggleRecord{})
	if res.Error != nil {
		return false, storeErr("failed to delete toggle", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CountTogglesForTarget counts live toggles of a kind referencing a target
func (s *pgStore) CountTogglesForTarget(ctx context.Context, targetID string, kind domain.ToggleKind) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.ToggleRecord{}).
		Where("target_id = ? AND kind = ?", targetID, kind).
		Count(&count).Error
	if err != nil {
		return 0, storeErr("failed to count toggles for target", err)
	}
	return count, nil
}

// CountTogglesByActor counts live toggles of a kind set by an actor
func (s *pgStore) CountTogglesByActor(ctx context.Context, actorID string, kind domain.ToggleKind) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.ToggleRecord{}).
		Where("actor_id = ? AND kind = ?", actorID, kind).
		Count(&count).Error
	if err != nil {
		return 0, storeErr("failed to count toggles by actor", err)
	}
	return count, nil
}

// GetLedgerEntryByToken retrieves a ledger entry by its idempotency token
func (s *pgStore) GetLedgerEntryByToken(ctx context.Context, token string) (*schema.LedgerEntry, error) {
	var entry schema.LedgerEntry
	err := s.db.WithContext(ctx).Where("idempotency_token = ?", token).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("failed to get ledger entry", err)
	}
	return &entry, nil
}

// AppendLedgerEntry conditionally appends an immutable ledger entry
func (s *pgStore) AppendLedgerEntry(ctx context.Context, entry *schema.LedgerEntry) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_token"}},
			DoNothing: true,
		}).
		Create(entry)
	if res.Error != nil {
		return false, storeErr("failed to append ledger entry", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SumLedger derives an account's balance from its ledger entries
func (s *pgStore) SumLedger(ctx context.Context, accountID string, asset domain.Asset) (int64, error) {
	var sum int64
	err := s.db.WithContext(ctx).
		Model(&schema.LedgerEntry{}).
		Where("account_id = ? AND asset = ?", accountID, asset).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, storeErr("failed to sum ledger", err)
	}
	return sum, nil
}

// ListLedgerByRelatedEntity returns all entries referencing a related entity
func (s *pgStore) ListLedgerByRelatedEntity(ctx context.Context, relatedEntityID string) ([]*schema.LedgerEntry, error) {
	var entries []*schema.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("related_entity_id = ?", relatedEntityID).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, storeErr("failed to list ledger entries", err)
	}
	return entries, nil
}

// CreateMessage conditionally inserts an inbox message. JetStream delivers at
// least once; the ID carries the stream sequence, so a redelivery is reported
// as a duplicate instead of a second row.
func (s *pgStore) CreateMessage(ctx context.Context, msg *schema.Message) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(msg)
	if res.Error != nil {
		return false, storeErr("failed to create message", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListMessages returns a recipient's messages, newest first
func (s *pgStore) ListMessages(ctx context.Context, toID string, unreadOnly bool, limit int) ([]*schema.Message, error) {
	query := s.db.WithContext(ctx).Where("to_id = ?", toID)
	if unreadOnly {
		query = query.Where("read = false")
	}
	var messages []*schema.Message
	err := query.Order("created_at DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, storeErr("failed to list messages", err)
	}
	return messages, nil
}

// MarkMessagesRead marks the given messages of a recipient as read. The
// recipient predicate keeps callers from flipping other inboxes' messages.
func (s *pgStore) MarkMessagesRead(ctx context.Context, toID string, ids []string) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&schema.Message{}).
		Where("to_id = ? AND id IN ? AND read = false", toID, ids).
		UpdateColumn("read", true)
	if res.Error != nil {
		return 0, storeErr("failed to mark messages read", res.Error)
	}
	return res.RowsAffected, nil
}

// GetOrder retrieves an order by ID
func (s *pgStore) GetOrder(ctx context.Context, id string) (*schema.Order, error) {
	var order schema.Order
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("failed to get order", err)
	}
	return &order, nil
}

// CreateOrder inserts a new order
func (s *pgStore) CreateOrder(ctx context.Context, order *schema.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return storeErr("failed to create order", err)
	}
	return nil
}

// TransitionOrder compare-and-swaps the order state at the single-document
// level. The WHERE clause carries the expected current state, so first writer
// wins and the losers see no rows affected.
func (s *pgStore) TransitionOrder(ctx context.Context, orderID string, from, to domain.OrderState, claimantID *string) (bool, error) {
	updates := map[string]interface{}{
		"state":      to,
		"updated_at": time.Now(),
	}
	if claimantID != nil {
		updates["claimant_id"] = *claimantID
	}

	res := s.db.WithContext(ctx).
		Model(&schema.Order{}).
		Where("id = ? AND state = ?", orderID, from).
		Updates(updates)
	if res.Error != nil {
		return false, storeErr("failed to transition order", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListOrdersByState returns orders currently in any of the given states
func (s *pgStore) ListOrdersByState(ctx context.Context, states ...domain.OrderState) ([]*schema.Order, error) {
	var orders []*schema.Order
	err := s.db.WithContext(ctx).
		Where("state IN ?", states).
		Order("created_at").
		Find(&orders).Error
	if err != nil {
		return nil, storeErr("failed to list orders by state", err)
	}
	return orders, nil
}
