package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/store/schema"
)

// memoryStore is a mutex-guarded in-memory implementation of Store with the
// same contract as the Postgres store. It backs tests and local development;
// each exported method is atomic, matching the single-document guarantees the
// engine is allowed to rely on.
type memoryStore struct {
	mu       sync.Mutex
	users    map[string]*schema.User
	posts    map[string]*schema.Post
	comments map[string]*schema.Comment
	toggles  map[string]*schema.ToggleRecord // keyed by actor|target|kind
	ledger   []*schema.LedgerEntry
	tokens   map[string]*schema.LedgerEntry // idempotency token index
	orders   map[string]*schema.Order
	messages map[string]*schema.Message
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() Store {
	return &memoryStore{
		users:    make(map[string]*schema.User),
		posts:    make(map[string]*schema.Post),
		comments: make(map[string]*schema.Comment),
		toggles:  make(map[string]*schema.ToggleRecord),
		tokens:   make(map[string]*schema.LedgerEntry),
		orders:   make(map[string]*schema.Order),
		messages: make(map[string]*schema.Message),
	}
}

func toggleKey(actorID, targetID string, kind domain.ToggleKind) string {
	return actorID + "|" + targetID + "|" + string(kind)
}

// GetUser retrieves a user/account by ID
func (s *memoryStore) GetUser(ctx context.Context, id string) (*schema.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

// CreateUser inserts a new user; reports false when the ID already exists
func (s *memoryStore) CreateUser(ctx context.Context, user *schema.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return false, nil
	}
	cp := *user
	s.users[user.ID] = &cp
	return true, nil
}

// SetLoginRewardDay conditionally stamps the daily-reward day
func (s *memoryStore) SetLoginRewardDay(ctx context.Context, userID string, day string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok || user.LastLoginRewardDay == day {
		return false, nil
	}
	user.LastLoginRewardDay = day
	return true, nil
}

// ListUserIDs returns all account IDs, system accounts included
func (s *memoryStore) ListUserIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetPost retrieves a post by ID
func (s *memoryStore) GetPost(ctx context.Context, id string) (*schema.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *post
	return &cp, nil
}

// CreatePost inserts a new post
func (s *memoryStore) CreatePost(ctx context.Context, post *schema.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

// GetComment retrieves a comment by ID
func (s *memoryStore) GetComment(ctx context.Context, id string) (*schema.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return nil, nil
	}
	cp := *comment
	return &cp, nil
}

// CreateComment inserts a new comment
func (s *memoryStore) CreateComment(ctx context.Context, comment *schema.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *comment
	s.comments[comment.ID] = &cp
	return nil
}

// counterRef resolves the addressed counter field to a pointer inside the
// stored document; must be called with the lock held
func (s *memoryStore) counterRef(entity domain.EntityKind, id string, field domain.CounterField) (*int64, error) {
	if _, _, ok := counterColumn(entity, field); !ok {
		return nil, fmt.Errorf("no counter %q on entity %q: %w", field, entity, domain.ErrInvalidInput)
	}

	switch entity {
	case domain.EntityUser:
		user, ok := s.users[id]
		if !ok {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		switch field {
		case domain.FieldPostCount:
			return &user.PostCount, nil
		case domain.FieldLikeCount:
			return &user.LikeCount, nil
		case domain.FieldFollowerCount:
			return &user.FollowerCount, nil
		case domain.FieldFollowingCount:
			return &user.FollowingCount, nil
		case domain.FieldCoinBalance:
			return &user.CoinBalance, nil
		case domain.FieldExperience:
			return &user.Experience, nil
		}
	case domain.EntityPost:
		post, ok := s.posts[id]
		if !ok {
			return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
		}
		switch field {
		case domain.FieldLikeCount:
			return &post.LikeCount, nil
		case domain.FieldCommentCount:
			return &post.CommentCount, nil
		case domain.FieldCollectCount:
			return &post.CollectCount, nil
		case domain.FieldViewCount:
			return &post.ViewCount, nil
		}
	case domain.EntityComment:
		comment, ok := s.comments[id]
		if !ok {
			return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
		}
		if field == domain.FieldLikeCount {
			return &comment.LikeCount, nil
		}
	}
	return nil, fmt.Errorf("no counter %q on entity %q: %w", field, entity, domain.ErrInvalidInput)
}

// AddToCounter atomically applies a signed delta to one counter field
func (s *memoryStore) AddToCounter(ctx context.Context, entity domain.EntityKind, id string, field domain.CounterField, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, err := s.counterRef(entity, id, field)
	if err != nil {
		return err
	}
	*ref += delta
	if clampedFields[field] && *ref < 0 {
		*ref = 0
	}
	return nil
}

// SetCounter overwrites one counter field; reserved for reconciliation
func (s *memoryStore) SetCounter(ctx context.Context, entity domain.EntityKind, id string, field domain.CounterField, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, err := s.counterRef(entity, id, field)
	if err != nil {
		return err
	}
	*ref = value
	return nil
}

// GetToggle retrieves the toggle record for a natural key
func (s *memoryStore) GetToggle(ctx context.Context, actorID, targetID string, kind domain.ToggleKind) (*schema.ToggleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.toggles[toggleKey(actorID, targetID, kind)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// InsertToggle conditionally inserts a toggle record
func (s *memoryStore) InsertToggle(ctx context.Context, rec *schema.ToggleRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := toggleKey(rec.ActorID, rec.TargetID, rec.Kind)
	if _, ok := s.toggles[key]; ok {
		return false, nil
	}
	cp := *rec
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.toggles[key] = &cp
	return true, nil
}

// DeleteToggle removes the toggle record for a natural key
func (s *memoryStore) DeleteToggle(ctx context.Context, actorID, targetID string, kind domain.ToggleKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := toggleKey(actorID, targetID, kind)
	if _, ok := s.toggles[key]; !ok {
		return false, nil
	}
	delete(s.toggles, key)
	return true, nil
}

// CountTogglesForTarget counts live toggles of a kind referencing a target
func (s *memoryStore) CountTogglesForTarget(ctx context.Context, targetID string, kind domain.ToggleKind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, rec := range s.toggles {
		if rec.TargetID == targetID && rec.Kind == kind {
			count++
		}
	}
	return count, nil
}

// CountTogglesByActor counts live toggles of a kind set by an actor
func (s *memoryStore) CountTogglesByActor(ctx context.Context, actorID string, kind domain.ToggleKind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, rec := range s.toggles {
		if rec.ActorID == actorID && rec.Kind == kind {
			count++
		}
	}
	return count, nil
}

// GetLedgerEntryByToken retrieves a ledger entry by its idempotency token
func (s *memoryStore) GetLedgerEntryByToken(ctx context.Context, token string) (*schema.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[token]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

// AppendLedgerEntry conditionally appends an immutable ledger entry
func (s *memoryStore) AppendLedgerEntry(ctx context.Context, entry *schema.LedgerEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[entry.IdempotencyToken]; ok {
		return false, nil
	}
	cp := *entry
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.ledger = append(s.ledger, &cp)
	s.tokens[cp.IdempotencyToken] = &cp
	return true, nil
}

// SumLedger derives an account's balance from its ledger entries
func (s *memoryStore) SumLedger(ctx context.Context, accountID string, asset domain.Asset) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, entry := range s.ledger {
		if entry.AccountID == accountID && entry.Asset == asset {
			sum += entry.Amount
		}
	}
	return sum, nil
}

// ListLedgerByRelatedEntity returns all entries referencing a related entity
func (s *memoryStore) ListLedgerByRelatedEntity(ctx context.Context, relatedEntityID string) ([]*schema.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []*schema.LedgerEntry
	for _, entry := range s.ledger {
		if entry.RelatedEntityID == relatedEntityID {
			cp := *entry
			entries = append(entries, &cp)
		}
	}
	return entries, nil
}

// CreateMessage conditionally inserts an inbox message
func (s *memoryStore) CreateMessage(ctx context.Context, msg *schema.Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[msg.ID]; ok {
		return false, nil
	}
	cp := *msg
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.messages[msg.ID] = &cp
	return true, nil
}

// ListMessages returns a recipient's messages, newest first
func (s *memoryStore) ListMessages(ctx context.Context, toID string, unreadOnly bool, limit int) ([]*schema.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var messages []*schema.Message
	for _, msg := range s.messages {
		if msg.ToID != toID || (unreadOnly && msg.Read) {
			continue
		}
		cp := *msg
		messages = append(messages, &cp)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt.After(messages[j].CreatedAt) })
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

// MarkMessagesRead marks the given messages of a recipient as read
func (s *memoryStore) MarkMessagesRead(ctx context.Context, toID string, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var updated int64
	for _, id := range ids {
		msg, ok := s.messages[id]
		if !ok || msg.ToID != toID || msg.Read {
			continue
		}
		msg.Read = true
		updated++
	}
	return updated, nil
}

// GetOrder retrieves an order by ID
func (s *memoryStore) GetOrder(ctx context.Context, id string) (*schema.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

// CreateOrder inserts a new order
func (s *memoryStore) CreateOrder(ctx context.Context, order *schema.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

// TransitionOrder compare-and-swaps the order state
func (s *memoryStore) TransitionOrder(ctx context.Context, orderID string, from, to domain.OrderState, claimantID *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.State != from {
		return false, nil
	}
	order.State = to
	if claimantID != nil {
		id := *claimantID
		order.ClaimantID = &id
	}
	order.UpdatedAt = time.Now()
	return true, nil
}

// ListOrdersByState returns orders currently in any of the given states
func (s *memoryStore) ListOrdersByState(ctx context.Context, states ...domain.OrderState) ([]*schema.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[domain.OrderState]bool, len(states))
	for _, st := range states {
		wanted[st] = true
	}
	var orders []*schema.Order
	for _, order := range s.orders {
		if wanted[order.State] {
			cp := *order
			orders = append(orders, &cp)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}
