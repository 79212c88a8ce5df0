package notifier

import (
	"context"

	"github.com/campuslink/engage-core/internal/domain"
)

// Event is a notification handed to the message collaborator. The engine
// publishes events fire-and-forget; delivery is never awaited for correctness.
type Event struct {
	// Kind identifies the triggering action
	Kind domain.NotificationKind `json:"kind"`
	// ToActorID is the recipient account
	ToActorID string `json:"to_actor_id"`
	// FromActorID is the acting account, empty for system events
	FromActorID string `json:"from_actor_id,omitempty"`
	// RelatedEntityID references the post/comment/order the event concerns
	RelatedEntityID string `json:"related_entity_id,omitempty"`
	// Content is a short human-readable summary
	Content string `json:"content,omitempty"`
}

// Notifier defines the interface for dispatching notification events
//
//go:generate mockgen -source=notifier.go -destination=../mocks/notifier.go -package=mocks -mock_names=Notifier=MockNotifier
type Notifier interface {
	// Notify publishes a notification event, best effort
	Notify(ctx context.Context, event *Event) error
	// Close closes the underlying connection
	Close()
}
