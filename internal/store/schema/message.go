package schema

import (
	"time"

	"github.com/campuslink/engage-core/internal/domain"
)

// Message represents the messages table written by the notification consumer.
// The engine only publishes notification events; this schema exists for the
// message service that materializes them into an inbox.
type Message struct {
	ID string `gorm:"column:id;primaryKey;type:text"`
	// FromID is the acting user, or "system"
	FromID string `gorm:"column:from_id;type:text"`
	// ToID is the recipient
	ToID string `gorm:"column:to_id;not null;type:text;index:idx_messages_to_read,priority:1"`
	// Kind is the notification kind the message was rendered from
	Kind domain.NotificationKind `gorm:"column:kind;not null;type:text"`
	// RelatedEntityID references the post/comment/order the event concerns
	RelatedEntityID string `gorm:"column:related_entity_id;type:text"`
	// Content is the rendered message body
	Content string `gorm:"column:content;type:text"`
	// Read marks whether the recipient has seen the message
	Read bool `gorm:"column:read;not null;default:false;index:idx_messages_to_read,priority:2"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
