package schema

import (
	"time"

	"github.com/campuslink/engage-core/internal/domain"
)

// Order represents the orders table - a task-post whose lifecycle is governed
// exclusively by the order state machine. State and ClaimantID are written
// only through compare-and-swap transitions, never by direct overwrite.
type Order struct {
	// ID is the opaque order identifier
	ID string `gorm:"column:id;primaryKey;type:text"`
	// OwnerID is the user who opened the order
	OwnerID string `gorm:"column:owner_id;not null;type:text;index"`
	// Title describes the task
	Title string `gorm:"column:title;type:text"`
	// Price is the advertised task price in coin
	Price int64 `gorm:"column:price;not null"`
	// State is the lifecycle state (open, claimed, settled, cancelled)
	State domain.OrderState `gorm:"column:state;not null;type:text;index"`
	// ClaimantID is the user who claimed the order, nil while open
	ClaimantID *string `gorm:"column:claimant_id;type:text"`
	// EscrowAmount is the coin reserved against this order at open time
	EscrowAmount int64 `gorm:"column:escrow_amount;not null"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
