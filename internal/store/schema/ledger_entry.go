package schema

import (
	"time"

	"github.com/campuslink/engage-core/internal/domain"
)

// LedgerEntry represents the ledger_entries table - the append-only coin and
// experience transaction log. Entries are immutable once written; stored
// balances are derived and can always be recomputed from this table.
type LedgerEntry struct {
	// ID is a ULID assigned at write time; lexicographic order follows write order
	ID string `gorm:"column:id;primaryKey;type:text"`
	// AccountID is the account whose balance this entry moves
	AccountID string `gorm:"column:account_id;not null;type:text;index:idx_ledger_account_asset,priority:1"`
	// Asset is coin or experience
	Asset domain.Asset `gorm:"column:asset;not null;type:text;index:idx_ledger_account_asset,priority:2"`
	// Amount is the signed delta applied to the account
	Amount int64 `gorm:"column:amount;not null"`
	// Reason records why the entry was written
	Reason domain.LedgerReason `gorm:"column:reason;not null;type:text"`
	// RelatedEntityID references the triggering post/order/account
	RelatedEntityID string `gorm:"column:related_entity_id;type:text;index"`
	// IdempotencyToken makes retried writes at-most-once; one half of a transfer
	// owns exactly one token
	IdempotencyToken string `gorm:"column:idempotency_token;not null;type:text;uniqueIndex"`
	// BalanceAfter is the stored balance snapshot taken right after the delta applied
	BalanceAfter int64 `gorm:"column:balance_after;not null"`
	// CreatedAt is when the entry was appended
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the LedgerEntry model
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
