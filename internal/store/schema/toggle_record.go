package schema

import (
	"time"

	"github.com/campuslink/engage-core/internal/domain"
)

// ToggleRecord represents the toggles table - one row per live
// (actor, target, kind) membership fact. This is the source of truth for
// "has actor X already done Y to target Z"; the engine enforces natural-key
// uniqueness itself and the unique index is only a second line of defense.
type ToggleRecord struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ActorID is the user who set the toggle
	ActorID string `gorm:"column:actor_id;not null;type:text;uniqueIndex:idx_toggles_actor_target_kind,priority:1"`
	// TargetID is the post/comment/user the toggle references
	TargetID string `gorm:"column:target_id;not null;type:text;uniqueIndex:idx_toggles_actor_target_kind,priority:2;index:idx_toggles_target_kind,priority:1"`
	// Kind is one of the four enumerated toggle kinds
	Kind domain.ToggleKind `gorm:"column:kind;not null;type:text;uniqueIndex:idx_toggles_actor_target_kind,priority:3;index:idx_toggles_target_kind,priority:2"`
	// CreatedAt is when the toggle was switched on
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ToggleRecord model
func (ToggleRecord) TableName() string {
	return "toggles"
}
