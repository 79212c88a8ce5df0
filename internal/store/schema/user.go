package schema

import (
	"time"
)

// User represents the users table. Besides profile fields it carries the
// denormalized counters and balances maintained by the engine. Counters are
// never written from request payloads; they move only through signed deltas
// or reconciliation overwrites.
type User struct {
	// ID is the opaque account identifier (the original openid for migrated rows,
	// a UUID for new ones). System accounts use reserved "sys:" IDs.
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Nickname is the display name embedded into feeds at read time
	Nickname string `gorm:"column:nickname;type:text"`
	// AvatarURL is the profile image location
	AvatarURL string `gorm:"column:avatar_url;type:text"`
	// Bio is the profile description
	Bio string `gorm:"column:bio;type:text"`

	// PostCount is the number of published posts by this user
	PostCount int64 `gorm:"column:post_count;not null;default:0"`
	// LikeCount is the number of likes received across the user's posts
	LikeCount int64 `gorm:"column:like_count;not null;default:0"`
	// FollowerCount is the number of live follow-user toggles targeting this user
	FollowerCount int64 `gorm:"column:follower_count;not null;default:0"`
	// FollowingCount is the number of live follow-user toggles by this user
	FollowingCount int64 `gorm:"column:following_count;not null;default:0"`

	// CoinBalance is the stored coin balance, derived from ledger entries
	CoinBalance int64 `gorm:"column:coin_balance;not null;default:0"`
	// Experience is the stored experience balance, derived from ledger entries
	Experience int64 `gorm:"column:experience;not null;default:0"`

	// LastLoginRewardDay is the UTC day (YYYY-MM-DD) the daily login reward was
	// last granted; empty when never granted
	LastLoginRewardDay string `gorm:"column:last_login_reward_day;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
