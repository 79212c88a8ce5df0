package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Post represents the posts table
type Post struct {
	// ID is the opaque post identifier
	ID string `gorm:"column:id;primaryKey;type:text"`
	// AuthorID references the publishing user
	AuthorID string `gorm:"column:author_id;not null;type:text;index"`
	// Content is the post body
	Content string `gorm:"column:content;type:text"`
	// Images is the JSON array of uploaded image URLs
	Images datatypes.JSON `gorm:"column:images"`
	// Tag is the feed category (share, help, trade, ...)
	Tag string `gorm:"column:tag;type:text;index"`
	// Anonymous hides the author's identity at render time
	Anonymous bool `gorm:"column:anonymous;not null;default:false"`

	// LikeCount is the number of live like-post toggles referencing this post
	LikeCount int64 `gorm:"column:like_count;not null;default:0"`
	// CommentCount is the number of comments on this post
	CommentCount int64 `gorm:"column:comment_count;not null;default:0"`
	// CollectCount is the number of live collect-post toggles referencing this post
	CollectCount int64 `gorm:"column:collect_count;not null;default:0"`
	// ViewCount counts detail views
	ViewCount int64 `gorm:"column:view_count;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Post model
func (Post) TableName() string {
	return "posts"
}
