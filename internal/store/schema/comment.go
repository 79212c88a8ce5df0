package schema

import (
	"time"
)

// Comment represents the comments table. Top-level comments have an empty
// ParentID; replies reference their parent comment.
type Comment struct {
	// ID is the opaque comment identifier
	ID string `gorm:"column:id;primaryKey;type:text"`
	// PostID references the commented post
	PostID string `gorm:"column:post_id;not null;type:text;index"`
	// AuthorID references the commenting user
	AuthorID string `gorm:"column:author_id;not null;type:text;index"`
	// ParentID references the parent comment for replies, empty for top-level
	ParentID string `gorm:"column:parent_id;type:text;index"`
	// Content is the comment body
	Content string `gorm:"column:content;type:text"`

	// LikeCount is the number of live like-comment toggles referencing this comment
	LikeCount int64 `gorm:"column:like_count;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Comment model
func (Comment) TableName() string {
	return "comments"
}
