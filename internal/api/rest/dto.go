package rest

import (
	"time"

	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/store/schema"
)

// CreatePostRequest is the body of POST /api/v1/posts
type CreatePostRequest struct {
	Content   string   `json:"content" binding:"required"`
	Tag       string   `json:"tag"`
	Images    []string `json:"images"`
	Anonymous bool     `json:"anonymous"`
}

// CreateCommentRequest is the body of POST /api/v1/comments
type CreateCommentRequest struct {
	PostID   string `json:"post_id" binding:"required"`
	ParentID string `json:"parent_id"`
	Content  string `json:"content" binding:"required"`
}

// EnsureAccountRequest is the body of POST /api/v1/accounts/ensure
type EnsureAccountRequest struct {
	Nickname string `json:"nickname"`
}

// ToggleRequest carries the desired toggle state. A missing body or missing
// "on" field means switch on.
type ToggleRequest struct {
	On *bool `json:"on"`
}

// Desired returns the requested toggle state
func (r *ToggleRequest) Desired() bool {
	return r.On == nil || *r.On
}

// OpenOrderRequest is the body of POST /api/v1/orders
type OpenOrderRequest struct {
	Title string `json:"title" binding:"required"`
	Price int64  `json:"price" binding:"required"`
}

// ReconcileRequest names what the operator wants repaired
type ReconcileRequest struct {
	AccountIDs []string          `json:"account_ids"`
	OrderIDs   []string          `json:"order_ids"`
	Targets    []ReconcileTarget `json:"targets"`
}

// ReconcileTarget names one toggle-driven counter to recompute
type ReconcileTarget struct {
	TargetID string            `json:"target_id" binding:"required"`
	Kind     domain.ToggleKind `json:"kind" binding:"required"`
}

// ToggleResponse reports the outcome of a toggle request
type ToggleResponse struct {
	Changed bool  `json:"changed"`
	On      bool  `json:"on"`
	Count   int64 `json:"count"`
}

// LoginRewardResponse reports whether the daily reward was granted
type LoginRewardResponse struct {
	Granted bool `json:"granted"`
}

// ReconcileResponse summarizes an operator repair run
type ReconcileResponse struct {
	AccountsRepaired int      `json:"accounts_repaired"`
	CountersRepaired int      `json:"counters_repaired"`
	OrdersChecked    int      `json:"orders_checked"`
	Errors           []string `json:"errors,omitempty"`
}

// UserResponse is the API representation of an account profile
type UserResponse struct {
	ID             string    `json:"id"`
	Nickname       string    `json:"nickname"`
	PostCount      int64     `json:"post_count"`
	LikeCount      int64     `json:"like_count"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	CoinBalance    int64     `json:"coin_balance"`
	Experience     int64     `json:"experience"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUserResponse maps a user record to its API representation
func NewUserResponse(user *schema.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Nickname:       user.Nickname,
		PostCount:      user.PostCount,
		LikeCount:      user.LikeCount,
		FollowerCount:  user.FollowerCount,
		FollowingCount: user.FollowingCount,
		CoinBalance:    user.CoinBalance,
		Experience:     user.Experience,
		CreatedAt:      user.CreatedAt,
	}
}

// PostResponse is the API representation of a post
type PostResponse struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id,omitempty"`
	Content      string    `json:"content"`
	Tag          string    `json:"tag,omitempty"`
	Anonymous    bool      `json:"anonymous"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	CollectCount int64     `json:"collect_count"`
	ViewCount    int64     `json:"view_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPostResponse maps a post record to its API representation, hiding the
// author of anonymous posts
func NewPostResponse(post *schema.Post) PostResponse {
	resp := PostResponse{
		ID:           post.ID,
		AuthorID:     post.AuthorID,
		Content:      post.Content,
		Tag:          post.Tag,
		Anonymous:    post.Anonymous,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
		CollectCount: post.CollectCount,
		ViewCount:    post.ViewCount,
		CreatedAt:    post.CreatedAt,
	}
	if post.Anonymous {
		resp.AuthorID = ""
	}
	return resp
}

// CommentResponse is the API representation of a comment
type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Content   string    `json:"content"`
	LikeCount int64     `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentResponse maps a comment record to its API representation
func NewCommentResponse(comment *schema.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		LikeCount: comment.LikeCount,
		CreatedAt: comment.CreatedAt,
	}
}

// MarkMessagesReadRequest is the body of POST /api/v1/messages/read
type MarkMessagesReadRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// MarkMessagesReadResponse reports how many messages changed to read
type MarkMessagesReadResponse struct {
	Updated int64 `json:"updated"`
}

// MessageResponse is the API representation of one inbox message
type MessageResponse struct {
	ID              string                  `json:"id"`
	FromID          string                  `json:"from_id"`
	Kind            domain.NotificationKind `json:"kind"`
	RelatedEntityID string                  `json:"related_entity_id,omitempty"`
	Content         string                  `json:"content"`
	Read            bool                    `json:"read"`
	CreatedAt       time.Time               `json:"created_at"`
}

// MessagesResponse is the inbox listing
type MessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// NewMessagesResponse maps inbox records to their API representation
func NewMessagesResponse(messages []*schema.Message) MessagesResponse {
	resp := MessagesResponse{Messages: make([]MessageResponse, 0, len(messages))}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, MessageResponse{
			ID:              msg.ID,
			FromID:          msg.FromID,
			Kind:            msg.Kind,
			RelatedEntityID: msg.RelatedEntityID,
			Content:         msg.Content,
			Read:            msg.Read,
			CreatedAt:       msg.CreatedAt,
		})
	}
	return resp
}

// OrderResponse is the API representation of an order
type OrderResponse struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"owner_id"`
	Title        string            `json:"title"`
	Price        int64             `json:"price"`
	State        domain.OrderState `json:"state"`
	ClaimantID   string            `json:"claimant_id,omitempty"`
	EscrowAmount int64             `json:"escrow_amount"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewOrderResponse maps an order record to its API representation
func NewOrderResponse(order *schema.Order) OrderResponse {
	resp := OrderResponse{
		ID:           order.ID,
		OwnerID:      order.OwnerID,
		Title:        order.Title,
		Price:        order.Price,
		State:        order.State,
		EscrowAmount: order.EscrowAmount,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
	if order.ClaimantID != nil {
		resp.ClaimantID = *order.ClaimantID
	}
	return resp
}
