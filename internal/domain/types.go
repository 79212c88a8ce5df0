package domain

// ToggleKind identifies the kind of membership fact an actor can set against a target
type ToggleKind string

const (
	// ToggleLikePost represents an actor liking a post
	ToggleLikePost ToggleKind = "like-post"
	// ToggleLikeComment represents an actor liking a comment
	ToggleLikeComment ToggleKind = "like-comment"
	// ToggleCollectPost represents an actor collecting (bookmarking) a post
	ToggleCollectPost ToggleKind = "collect-post"
	// ToggleFollowUser represents an actor following another user
	ToggleFollowUser ToggleKind = "follow-user"
)

// Valid reports whether the toggle kind is one of the enumerated values
func (k ToggleKind) Valid() bool {
	switch k {
	case ToggleLikePost, ToggleLikeComment, ToggleCollectPost, ToggleFollowUser:
		return true
	}
	return false
}

// TargetEntity returns the entity kind a toggle of this kind references
func (k ToggleKind) TargetEntity() EntityKind {
	switch k {
	case ToggleLikePost, ToggleCollectPost:
		return EntityPost
	case ToggleLikeComment:
		return EntityComment
	case ToggleFollowUser:
		return EntityUser
	}
	return ""
}

// EntityKind identifies which collection a counter target lives in
type EntityKind string

const (
	EntityUser    EntityKind = "user"
	EntityPost    EntityKind = "post"
	EntityComment EntityKind = "comment"
	EntityOrder   EntityKind = "order"
)

// CounterField names a denormalized integer counter on an entity.
// Counters are mutated only through signed-delta application; absolute
// overwrite is reserved for reconciliation.
type CounterField string

const (
	FieldLikeCount      CounterField = "like_count"
	FieldCommentCount   CounterField = "comment_count"
	FieldCollectCount   CounterField = "collect_count"
	FieldViewCount      CounterField = "view_count"
	FieldPostCount      CounterField = "post_count"
	FieldFollowerCount  CounterField = "follower_count"
	FieldFollowingCount CounterField = "following_count"
	FieldCoinBalance    CounterField = "coin_balance"
	FieldExperience     CounterField = "experience"
)

// Asset distinguishes the two ledgered quantities
type Asset string

const (
	// AssetCoin is the internal coin balance backing orders and escrow
	AssetCoin Asset = "coin"
	// AssetExperience is the non-spendable experience economy
	AssetExperience Asset = "experience"
)

// LedgerReason records why a ledger entry was written
type LedgerReason string

const (
	ReasonPostPublish LedgerReason = "post-publish"
	ReasonOrderEscrow LedgerReason = "order-escrow"
	ReasonOrderIncome LedgerReason = "order-income"
	ReasonOrderFee    LedgerReason = "order-fee"
	ReasonDailyLogin  LedgerReason = "daily-login"
	ReasonLikeReward  LedgerReason = "like-reward"
	ReasonRefund      LedgerReason = "refund"
)

// OrderState is the lifecycle state of a task-post order
type OrderState string

const (
	OrderOpen      OrderState = "open"
	OrderClaimed   OrderState = "claimed"
	OrderSettled   OrderState = "settled"
	OrderCancelled OrderState = "cancelled"
)

// Terminal reports whether no further transitions are legal from this state
func (s OrderState) Terminal() bool {
	return s == OrderSettled || s == OrderCancelled
}

// System account IDs. These hold coin that is not attributable to a user:
// escrow reserved against claimed orders and platform fees retained on settle.
const (
	AccountEscrow   = "sys:escrow"
	AccountPlatform = "sys:platform"
)

// NotificationKind identifies an event forwarded to the message collaborator
type NotificationKind string

const (
	NotifyLike           NotificationKind = "like"
	NotifyCommentLike    NotificationKind = "comment_like"
	NotifyComment        NotificationKind = "comment"
	NotifyCommentReply   NotificationKind = "comment_reply"
	NotifyFollow         NotificationKind = "follow"
	NotifyOrderClaimed   NotificationKind = "order_claimed"
	NotifyOrderSettled   NotificationKind = "order_settled"
	NotifyOrderCancelled NotificationKind = "order_cancelled"
)
