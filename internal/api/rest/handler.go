package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/campuslink/engage-core/internal/api/apierrors"
	"github.com/campuslink/engage-core/internal/api/middleware"
	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/engage"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// CreatePost publishes a post for the authenticated user
	// POST /api/v1/posts
	CreatePost(c *gin.Context)

	// LikePost switches the like toggle on a post
	// POST /api/v1/posts/:id/like
	LikePost(c *gin.Context)

	// CollectPost switches the collect toggle on a post
	// POST /api/v1/posts/:id/collect
	CollectPost(c *gin.Context)

	// ViewPost records one detail view of a post
	// POST /api/v1/posts/:id/view
	ViewPost(c *gin.Context)

	// CreateComment adds a comment or reply
	// POST /api/v1/comments
	CreateComment(c *gin.Context)

	// LikeComment switches the like toggle on a comment
	// POST /api/v1/comments/:id/like
	LikeComment(c *gin.Context)

	// FollowUser switches the follow toggle on a user
	// POST /api/v1/users/:id/follow
	FollowUser(c *gin.Context)

	// OpenOrder creates an order and reserves its escrow
	// POST /api/v1/orders
	OpenOrder(c *gin.Context)

	// GetOrder retrieves an order by ID
	// GET /api/v1/orders/:id
	GetOrder(c *gin.Context)

	// ClaimOrder claims an open order for the authenticated user
	// POST /api/v1/orders/:id/claim
	ClaimOrder(c *gin.Context)

	// SettleOrder pays out a claimed order
	// POST /api/v1/orders/:id/settle
	SettleOrder(c *gin.Context)

	// CancelOrder cancels an order and refunds its escrow
	// POST /api/v1/orders/:id/cancel
	CancelOrder(c *gin.Context)

	// EnsureAccount provisions the authenticated user's account on first contact
	// POST /api/v1/accounts/ensure
	EnsureAccount(c *gin.Context)

	// GetBalance returns an account's stored balances
	// GET /api/v1/accounts/:id/balance
	GetBalance(c *gin.Context)

	// LoginReward grants the daily login reward to the authenticated user
	// POST /api/v1/accounts/login-reward
	LoginReward(c *gin.Context)

	// ListMessages returns the authenticated user's notification inbox
	// GET /api/v1/messages
	ListMessages(c *gin.Context)

	// MarkMessagesRead marks the authenticated user's messages as read
	// POST /api/v1/messages/read
	MarkMessagesRead(c *gin.Context)

	// Reconcile runs targeted reconciliation (requires API key)
	// POST /api/v1/internal/reconcile
	Reconcile(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	engine *engage.Engine
}

// NewHandler creates a new REST API handler on top of the engine
func NewHandler(engine *engage.Engine) Handler {
	return &handler{engine: engine}
}

// currentUser returns the authenticated account from the JWT subject. An
// empty subject means the caller authenticated with an API key, which does
// not act as a user.
func currentUser(c *gin.Context) (string, bool) {
	subject := c.GetString(middleware.AuthSubjectKey)
	if subject == "" {
		c.JSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("A user token is required"))
		return "", false
	}
	return subject, true
}

// bindToggleRequest reads the optional toggle body; an empty body means on
func bindToggleRequest(c *gin.Context) (*ToggleRequest, bool) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "Invalid request body", err.Error())
		return nil, false
	}
	return &req, true
}

// handleToggle runs one toggle flip and reports the resulting target count
func (h *handler) handleToggle(c *gin.Context, targetID string, kind domain.ToggleKind, count func() (int64, error)) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := bindToggleRequest(c)
	if !ok {
		return
	}

	changed, err := h.engine.SetToggle(c.Request.Context(), actorID, targetID, kind, req.Desired())
	if err != nil {
		respondEngineError(c, err)
		return
	}

	current, err := count()
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToggleResponse{
		Changed: changed,
		On:      req.Desired(),
		Count:   current,
	})
}

// CreatePost publishes a post for the authenticated user
func (h *handler) CreatePost(c *gin.Context) {
	authorID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	var images datatypes.JSON
	if len(req.Images) > 0 {
		raw, err := json.Marshal(req.Images)
		if err != nil {
			respondBadRequest(c, "Invalid images", err.Error())
			return
		}
		images = datatypes.JSON(raw)
	}

	post, err := h.engine.CreatePost(c.Request.Context(), authorID, req.Content, req.Tag, images, req.Anonymous)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewPostResponse(post))
}

// LikePost switches the like toggle on a post
func (h *handler) LikePost(c *gin.Context) {
	postID := c.Param("id")
	h.handleToggle(c, postID, domain.ToggleLikePost, func() (int64, error) {
		post, err := h.engine.GetPost(c.Request.Context(), postID)
		if err != nil {
			return 0, err
		}
		return post.LikeCount, nil
	})
}

// CollectPost switches the collect toggle on a post
func (h *handler) CollectPost(c *gin.Context) {
	postID := c.Param("id")
	h.handleToggle(c, postID, domain.ToggleCollectPost, func() (int64, error) {
		post, err := h.engine.GetPost(c.Request.Context(), postID)
		if err != nil {
			return 0, err
		}
		return post.CollectCount, nil
	})
}

// ViewPost records one detail view of a post
func (h *handler) ViewPost(c *gin.Context) {
	if err := h.engine.RecordView(c.Request.Context(), c.Param("id")); err != nil {
		respondEngineError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateComment adds a comment or reply
func (h *handler) CreateComment(c *gin.Context) {
	authorID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	comment, err := h.engine.CreateComment(c.Request.Context(), authorID, req.PostID, req.ParentID, req.Content)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewCommentResponse(comment))
}

// LikeComment switches the like toggle on a comment
func (h *handler) LikeComment(c *gin.Context) {
	commentID := c.Param("id")
	h.handleToggle(c, commentID, domain.ToggleLikeComment, func() (int64, error) {
		comment, err := h.engine.GetComment(c.Request.Context(), commentID)
		if err != nil {
			return 0, err
		}
		return comment.LikeCount, nil
	})
}

// FollowUser switches the follow toggle on a user
func (h *handler) FollowUser(c *gin.Context) {
	targetID := c.Param("id")
	h.handleToggle(c, targetID, domain.ToggleFollowUser, func() (int64, error) {
		user, err := h.engine.GetUser(c.Request.Context(), targetID)
		if err != nil {
			return 0, err
		}
		return user.FollowerCount, nil
	})
}

// OpenOrder creates an order and reserves its escrow
func (h *handler) OpenOrder(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req OpenOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.engine.OpenOrder(c.Request.Context(), ownerID, req.Title, req.Price)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewOrderResponse(order))
}

// GetOrder retrieves an order by ID
func (h *handler) GetOrder(c *gin.Context) {
	order, err := h.engine.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOrderResponse(order))
}

// ClaimOrder claims an open order for the authenticated user
func (h *handler) ClaimOrder(c *gin.Context) {
	claimantID, ok := currentUser(c)
	if !ok {
		return
	}
	order, err := h.engine.ClaimOrder(c.Request.Context(), c.Param("id"), claimantID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOrderResponse(order))
}

// SettleOrder pays out a claimed order
func (h *handler) SettleOrder(c *gin.Context) {
	callerID, ok := currentUser(c)
	if !ok {
		return
	}
	order, err := h.engine.SettleOrder(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOrderResponse(order))
}

// CancelOrder cancels an order and refunds its escrow
func (h *handler) CancelOrder(c *gin.Context) {
	callerID, ok := currentUser(c)
	if !ok {
		return
	}
	order, err := h.engine.CancelOrder(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOrderResponse(order))
}

// EnsureAccount provisions the authenticated user's account on first contact.
// Repeat calls return the existing account untouched.
func (h *handler) EnsureAccount(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	req, ok := bindEnsureAccountRequest(c)
	if !ok {
		return
	}

	user, err := h.engine.EnsureUser(c.Request.Context(), accountID, req.Nickname)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewUserResponse(user))
}

// bindEnsureAccountRequest reads the optional provisioning body
func bindEnsureAccountRequest(c *gin.Context) (*EnsureAccountRequest, bool) {
	var req EnsureAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "Invalid request body", err.Error())
		return nil, false
	}
	return &req, true
}

// GetBalance returns an account's stored balances
func (h *handler) GetBalance(c *gin.Context) {
	balance, err := h.engine.GetBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// LoginReward grants the daily login reward to the authenticated user
func (h *handler) LoginReward(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}
	granted, err := h.engine.DailyLoginReward(c.Request.Context(), accountID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginRewardResponse{Granted: granted})
}

// ListMessages returns the authenticated user's notification inbox
func (h *handler) ListMessages(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.engine.Inbox(c.Request.Context(), accountID, unreadOnly, limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMessagesResponse(messages))
}

// MarkMessagesRead marks the authenticated user's messages as read
func (h *handler) MarkMessagesRead(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	var req MarkMessagesReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	updated, err := h.engine.MarkMessagesRead(c.Request.Context(), accountID, req.IDs)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, MarkMessagesReadResponse{Updated: updated})
}

// Reconcile runs targeted reconciliation for the named accounts, orders, and
// toggle counters
func (h *handler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if len(req.AccountIDs) == 0 && len(req.OrderIDs) == 0 && len(req.Targets) == 0 {
		respondValidationError(c, "at least one account, order, or target is required")
		return
	}

	ctx := c.Request.Context()
	var resp ReconcileResponse

	for _, accountID := range req.AccountIDs {
		repaired, err := h.engine.ReconcileAccount(ctx, accountID)
		if err != nil {
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}
		if repaired {
			resp.AccountsRepaired++
		}
	}
	for _, target := range req.Targets {
		repaired, err := h.engine.ReconcileToggleCounter(ctx, target.TargetID, target.Kind)
		if err != nil {
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}
		if repaired {
			resp.CountersRepaired++
		}
	}
	for _, orderID := range req.OrderIDs {
		if err := h.engine.ReconcileOrder(ctx, orderID); err != nil {
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}
		resp.OrdersChecked++
	}

	c.JSON(http.StatusOK, resp)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
