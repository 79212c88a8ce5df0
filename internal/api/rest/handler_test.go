package rest_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/engage-core/internal/adapter"
	"github.com/campuslink/engage-core/internal/api/middleware"
	"github.com/campuslink/engage-core/internal/api/rest"
	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/engage"
	"github.com/campuslink/engage-core/internal/logger"
	"github.com/campuslink/engage-core/internal/store"
	"github.com/campuslink/engage-core/internal/store/schema"
)

const testAPIKey = "test-operator-key"

// testAPI wires a router over a fresh engine and a signing key for tokens
type testAPI struct {
	router *gin.Engine
	engine *engage.Engine
	store  store.Store
	key    *rsa.PrivateKey
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))
	gin.SetMode(gin.TestMode)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	st := store.NewMemoryStore()
	eng := engage.New(engage.DefaultConfig(), st, nil, adapter.NewClock())
	require.NoError(t, eng.Bootstrap(context.Background()))

	router := gin.New()
	rest.SetupRoutes(router, rest.NewHandler(eng), middleware.AuthConfig{
		JWTPublicKey: string(pubPEM),
		APIKeys:      []string{testAPIKey},
	})

	return &testAPI{router: router, engine: eng, store: st, key: key}
}

// token signs a JWT whose subject is the acting account
func (a *testAPI) token(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.key)
	require.NoError(t, err)
	return signed
}

func (a *testAPI) seedUser(t *testing.T, id string) {
	t.Helper()
	created, err := a.store.CreateUser(context.Background(), &schema.User{ID: id, Nickname: id})
	require.NoError(t, err)
	require.True(t, created)
}

func (a *testAPI) mintCoins(t *testing.T, accountID string, amount int64) {
	t.Helper()
	require.NoError(t, a.engine.Transfer(context.Background(), engage.TransferParams{
		To:     accountID,
		Amount: amount,
		Asset:  domain.AssetCoin,
		Reason: domain.ReasonPostPublish,
		Token:  "seed:" + accountID,
	}))
}

// do performs one request; auth is the raw Authorization header value
func (a *testAPI) do(t *testing.T, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/posts", "", rest.CreatePostRequest{Content: "hi"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/posts", "Bearer not-a-token", rest.CreatePostRequest{Content: "hi"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// API keys authenticate but do not act as a user
	rec = api.do(t, http.MethodPost, "/api/v1/posts", "ApiKey "+testAPIKey, rest.CreatePostRequest{Content: "hi"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEnsureAccount(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/accounts/ensure", "Bearer "+api.token(t, "wx-openid-1"),
		rest.EnsureAccountRequest{Nickname: "fresh"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decode[rest.UserResponse](t, rec)
	assert.Equal(t, "wx-openid-1", user.ID)
	assert.Equal(t, "fresh", user.Nickname)

	// Provisioning again leaves the account untouched
	rec = api.do(t, http.MethodPost, "/api/v1/accounts/ensure", "Bearer "+api.token(t, "wx-openid-1"),
		rest.EnsureAccountRequest{Nickname: "renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	user = decode[rest.UserResponse](t, rec)
	assert.Equal(t, "fresh", user.Nickname)
}

func TestCreatePostAndLike(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "alice")
	api.seedUser(t, "bob")

	rec := api.do(t, http.MethodPost, "/api/v1/posts", "Bearer "+api.token(t, "bob"),
		rest.CreatePostRequest{Content: "first post", Tag: "campus"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decode[rest.PostResponse](t, rec)
	assert.Equal(t, "bob", post.AuthorID)
	assert.NotEmpty(t, post.ID)

	rec = api.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", "Bearer "+api.token(t, "alice"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	toggle := decode[rest.ToggleResponse](t, rec)
	assert.True(t, toggle.Changed)
	assert.True(t, toggle.On)
	assert.Equal(t, int64(1), toggle.Count)

	// Repeat like: no change, same count
	rec = api.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", "Bearer "+api.token(t, "alice"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	toggle = decode[rest.ToggleResponse](t, rec)
	assert.False(t, toggle.Changed)
	assert.Equal(t, int64(1), toggle.Count)

	// Explicit off flips it back
	rec = api.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", "Bearer "+api.token(t, "alice"),
		map[string]bool{"on": false})
	require.Equal(t, http.StatusOK, rec.Code)
	toggle = decode[rest.ToggleResponse](t, rec)
	assert.True(t, toggle.Changed)
	assert.Equal(t, int64(0), toggle.Count)
}

func TestAnonymousPostHidesAuthor(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "alice")

	rec := api.do(t, http.MethodPost, "/api/v1/posts", "Bearer "+api.token(t, "alice"),
		rest.CreatePostRequest{Content: "whisper", Anonymous: true})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decode[rest.PostResponse](t, rec)
	assert.True(t, post.Anonymous)
	assert.Empty(t, post.AuthorID)
}

func TestViewPostIsOpen(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "alice")

	rec := api.do(t, http.MethodPost, "/api/v1/posts", "Bearer "+api.token(t, "alice"),
		rest.CreatePostRequest{Content: "look at me"})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decode[rest.PostResponse](t, rec)

	rec = api.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/view", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "owner")
	api.seedUser(t, "worker")
	api.mintCoins(t, "owner", 100)

	rec := api.do(t, http.MethodPost, "/api/v1/orders", "Bearer "+api.token(t, "owner"),
		rest.OpenOrderRequest{Title: "proofread my essay", Price: 100})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[rest.OrderResponse](t, rec)
	assert.Equal(t, domain.OrderOpen, order.State)

	rec = api.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/claim", "Bearer "+api.token(t, "worker"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	claimed := decode[rest.OrderResponse](t, rec)
	assert.Equal(t, domain.OrderClaimed, claimed.State)
	assert.Equal(t, "worker", claimed.ClaimantID)

	rec = api.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/settle", "Bearer "+api.token(t, "owner"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settled := decode[rest.OrderResponse](t, rec)
	assert.Equal(t, domain.OrderSettled, settled.State)

	rec = api.do(t, http.MethodGet, "/api/v1/accounts/worker/balance", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balance := decode[engage.Balance](t, rec)
	assert.Equal(t, int64(90), balance.CoinBalance)
}

func TestOrderErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "owner")
	api.seedUser(t, "worker")
	api.seedUser(t, "rival")
	api.mintCoins(t, "owner", 50)

	// Unknown order
	rec := api.do(t, http.MethodPost, "/api/v1/orders/no-such-order/claim", "Bearer "+api.token(t, "worker"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Not enough coin to fund the escrow
	rec = api.do(t, http.MethodPost, "/api/v1/orders", "Bearer "+api.token(t, "owner"),
		rest.OpenOrderRequest{Title: "too pricey", Price: 500})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/orders", "Bearer "+api.token(t, "owner"),
		rest.OpenOrderRequest{Title: "claim race", Price: 50})
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[rest.OrderResponse](t, rec)

	rec = api.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/claim", "Bearer "+api.token(t, "worker"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// A second claimant conflicts
	rec = api.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/claim", "Bearer "+api.token(t, "rival"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Settling someone else's order is invalid input
	rec = api.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/settle", "Bearer "+api.token(t, "rival"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginReward(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "alice")

	rec := api.do(t, http.MethodPost, "/api/v1/accounts/login-reward", "Bearer "+api.token(t, "alice"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reward := decode[rest.LoginRewardResponse](t, rec)
	assert.True(t, reward.Granted)

	rec = api.do(t, http.MethodPost, "/api/v1/accounts/login-reward", "Bearer "+api.token(t, "alice"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reward = decode[rest.LoginRewardResponse](t, rec)
	assert.False(t, reward.Granted)
}

func TestReconcileRequiresAPIKey(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "alice")

	body := rest.ReconcileRequest{AccountIDs: []string{"alice"}}

	// A user token is not enough for the operator endpoint
	rec := api.do(t, http.MethodPost, "/api/v1/internal/reconcile", "Bearer "+api.token(t, "alice"), body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/internal/reconcile", "ApiKey wrong-key", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/internal/reconcile", "ApiKey "+testAPIKey, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[rest.ReconcileResponse](t, rec)
	assert.Equal(t, 0, resp.AccountsRepaired)
	assert.Empty(t, resp.Errors)
}

func TestReconcileRepairsDriftedAccount(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "alice")
	api.mintCoins(t, "alice", 100)
	ctx := context.Background()

	require.NoError(t, api.store.SetCounter(ctx, domain.EntityUser, "alice", domain.FieldCoinBalance, 1))

	rec := api.do(t, http.MethodPost, "/api/v1/internal/reconcile", "ApiKey "+testAPIKey,
		rest.ReconcileRequest{AccountIDs: []string{"alice"}})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[rest.ReconcileResponse](t, rec)
	assert.Equal(t, 1, resp.AccountsRepaired)

	user, err := api.store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.CoinBalance)
}

func TestReconcileEmptyRequestRejected(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/internal/reconcile", "ApiKey "+testAPIKey,
		rest.ReconcileRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateComment(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "alice")
	api.seedUser(t, "bob")

	rec := api.do(t, http.MethodPost, "/api/v1/posts", "Bearer "+api.token(t, "bob"),
		rest.CreatePostRequest{Content: "discuss"})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decode[rest.PostResponse](t, rec)

	rec = api.do(t, http.MethodPost, "/api/v1/comments", "Bearer "+api.token(t, "alice"),
		rest.CreateCommentRequest{PostID: post.ID, Content: "nice one"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[rest.CommentResponse](t, rec)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, "alice", comment.AuthorID)

	// A reply must reference a parent on the same post
	rec = api.do(t, http.MethodPost, "/api/v1/comments", "Bearer "+api.token(t, "bob"),
		rest.CreateCommentRequest{PostID: post.ID, ParentID: "no-such-comment", Content: "reply"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInbox(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "alice")
	api.seedUser(t, "carol")

	// The messenger writes the inbox out of band; seed it directly
	for _, msg := range []*schema.Message{
		{ID: "evt-1", FromID: "bob", ToID: "alice", Kind: domain.NotifyLike, Content: "liked your post"},
		{ID: "evt-2", FromID: "carol", ToID: "alice", Kind: domain.NotifyFollow, Content: "followed you"},
		{ID: "evt-3", FromID: "bob", ToID: "carol", Kind: domain.NotifyFollow, Content: "followed you"},
	} {
		created, err := api.store.CreateMessage(context.Background(), msg)
		require.NoError(t, err)
		require.True(t, created)
	}

	alice := "Bearer " + api.token(t, "alice")

	rec := api.do(t, http.MethodGet, "/api/v1/messages", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	inbox := decode[rest.MessagesResponse](t, rec)
	assert.Len(t, inbox.Messages, 2)

	rec = api.do(t, http.MethodPost, "/api/v1/messages/read", alice,
		map[string]any{"ids": []string{"evt-1", "evt-3"}})
	require.Equal(t, http.StatusOK, rec.Code)
	marked := decode[rest.MarkMessagesReadResponse](t, rec)
	assert.Equal(t, int64(1), marked.Updated, "evt-3 belongs to carol and must not flip")

	rec = api.do(t, http.MethodGet, "/api/v1/messages?unread=true", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	unread := decode[rest.MessagesResponse](t, rec)
	require.Len(t, unread.Messages, 1)
	assert.Equal(t, "evt-2", unread.Messages[0].ID)
}

func TestInbox_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/messages", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMarkMessagesRead_EmptyIDsRejected(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "alice")

	rec := api.do(t, http.MethodPost, "/api/v1/messages/read", "Bearer "+api.token(t, "alice"),
		map[string]any{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
