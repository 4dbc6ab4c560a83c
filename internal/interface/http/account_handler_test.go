package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guruunoob/goobex-website/internal/domain/entity"
	"github.com/guruunoob/goobex-website/internal/domain/repository"
	"github.com/guruunoob/goobex-website/internal/interface/middleware"
	"github.com/guruunoob/goobex-website/pkg/helpers"
)

type fakeAccountSvc struct {
	accounts []entity.Account
	byEmail  map[string]*entity.Account
	hits     []map[string]any
	calls    int
}

func (f *fakeAccountSvc) ListAccounts(context.Context) ([]entity.Account, error) {
	f.calls++
	return f.accounts, nil
}

func (f *fakeAccountSvc) AccountByEmail(_ context.Context, email string) (*entity.Account, error) {
	f.calls++
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountSvc) SearchAccounts(context.Context, string, int) ([]map[string]any, error) {
	f.calls++
	return f.hits, nil
}

type fakeResolver struct {
	principal *entity.Principal
}

func (r *fakeResolver) ResolveSession(_ context.Context, token string) (*entity.Principal, error) {
	if r.principal == nil || token != "valid-token" {
		return nil, context.Canceled
	}
	return r.principal, nil
}

func aliceAccount() entity.Account {
	return entity.Account{
		ID:          "acc-1",
		Email:       "a@x.com",
		Username:    "Alice",
		DisplayName: "Alice",
		ThumbURL:    "https://img.example/alice.jpg",
		Locale:      "en",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func newAccountRouter(svc *fakeAccountSvc, resolver middleware.SessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAccountHandler(svc, nil)
	gated := r.Group("/api/v1", middleware.Auth(resolver))
	gated.GET("/users", h.List)
	gated.GET("/account", h.Me)
	gated.GET("/users/search", h.Search)
	return r
}

func authedRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookie, Value: "valid-token"})
	return req
}

func TestGatedRoutesRejectAnonymousWithoutTouchingStore(t *testing.T) {
	svc := &fakeAccountSvc{accounts: []entity.Account{aliceAccount()}}
	r := newAccountRouter(svc, &fakeResolver{})

	for _, target := range []string{"/api/v1/users", "/api/v1/account", "/api/v1/users/search?q=ali"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
		assert.Empty(t, w.Body.String(), "401 carries no body", target)
	}
	assert.Zero(t, svc.calls, "anonymous requests must not reach the service")
}

func TestGatedRoutesRejectStaleToken(t *testing.T) {
	svc := &fakeAccountSvc{}
	r := newAccountRouter(svc, &fakeResolver{principal: &entity.Principal{Email: "a@x.com"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookie, Value: "ended-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, svc.calls)
}

func TestListReturnsRecordsWithStoreIDs(t *testing.T) {
	svc := &fakeAccountSvc{accounts: []entity.Account{aliceAccount()}}
	r := newAccountRouter(svc, &fakeResolver{principal: &entity.Principal{Email: "a@x.com"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest("/api/v1/users"))

	require.Equal(t, http.StatusOK, w.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "acc-1", got[0]["docId"])
	assert.Equal(t, "a@x.com", got[0]["email"])
	assert.Equal(t, "Alice", got[0]["username"])
	assert.Equal(t, "https://img.example/alice.jpg", got[0]["thumbUrl"])
	assert.NotContains(t, got[0], "created_at", "timestamps stay internal")
}

func TestMeReturnsCallerRecord(t *testing.T) {
	alice := aliceAccount()
	svc := &fakeAccountSvc{byEmail: map[string]*entity.Account{"a@x.com": &alice}}
	r := newAccountRouter(svc, &fakeResolver{principal: &entity.Principal{Email: "a@x.com"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest("/api/v1/account"))

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "acc-1", got["docId"])
}

func TestMeSessionWithoutRecordIs404(t *testing.T) {
	svc := &fakeAccountSvc{byEmail: map[string]*entity.Account{}}
	r := newAccountRouter(svc, &fakeResolver{principal: &entity.Principal{Email: "gone@x.com"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest("/api/v1/account"))

	require.Equal(t, http.StatusNotFound, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, false, got["success"])
}

func TestSearchRequiresQuery(t *testing.T) {
	svc := &fakeAccountSvc{}
	r := newAccountRouter(svc, &fakeResolver{principal: &entity.Principal{Email: "a@x.com"}})

	for _, target := range []string{"/api/v1/users/search", "/api/v1/users/search?q=a"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, authedRequest(target))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
	assert.Zero(t, svc.calls)
}

func TestSearchReturnsEnvelope(t *testing.T) {
	svc := &fakeAccountSvc{hits: []map[string]any{{"username": "Alice"}}}
	r := newAccountRouter(svc, &fakeResolver{principal: &entity.Principal{Email: "a@x.com"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest("/api/v1/users/search?q=ali"))

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, true, got["success"])
	data, ok := got["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
}
