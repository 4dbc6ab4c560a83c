package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guruunoob/goobex-website/pkg/helpers"
)

type fakeAuthSvc struct {
	beginURL    string
	beginErr    error
	token       string
	completeErr error
	gotState    string
	gotCode     string
	ended       []string
}

func (f *fakeAuthSvc) BeginLogin(context.Context) (string, error) {
	return f.beginURL, f.beginErr
}

func (f *fakeAuthSvc) CompleteLogin(_ context.Context, state, code string) (string, time.Time, error) {
	f.gotState, f.gotCode = state, code
	if f.completeErr != nil {
		return "", time.Time{}, f.completeErr
	}
	return f.token, time.Now().Add(time.Hour), nil
}

func (f *fakeAuthSvc) EndSession(_ context.Context, token string) error {
	f.ended = append(f.ended, token)
	return nil
}

func newAuthRouter(svc *fakeAuthSvc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(svc, nil, "", false)
	api := r.Group("/api/v1")
	api.GET("/auth/provider", h.Begin)
	api.GET("/auth/provider/callback", h.Callback)
	api.GET("/logout", h.Logout)
	return r
}

func TestBeginRedirectsToConsent(t *testing.T) {
	svc := &fakeAuthSvc{beginURL: "https://provider.example/consent?state=abc"}
	r := newAuthRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/provider", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://provider.example/consent?state=abc", w.Header().Get("Location"))
}

func TestBeginFailureLandsOnFailurePage(t *testing.T) {
	svc := &fakeAuthSvc{beginErr: errors.New("redis down")}
	r := newAuthRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/provider", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/v1/auth/failure", w.Header().Get("Location"))
}

func TestCallbackSuccessSetsCookieAndRedirects(t *testing.T) {
	svc := &fakeAuthSvc{token: "signed-token"}
	r := newAuthRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/provider/callback?code=c1&state=s1", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/v1/protected", w.Header().Get("Location"))
	assert.Equal(t, "s1", svc.gotState)
	assert.Equal(t, "c1", svc.gotCode)

	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, helpers.SessionCookie+"=signed-token")
	assert.Contains(t, strings.ToLower(cookie), "httponly")
}

func TestCallbackProvisioningFailureRedirectsToFailure(t *testing.T) {
	svc := &fakeAuthSvc{completeErr: errors.New("provisioning blew up")}
	r := newAuthRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/provider/callback?code=c1&state=s1", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/v1/auth/failure", w.Header().Get("Location"))
	assert.Empty(t, w.Header().Get("Set-Cookie"), "no session cookie on failed login")
}

func TestCallbackProviderErrorRedirectsToFailure(t *testing.T) {
	svc := &fakeAuthSvc{token: "never-used"}
	r := newAuthRouter(svc)

	for _, target := range []string{
		"/api/v1/auth/provider/callback?error=access_denied&code=c&state=s",
		"/api/v1/auth/provider/callback?state=s",  // missing code
		"/api/v1/auth/provider/callback?code=c",   // missing state
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusFound, w.Code, target)
		assert.Equal(t, "/api/v1/auth/failure", w.Header().Get("Location"), target)
	}
}

func TestLogoutEndsSessionAndClearsCookie(t *testing.T) {
	svc := &fakeAuthSvc{}
	r := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logout", nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookie, Value: "signed-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))
	require.Equal(t, []string{"signed-token"}, svc.ended)
	assert.Contains(t, w.Header().Get("Set-Cookie"), helpers.SessionCookie+"=")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestLogoutWithoutCookieStillRedirects(t *testing.T) {
	svc := &fakeAuthSvc{}
	r := newAuthRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logout", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))
	assert.Empty(t, svc.ended)
}
