package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/guruunoob/goobex-website/pkg/helpers"
)

const (
	pathHome        = "/home"
	pathProtected   = "/api/v1/protected"
	pathAuthFailure = "/api/v1/auth/failure"
)

// AuthService is the slice of the application service the auth routes need.
type AuthService interface {
	BeginLogin(ctx context.Context) (string, error)
	CompleteLogin(ctx context.Context, state, code string) (string, time.Time, error)
	EndSession(ctx context.Context, token string) error
}

type AuthHandler struct {
	Svc     AuthService
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

// Begin sends the caller to the provider consent screen.
func (h *AuthHandler) Begin(c *gin.Context) {
	url, err := h.Svc.BeginLogin(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("begin login failed")
		}
		c.Redirect(http.StatusFound, pathAuthFailure)
		return
	}
	c.Redirect(http.StatusFound, url)
}

type callbackQuery struct {
	Code  string `form:"code" binding:"required"`
	State string `form:"state" binding:"required"`
	Error string `form:"error"`
}

// Callback finishes the OAuth exchange. The session cookie is set only
// when provisioning succeeded; every failure lands on the failure page
// instead of stalling or half-authenticating.
func (h *AuthHandler) Callback(c *gin.Context) {
	var q callbackQuery
	if err := c.ShouldBindQuery(&q); err != nil || q.Error != "" {
		if h.Logger != nil {
			h.Logger.WithField("provider_error", q.Error).Warn("callback rejected")
		}
		c.Redirect(http.StatusFound, pathAuthFailure)
		return
	}

	token, exp, err := h.Svc.CompleteLogin(c.Request.Context(), q.State, q.Code)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("login failed")
		}
		c.Redirect(http.StatusFound, pathAuthFailure)
		return
	}

	h.Cookies.SetSession(c, token, exp)
	c.Redirect(http.StatusFound, pathProtected)
}

// Failure renders the login-error page.
func (h *AuthHandler) Failure(c *gin.Context) {
	c.HTML(http.StatusOK, "login_error.html", gin.H{"IsAuthenticated": false})
}

// Protected is the post-login landing hop; gating happens in middleware.
func (h *AuthHandler) Protected(c *gin.Context) {
	c.Redirect(http.StatusFound, pathHome)
}

// Logout ends the server-side session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(helpers.SessionCookie); err == nil && token != "" {
		if err := h.Svc.EndSession(c.Request.Context(), token); err != nil && h.Logger != nil {
			h.Logger.WithError(err).Warn("end session failed")
		}
	}
	h.Cookies.Clear(c)
	c.Redirect(http.StatusFound, pathHome)
}
