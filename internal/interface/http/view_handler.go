package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/guruunoob/goobex-website/internal/domain/entity"
	"github.com/guruunoob/goobex-website/internal/domain/repository"
	"github.com/guruunoob/goobex-website/internal/interface/middleware"
)

// ViewService is the slice of the application service the rendered
// pages need.
type ViewService interface {
	ListAccounts(ctx context.Context) ([]entity.Account, error)
	AccountByEmail(ctx context.Context, email string) (*entity.Account, error)
	AccountByUsername(ctx context.Context, username string) (*entity.Account, error)
}

type ViewHandler struct {
	Svc    ViewService
	Logger *logrus.Logger
}

func NewViewHandler(svc ViewService, logger *logrus.Logger) *ViewHandler {
	return &ViewHandler{Svc: svc, Logger: logger}
}

// Root redirects to the home page.
func (h *ViewHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, pathHome)
}

// Home renders the home feed, personalized when a session is present.
func (h *ViewHandler) Home(c *gin.Context) {
	authed, viewer := h.viewer(c)
	c.HTML(http.StatusOK, "home.html", gin.H{
		"IsAuthenticated": authed,
		"Viewer":          viewer,
	})
}

// Profile renders the public profile page for the named user. A missing
// username is a not-found outcome, not an auth failure.
func (h *ViewHandler) Profile(c *gin.Context) {
	username := c.Param("username")
	profile, err := h.Svc.AccountByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			authed, viewer := h.viewer(c)
			c.HTML(http.StatusNotFound, "not_found.html", gin.H{
				"IsAuthenticated": authed,
				"Viewer":          viewer,
				"Username":        username,
			})
			return
		}
		h.renderError(c, err, "profile lookup failed")
		return
	}

	authed, viewer := h.viewer(c)
	c.HTML(http.StatusOK, "profile.html", gin.H{
		"IsAuthenticated": authed,
		"Viewer":          viewer,
		"Profile":         profile,
	})
}

// Users renders the public member directory.
func (h *ViewHandler) Users(c *gin.Context) {
	accounts, err := h.Svc.ListAccounts(c.Request.Context())
	if err != nil {
		h.renderError(c, err, "directory listing failed")
		return
	}
	authed, viewer := h.viewer(c)
	c.HTML(http.StatusOK, "users.html", gin.H{
		"IsAuthenticated": authed,
		"Viewer":          viewer,
		"Profiles":        accounts,
	})
}

// viewer re-queries the caller's own record for page chrome. Sessions
// outliving their account record degrade to the anonymous view.
func (h *ViewHandler) viewer(c *gin.Context) (bool, *entity.Account) {
	p, ok := middleware.Principal(c)
	if !ok {
		return false, nil
	}
	acc, err := h.Svc.AccountByEmail(c.Request.Context(), p.Email)
	if err != nil {
		if h.Logger != nil && !errors.Is(err, repository.ErrNotFound) {
			h.Logger.WithError(err).WithField("email", p.Email).Warn("viewer lookup failed")
		}
		return false, nil
	}
	return true, acc
}

func (h *ViewHandler) renderError(c *gin.Context, err error, msg string) {
	if h.Logger != nil {
		h.Logger.WithError(err).Error(msg)
	}
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{"IsAuthenticated": false})
}
