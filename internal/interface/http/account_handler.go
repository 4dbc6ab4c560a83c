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
	"github.com/guruunoob/goobex-website/pkg/response"
	"github.com/guruunoob/goobex-website/pkg/validation"
)

// AccountService is the slice of the application service the JSON API needs.
type AccountService interface {
	ListAccounts(ctx context.Context) ([]entity.Account, error)
	AccountByEmail(ctx context.Context, email string) (*entity.Account, error)
	SearchAccounts(ctx context.Context, q string, size int) ([]map[string]any, error)
}

type AccountHandler struct {
	Svc    AccountService
	Logger *logrus.Logger
}

func NewAccountHandler(svc AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

// List returns every account record, store id included.
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.Svc.ListAccounts(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("list accounts failed")
		}
		resp := response.Error[any](c, http.StatusInternalServerError, "failed to list accounts", nil)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// Me returns the caller's own account record, resolved by the session
// principal's email.
func (h *AccountHandler) Me(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	acc, err := h.Svc.AccountByEmail(c.Request.Context(), p.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			resp := response.Error[any](c, http.StatusNotFound, "account not found", nil)
			c.JSON(resp.Status, resp)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("email", p.Email).Error("account lookup failed")
		}
		resp := response.Error[any](c, http.StatusInternalServerError, "account lookup failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, acc)
}

type searchQuery struct {
	Q    string `form:"q" binding:"required,min=2"`
	Size int    `form:"size"`
}

// Search queries the accounts search index.
func (h *AccountHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	hits, err := h.Svc.SearchAccounts(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("account search failed")
		}
		resp := response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, hits, "search results")
	c.JSON(resp.Status, resp)
}
