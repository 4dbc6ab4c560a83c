package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guruunoob/goobex-website/internal/domain/entity"
	"github.com/guruunoob/goobex-website/pkg/helpers"
)

// CtxPrincipalKey holds the *entity.Principal for authenticated requests.
const CtxPrincipalKey = "principal"

// SessionResolver maps a session token to its principal.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*entity.Principal, error)
}

// Auth gates a route on an active session. Unauthenticated requests
// are rejected with a bare 401 and never reach the handler, so no
// store query happens on their behalf.
func Auth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := resolve(c, resolver)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(CtxPrincipalKey, p)
		c.Next()
	}
}

// OptionalAuth resolves the session when present but never rejects:
// view routes stay public and only personalize for signed-in callers.
func OptionalAuth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := resolve(c, resolver); ok {
			c.Set(CtxPrincipalKey, p)
		}
		c.Next()
	}
}

// Principal returns the authenticated principal, if any.
func Principal(c *gin.Context) (*entity.Principal, bool) {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*entity.Principal)
	return p, ok
}

func resolve(c *gin.Context, resolver SessionResolver) (*entity.Principal, bool) {
	token, err := c.Cookie(helpers.SessionCookie)
	if err != nil || token == "" {
		return nil, false
	}
	p, err := resolver.ResolveSession(c.Request.Context(), token)
	if err != nil {
		return nil, false
	}
	return p, true
}
