package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guruunoob/goobex-website/internal/container"
	handlers "github.com/guruunoob/goobex-website/internal/interface/http"
	"github.com/guruunoob/goobex-website/internal/interface/middleware"
)

// AccountModule wires the JSON account API. Deployments have differed
// on whether the listing requires auth and whether the account
// endpoint exists at all, so both are explicit switches.
type AccountModule struct {
	Handler        *handlers.AccountHandler
	Resolver       middleware.SessionResolver
	UsersGated     bool
	AccountEnabled bool
}

func NewAccountModule(h *handlers.AccountHandler, resolver middleware.SessionResolver, usersGated, accountEnabled bool) *AccountModule {
	return &AccountModule{Handler: h, Resolver: resolver, UsersGated: usersGated, AccountEnabled: accountEnabled}
}

func (m *AccountModule) Register(api *gin.RouterGroup, _ gin.IRouter) {
	apiLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)

	if m.UsersGated {
		api.GET("/users", apiLimiter, middleware.Auth(m.Resolver), m.Handler.List)
	} else {
		api.GET("/users", apiLimiter, m.Handler.List)
	}

	if m.AccountEnabled {
		api.GET("/account", apiLimiter, middleware.Auth(m.Resolver), m.Handler.Me)
	}

	api.GET("/users/search", apiLimiter, middleware.Auth(m.Resolver), m.Handler.Search)
}
