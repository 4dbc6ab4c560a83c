package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guruunoob/goobex-website/internal/container"
	handlers "github.com/guruunoob/goobex-website/internal/interface/http"
	"github.com/guruunoob/goobex-website/internal/interface/middleware"
)

// AuthModule wires the OAuth login lifecycle:
// Public: GET /api/v1/auth/provider, /auth/provider/callback, /auth/failure
// Gated:  GET /api/v1/protected, /api/v1/logout
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Resolver middleware.SessionResolver
}

func NewAuthModule(h *handlers.AuthHandler, resolver middleware.SessionResolver) *AuthModule {
	return &AuthModule{Handler: h, Resolver: resolver}
}

func (m *AuthModule) Register(api *gin.RouterGroup, _ gin.IRouter) {
	beginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	callbackLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	api.GET("/auth/provider", beginLimiter, m.Handler.Begin)
	api.GET("/auth/provider/callback", callbackLimiter, m.Handler.Callback)
	api.GET("/auth/failure", m.Handler.Failure)

	gated := api.Group("/")
	gated.Use(middleware.Auth(m.Resolver))
	{
		gated.GET("/protected", m.Handler.Protected)
		gated.GET("/logout", m.Handler.Logout)
	}
}
