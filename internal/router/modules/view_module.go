package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/guruunoob/goobex-website/internal/container"
	handlers "github.com/guruunoob/goobex-website/internal/interface/http"
	"github.com/guruunoob/goobex-website/internal/interface/middleware"
)

// ViewModule wires the server-rendered pages and static assets. Every
// page is public; OptionalAuth only personalizes the chrome.
type ViewModule struct {
	Handler  *handlers.ViewHandler
	Resolver middleware.SessionResolver
}

func NewViewModule(h *handlers.ViewHandler, resolver middleware.SessionResolver) *ViewModule {
	return &ViewModule{Handler: h, Resolver: resolver}
}

func (m *ViewModule) Register(_ *gin.RouterGroup, root gin.IRouter) {
	opt := middleware.OptionalAuth(m.Resolver)

	root.GET("/", m.Handler.Root)
	root.GET("/home", opt, m.Handler.Home)
	root.GET("/profile/:username", opt, m.Handler.Profile)
	root.GET("/users", opt, m.Handler.Users)

	root.Static("/resources", container.GetConfig().StaticDir)
}
