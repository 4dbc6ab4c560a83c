package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guruunoob/goobex-website/internal/container"
	"github.com/guruunoob/goobex-website/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(api *gin.RouterGroup, _ gin.IRouter) {
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	api.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
