package router

import "github.com/gin-gonic/gin"

// Module describes a feature module that registers its routes. JSON
// modules use the /api/v1 group; view modules register on the engine
// root.
type Module interface {
	Register(api *gin.RouterGroup, root gin.IRouter)
}
