package router

import (
	"github.com/gin-gonic/gin"
)

func InitAdminRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	// No route group has permission
	noAuthRouter := r.Group("/")
	{
		noAuthRouter.POST("/login", deps.AdminHandler.Login)
	}
}
