package router

import (
	"diskregistry/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitRegistryRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	strictAuthRouter := r.Group("/").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.POST("/cms/actions", deps.CmsHandler.ExecuteActions)

		strictAuthRouter.POST("/placement-groups", deps.PlacementGroupHandler.CreatePlacementGroup)
		strictAuthRouter.GET("/placement-groups", deps.PlacementGroupHandler.ListPlacementGroups)
		strictAuthRouter.DELETE("/placement-groups/:group_id", deps.PlacementGroupHandler.DestroyPlacementGroup)

		strictAuthRouter.PUT("/registry/writable", deps.RegistryHandler.SetWritableState)
		strictAuthRouter.POST("/registry/cleanup", deps.RegistryHandler.CleanupDisks)
	}
}
