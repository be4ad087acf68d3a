package router

import (
	"diskregistry/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitDiskRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	strictAuthRouter := r.Group("/").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.POST("/disks", deps.DiskHandler.AllocateDisk)
		strictAuthRouter.GET("/disks/:disk_id", deps.DiskHandler.DescribeDisk)
		strictAuthRouter.DELETE("/disks/:disk_id", deps.DiskHandler.DeallocateDisk)
		strictAuthRouter.POST("/disks/:disk_id/cleanup", deps.DiskHandler.MarkDiskForCleanup)
		strictAuthRouter.POST("/disks/:disk_id/replace", deps.DiskHandler.ReplaceDevice)
		strictAuthRouter.POST("/disks/:disk_id/migrations/finish", deps.DiskHandler.FinishMigration)
		strictAuthRouter.GET("/notifications", deps.DiskHandler.ListDisksToNotify)
	}
}
