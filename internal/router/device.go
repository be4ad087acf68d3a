package router

import (
	"diskregistry/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitDeviceRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	strictAuthRouter := r.Group("/devices").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.GET("", deps.DeviceHandler.ListDevices)
		strictAuthRouter.GET("/:device_id", deps.DeviceHandler.GetDevice)
		strictAuthRouter.PUT("/:device_id/state", deps.DeviceHandler.ChangeDeviceState)
		strictAuthRouter.POST("/:device_id/suspend", deps.DeviceHandler.SuspendDevice)
		strictAuthRouter.POST("/:device_id/resume", deps.DeviceHandler.ResumeDevice)
	}
}
