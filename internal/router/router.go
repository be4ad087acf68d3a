package router

import (
	"diskregistry/internal/handler"
	"diskregistry/internal/middleware"
	"diskregistry/pkg/jwt"
	"diskregistry/pkg/log"

	"github.com/spf13/viper"
)

type RouterDeps struct {
	Logger                *log.Logger
	Config                *viper.Viper
	JWT                   *jwt.JWT
	AgentLimiter          *middleware.AgentLimiter
	AdminHandler          *handler.AdminHandler
	AgentHandler          *handler.AgentHandler
	AgentSessionHandler   *handler.AgentSessionHandler
	DiskHandler           *handler.DiskHandler
	DeviceHandler         *handler.DeviceHandler
	CmsHandler            *handler.CmsHandler
	PlacementGroupHandler *handler.PlacementGroupHandler
	RegistryHandler       *handler.RegistryHandler
}
