//go:build wireinject
// +build wireinject

package wire

import (
	"diskregistry/internal/agentclient"
	"diskregistry/internal/eraser"
	"diskregistry/internal/handler"
	"diskregistry/internal/middleware"
	"diskregistry/internal/notify"
	"diskregistry/internal/registry"
	"diskregistry/internal/repository"
	"diskregistry/internal/router"
	"diskregistry/internal/server"
	"diskregistry/internal/service"
	"diskregistry/internal/session"
	"diskregistry/pkg/app"
	"diskregistry/pkg/jwt"
	"diskregistry/pkg/log"
	"diskregistry/pkg/server/http"
	"diskregistry/pkg/sid"
	"diskregistry/pkg/volumedir"

	"github.com/google/wire"
	"github.com/spf13/viper"
)

var repositorySet = wire.NewSet(
	repository.NewDB,
	repository.NewRedis,
	repository.NewRepository,
	repository.NewTransaction,
	repository.NewAdminRepository,
	repository.NewStateStore,
)

var registrySet = wire.NewSet(
	registry.NewConfig,
	registry.NewRegistry,
	agentclient.NewClientFromConfig,
	wire.Bind(new(eraser.AgentClient), new(*agentclient.Client)),
	eraser.NewDispatcher,
	wire.Bind(new(registry.Eraser), new(*eraser.Dispatcher)),
	session.NewHub,
	wire.Bind(new(registry.SessionManager), new(*session.Hub)),
	newVolumeDirectory,
	notify.NewNotifier,
	wire.Bind(new(registry.CookieGenerator), new(*sid.Sid)),
	wire.Bind(new(service.DiskRegistry), new(*registry.Registry)),
)

var serviceSet = wire.NewSet(
	service.NewService,
	service.NewAdminService,
	service.NewAgentService,
	service.NewDiskService,
	service.NewDeviceService,
	service.NewCmsService,
	service.NewPlacementGroupService,
	service.NewRegistryService,
)

var handlerSet = wire.NewSet(
	handler.NewHandler,
	handler.NewAdminHandler,
	handler.NewAgentHandler,
	handler.NewAgentSessionHandler,
	handler.NewDiskHandler,
	handler.NewDeviceHandler,
	handler.NewCmsHandler,
	handler.NewPlacementGroupHandler,
	handler.NewRegistryHandler,
)

var serverSet = wire.NewSet(
	server.NewHTTPServer,
	server.NewRegistryServer,
	server.NewJobServer,
)

// newVolumeDirectory 未配置卷目录地址时认为没有磁盘被引用
func newVolumeDirectory(conf *viper.Viper) (registry.VolumeDirectory, error) {
	return volumedir.NewDirectory(conf)
}

// build App
func newApp(
	registryServer *server.RegistryServer,
	httpServer *http.Server,
	jobServer *server.JobServer,
) *app.App {
	return app.NewApp(
		app.WithServer(registryServer, httpServer, jobServer),
		app.WithName("diskregistry-server"),
	)
}

func NewWire(*viper.Viper, *log.Logger) (*app.App, func(), error) {
	panic(wire.Build(
		repositorySet,
		registrySet,
		serviceSet,
		handlerSet,
		serverSet,
		middleware.NewAgentLimiterFromConfig,
		wire.Struct(new(router.RouterDeps), "*"),
		sid.NewSid,
		jwt.NewJwt,
		newApp,
	))
}
