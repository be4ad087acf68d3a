//go:build wireinject
// +build wireinject

package wire

import (
	"diskregistry/internal/repository"
	"diskregistry/internal/server"
	"diskregistry/internal/service"
	"diskregistry/pkg/app"
	"diskregistry/pkg/jwt"
	"diskregistry/pkg/log"
	"diskregistry/pkg/sid"

	"github.com/google/wire"
	"github.com/spf13/viper"
)

var repositorySet = wire.NewSet(
	repository.NewDB,
	repository.NewRedis,
	repository.NewRepository,
	repository.NewTransaction,
	repository.NewAdminRepository,
)
var serviceSet = wire.NewSet(
	service.NewService,
	service.NewAdminService,
)
var serverSet = wire.NewSet(
	server.NewMigrateServer,
)
var sidSet = wire.NewSet(
	sid.NewSid,
)

// build App
func newApp(
	migrateServer *server.MigrateServer,
) *app.App {
	return app.NewApp(
		app.WithServer(migrateServer),
		app.WithName("diskregistry-migrate"),
	)
}

func NewWire(*viper.Viper, *log.Logger) (*app.App, func(), error) {
	panic(wire.Build(
		repositorySet,
		serviceSet,
		sidSet,
		serverSet,
		jwt.NewJwt,
		newApp,
	))
}
