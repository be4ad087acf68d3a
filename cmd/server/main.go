package main

import (
	"context"
	"flag"
	"fmt"

	"diskregistry/cmd/server/wire"
	"diskregistry/pkg/config"
	"diskregistry/pkg/log"

	"go.uber.org/zap"
)

// @title           Disk Registry API
// @version         1.0.0
// @description     Control plane that tracks storage agents and their devices, and allocates disks for the volume service.
// @termsOfService  http://swagger.io/terms/
// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html
// @host      localhost:8000
// @securityDefinitions.apiKey Bearer
// @in header
// @name Authorization
// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	var envConf = flag.String("conf", "config/local.yml", "config path, eg: -conf ./config/local.yml")
	flag.Parse()
	conf := config.NewConfig(*envConf)

	logger := log.NewLog(conf)

	app, cleanup, err := wire.NewWire(conf, logger)
	defer cleanup()
	if err != nil {
		panic(err)
	}
	addr := fmt.Sprintf("http://%s:%d", conf.GetString("http.host"), conf.GetInt("http.port"))
	logger.Info("disk registry start",
		zap.String("host", addr),
		zap.String("store", conf.GetString("data.store")),
		zap.Duration("tick_interval", conf.GetDuration("job.tick_interval")),
	)
	if !conf.GetBool("http.disable_swagger") {
		logger.Info("docs addr", zap.String("addr", addr+"/swagger/index.html"))
	}
	if err = app.Run(context.Background()); err != nil {
		panic(err)
	}
}
