package server

import (
	"fmt"

	apiV1 "diskregistry/api/v1"
	"diskregistry/docs"
	"diskregistry/internal/middleware"
	"diskregistry/internal/router"
	"diskregistry/pkg/server/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewHTTPServer(
	deps router.RouterDeps,
) *http.Server {
	if deps.Config.GetString("env") == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := http.NewServer(
		gin.Default(),
		deps.Logger,
		http.WithServerHost(deps.Config.GetString("http.host")),
		http.WithServerPort(deps.Config.GetInt("http.port")),
	)

	// swagger doc
	if !deps.Config.GetBool("http.disable_swagger") {
		docs.SwaggerInfo.BasePath = "/"
		docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", deps.Config.GetString("http.host"), deps.Config.GetInt("http.port"))
		s.GET("/swagger/*any", ginSwagger.WrapHandler(
			swaggerfiles.Handler,
			ginSwagger.DefaultModelsExpandDepth(-1),
			ginSwagger.PersistAuthorization(true),
		))
	}

	s.Use(
		middleware.CORSMiddleware(),
		middleware.ResponseLogMiddleware(deps.Logger),
		middleware.RequestLogMiddleware(deps.Logger),
	)
	// 存活探针，不经过鉴权
	s.GET("/healthz", func(ctx *gin.Context) {
		apiV1.HandleSuccess(ctx, map[string]interface{}{
			"service": "diskregistry",
			"store":   deps.Config.GetString("data.store"),
		})
	})

	apiV1 := s.Group("/api/v1")
	router.InitAdminRouter(deps, apiV1)
	router.InitAgentRouter(deps, apiV1)
	router.InitDiskRouter(deps, apiV1)
	router.InitDeviceRouter(deps, apiV1)
	router.InitRegistryRouter(deps, apiV1)

	return s
}
