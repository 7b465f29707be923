package main

import (
	httpapi "github.com/consensuslabs/vodstream/internal/http"
	"github.com/consensuslabs/vodstream/internal/http/middleware"
	"github.com/consensuslabs/vodstream/internal/video"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (a *App) setupRouter() error {
	if a.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	responses := httpapi.NewResponseHandler(a.logger)

	router := gin.New()
	router.MaxMultipartMemory = a.Config.Server.MaxMultipartMemory
	router.Use(
		middleware.RequestLoggerMiddleware(a.logger),
		httpapi.RecoveryMiddleware(responses),
		httpapi.CORSMiddleware(),
	)

	router.GET("/health", a.health.HandleHealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	video.NewHandler(a.video, a.layout, responses, a.logger).RegisterRoutes(router)

	if err := httpapi.ServeStaticFiles(router, []httpapi.StaticFileConfig{
		{URLPath: a.Config.Storage.PublicPath, FilePath: a.layout.StreamRoot()},
	}); err != nil {
		return err
	}

	a.router = router
	return nil
}
