// Package http wires the gin engine: middleware chain, route groups and
// handler registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filemart-io/filemart/internal/interfaces/http/handlers"
	"github.com/filemart-io/filemart/internal/interfaces/http/middleware"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

// Router holds the configured gin engine and its handlers.
type Router struct {
	engine          *gin.Engine
	downloadHandler *handlers.DownloadHandler
	deviceHandler   *handlers.DeviceHandler
	catalogHandler  *handlers.CatalogHandler
	authMiddleware  *middleware.AuthMiddleware
}

// RouterConfig carries everything the router needs to assemble routes.
type RouterConfig struct {
	DownloadHandler *handlers.DownloadHandler
	DeviceHandler   *handlers.DeviceHandler
	CatalogHandler  *handlers.CatalogHandler
	AuthMiddleware  *middleware.AuthMiddleware
	AllowedOrigins  []string
	Logger          logger.Interface
}

func NewRouter(cfg RouterConfig) *Router {
	engine := gin.New()

	engine.Use(middleware.Recovery(cfg.Logger))
	engine.Use(middleware.Logger(cfg.Logger))
	engine.Use(middleware.CORS(cfg.AllowedOrigins))

	r := &Router{
		engine:          engine,
		downloadHandler: cfg.DownloadHandler,
		deviceHandler:   cfg.DeviceHandler,
		catalogHandler:  cfg.CatalogHandler,
		authMiddleware:  cfg.AuthMiddleware,
	}
	r.registerRoutes()
	return r
}

func (r *Router) registerRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := r.engine.Group("/api/v1")

	// Catalog reads are public.
	v1.GET("/files/:sid", r.catalogHandler.GetFile)

	authed := v1.Group("")
	authed.Use(r.authMiddleware.RequireAuth())
	{
		authed.POST("/downloads", r.downloadHandler.RequestDownload)
		authed.GET("/downloads/:token", r.downloadHandler.RedeemToken)

		authed.POST("/devices", r.deviceHandler.TrustDevice)
		authed.GET("/devices", r.deviceHandler.ListDevices)
		authed.DELETE("/devices/:fingerprint", r.deviceHandler.RemoveDevice)
	}
}

// Engine exposes the underlying gin engine for the HTTP server.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
