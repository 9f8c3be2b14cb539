package api

import (
	"log"
	stdhttp "net/http"

	intconfig "tripcleaner/internal/config"
	h "tripcleaner/internal/http/handlers"
	"tripcleaner/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 64 << 20
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	h.SetEnv(env)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		api.POST("/clean-data", h.CleanData)
		api.GET("/clean-data/files/:name", h.DownloadReport)

		api.POST("/addresses/zone-km", h.ZoneKmLookup)
	}

	h.SetRouter(r)
	return r
}
