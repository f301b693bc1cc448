package server

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/YuminosukeSato/svrkit/config"
)

// SetupRouter wires the endpoints onto a gin engine. Every route is also
// registered under /api/v1 for the original frontend's base path.
func SetupRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))

	h := NewHandler(cfg.Upload.MaxBytes)
	for _, g := range []*gin.RouterGroup{r.Group(""), r.Group("/api/v1")} {
		g.POST("/upload-info", h.UploadInfo)
		g.POST("/train-svr", h.TrainSVR)
		g.GET("/health", h.Health)
	}

	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	if slices.Contains(cfg.CORS.AllowOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORS.AllowOrigins
	}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	return c
}
