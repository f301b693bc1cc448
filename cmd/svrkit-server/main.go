package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/YuminosukeSato/svrkit/config"
	"github.com/YuminosukeSato/svrkit/pkg/log"
	"github.com/YuminosukeSato/svrkit/server"
)

func main() {
	// debugモードで起動しないようにする
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load(os.Getenv("SVRKIT_CONFIG"))
	if err != nil {
		slog.Error("load config failed", log.ErrAttr(err))
		os.Exit(1)
	}

	log.SetupLogger(cfg.Log.Level)

	r := server.SetupRouter(cfg)

	slog.Info("server starting",
		slog.Int("port", cfg.Server.Port),
		slog.String("version", server.Version),
	)
	if err := r.Run(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		slog.Error("server run failed", log.ErrAttr(err))
		os.Exit(1)
	}
}
