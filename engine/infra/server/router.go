package server

import (
	"github.com/gin-gonic/gin"

	embedrouter "github.com/embedd/embedd/engine/embedder/router"
	"github.com/embedd/embedd/engine/infra/monitoring"
	"github.com/embedd/embedd/pkg/config"
)

func (s *Server) buildRouter(cfg *config.Config) {
	if cfg.Runtime.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.ctx))
	var metrics embedrouter.MetricsRecorder
	if cfg.Server.MetricsEnabled {
		s.monitoring = monitoring.NewService()
		r.Use(s.monitoring.GinMiddleware())
		r.GET("/metrics", gin.WrapH(s.monitoring.ExporterHandler()))
		metrics = s.monitoring
	}
	embedrouter.Register(r, embedrouter.NewHandler(s.adapter, metrics))
	s.router = r
}
