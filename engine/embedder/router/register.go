package router

import (
	"github.com/gin-gonic/gin"
)

// Register mounts the embedding and introspection routes.
func Register(r gin.IRouter, h *Handler) {
	r.POST("/embed", h.Embed)
	r.GET("/", h.Health)
	r.GET("/model_info", h.ModelInfo)
}
