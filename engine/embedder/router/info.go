package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports service health plus the model metadata callers need to
// validate compatibility. The model is guaranteed loaded by construction, so
// this always succeeds once the process is serving.
func (h *Handler) Health(c *gin.Context) {
	info := h.adapter.Info()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"model":      info.Name,
		"dimensions": info.Dimensions,
		"max_tokens": info.MaxTokens,
	})
}

// ModelInfo returns the raw model metadata record.
func (h *Handler) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.adapter.Info())
}
