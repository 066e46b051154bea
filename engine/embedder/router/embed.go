package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/embedd/embedd/engine/embedder"
	"github.com/embedd/embedd/pkg/logger"
)

// Mode hints whether texts are search queries or document passages. Some
// embedding model families condition on an instruction prefix per mode; the
// bound BGE family does not, so the field is validated and accepted but not
// consulted by the encode path.
type Mode string

const (
	ModeQuery   Mode = "query"
	ModePassage Mode = "passage"
)

// EmbedRequest is the payload for POST /embed. Texts must be present but may
// be empty; Mode defaults to passage, matching document-chunking callers.
type EmbedRequest struct {
	Texts []string `json:"texts" binding:"required"`
	Mode  Mode     `json:"mode"  binding:"omitempty,oneof=query passage"`
}

// EmbedResponse carries one vector per input text, in input order.
type EmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// MetricsRecorder receives per-batch encode measurements.
type MetricsRecorder interface {
	RecordEmbedBatch(texts int, duration time.Duration)
}

// Handler handles embedding and introspection HTTP requests. It holds the
// process-wide Adapter and no per-request state.
type Handler struct {
	adapter *embedder.Adapter
	metrics MetricsRecorder
}

// NewHandler creates a new embedding handler. metrics may be nil.
func NewHandler(adapter *embedder.Adapter, metrics MetricsRecorder) *Handler {
	return &Handler{
		adapter: adapter,
		metrics: metrics,
	}
}

// Embed converts a batch of texts into L2-normalized vectors. Validation
// failures are rejected before the model is invoked; encode failures are
// surfaced as 500 without retry. Responses are complete, order-matched
// batches or nothing.
func (h *Handler) Embed(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())
	var req EmbedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Mode == "" {
		req.Mode = ModePassage
	}
	start := time.Now()
	vectors, err := h.adapter.EmbedTexts(c.Request.Context(), req.Texts)
	if err != nil {
		log.Error("embedding generation failed", "texts", len(req.Texts), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Embedding generation failed", "details": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.RecordEmbedBatch(len(req.Texts), time.Since(start))
	}
	log.Debug("embedded batch", "texts", len(req.Texts), "mode", req.Mode, "duration", time.Since(start))
	c.JSON(http.StatusOK, EmbedResponse{Embeddings: vectors})
}
