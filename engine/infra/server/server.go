package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/embedd/embedd/engine/embedder"
	"github.com/embedd/embedd/engine/infra/monitoring"
	"github.com/embedd/embedd/pkg/config"
	"github.com/embedd/embedd/pkg/logger"
	"github.com/embedd/embedd/pkg/version"
)

const (
	httpReadTimeout       = 15 * time.Second
	httpIdleTimeout       = 60 * time.Second
	serverShutdownTimeout = 5 * time.Second
	hostAny               = "0.0.0.0"
	hostLoopback          = "127.0.0.1"
)

// Server hosts one shared embedding model behind the HTTP surface. The model
// is loaded before the listener opens and held for the process lifetime.
type Server struct {
	serverConfig *config.ServerConfig
	router       *gin.Engine
	monitoring   *monitoring.Service
	adapter      *embedder.Adapter
	httpServer   *http.Server
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewServer creates a server bound to the configuration attached to ctx.
func NewServer(ctx context.Context) (*Server, error) {
	serverCtx, cancel := context.WithCancel(ctx)
	cfg := config.FromContext(serverCtx)
	if cfg == nil {
		cancel()
		return nil, fmt.Errorf("configuration missing from context; attach one with config.ContextWithConfig")
	}
	return &Server{
		serverConfig: &cfg.Server,
		ctx:          serverCtx,
		cancel:       cancel,
	}, nil
}

// Run loads the model, builds the router and serves until the context is
// canceled. A model load failure is fatal: the listener is never opened.
func (s *Server) Run() error {
	defer s.cancel()
	log := logger.FromContext(s.ctx)
	cfg := config.FromContext(s.ctx)
	adapter, err := embedder.New(s.ctx, &embedder.Config{
		Model:         cfg.Embedder.Model,
		ModelsDir:     cfg.Embedder.ModelsDir,
		Dimensions:    cfg.Embedder.Dimensions,
		MaxTokens:     cfg.Embedder.MaxTokens,
		BatchSize:     cfg.Embedder.BatchSize,
		CacheSize:     cfg.Embedder.CacheSize,
		StripNewLines: cfg.Embedder.StripNewLines,
	})
	if err != nil {
		return fmt.Errorf("failed to load embedding model: %w", err)
	}
	s.adapter = adapter
	s.buildRouter(cfg)
	s.logStartupBanner()

	addr := fmt.Sprintf("%s:%d", s.serverConfig.Host, s.serverConfig.Port)
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: httpReadTimeout,
		// CPU-bound encoding of a large batch can be slow; the write timeout
		// must cover a full batch, not a single network write.
		WriteTimeout: s.serverConfig.Timeout,
		IdleTimeout:  httpIdleTimeout,
	}
	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-s.ctx.Done():
	}
	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) logStartupBanner() {
	log := logger.FromContext(s.ctx)
	info := s.adapter.Info()
	httpURL := fmt.Sprintf("http://%s:%d", friendlyHost(s.serverConfig.Host), s.serverConfig.Port)
	lines := []string{
		fmt.Sprintf("embedd %s", version.Get().Version),
		fmt.Sprintf("  Embed      > POST %s/embed", httpURL),
		fmt.Sprintf("  Health     > GET  %s/", httpURL),
		fmt.Sprintf("  Model info > GET  %s/model_info", httpURL),
	}
	if s.serverConfig.MetricsEnabled {
		lines = append(lines, fmt.Sprintf("  Metrics    > GET  %s/metrics", httpURL))
	}
	lines = append(lines, fmt.Sprintf("  Model      > %s (%d dims, %d max tokens)",
		info.Name, info.Dimensions, info.MaxTokens))
	log.Info("\n" + strings.Join(lines, "\n"))
}

func friendlyHost(h string) string {
	if h == hostAny || h == "::" || h == "" {
		return hostLoopback
	}
	return h
}
