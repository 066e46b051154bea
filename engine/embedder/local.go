package embedder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/embeddings/cybertron"

	"github.com/embedd/embedd/pkg/logger"
)

// buildLocalEmbedder loads the model through the cybertron backend: weights
// are fetched into ModelsDir on first run and executed on CPU. The call
// blocks until the model is resident in memory.
func buildLocalEmbedder(ctx context.Context, cfg *Config, opts ...embeddings.Option) (embeddings.Embedder, error) {
	log := logger.FromContext(ctx)
	logModelLoad(ctx, cfg)
	client, err := newLocalEmbedderClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedder %q: failed to initialize local embedder: %w", cfg.Model, err)
	}
	impl, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("embedder %q: failed to construct local embedder: %w", cfg.Model, err)
	}
	log.Info("embedding model ready", "model", cfg.Model, "dimensions", cfg.Dimensions)
	return impl, nil
}

func newLocalEmbedderClient(cfg *Config) (embeddings.EmbedderClient, error) {
	opts := make([]cybertron.Option, 0, 2)
	if model := strings.TrimSpace(cfg.Model); model != "" {
		opts = append(opts, cybertron.WithModel(model))
	}
	if dir := strings.TrimSpace(cfg.ModelsDir); dir != "" {
		opts = append(opts, cybertron.WithModelsDir(dir))
	}
	client, err := cybertron.NewCybertron(opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// logModelLoad announces the blocking model load. The cache probe only picks
// whether the first-run download notice is added.
func logModelLoad(ctx context.Context, cfg *Config) {
	log := logger.FromContext(ctx)
	log.Info("loading embedding model", "model", cfg.Model, "models_dir", cfg.ModelsDir)
	if !CachedLocally(cfg.ModelsDir, cfg.Model) {
		log.Info("first run: downloading model weights (~130MB)", "model", cfg.Model)
	}
}

// CachedLocally reports whether the model weights already exist in the local
// models directory. Purely informational: it only selects the startup log
// variant and has no effect on the load itself.
func CachedLocally(modelsDir, model string) bool {
	if modelsDir == "" || model == "" {
		return false
	}
	stat, err := os.Stat(filepath.Join(modelsDir, model))
	return err == nil && stat.IsDir()
}
