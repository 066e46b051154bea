package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tmc/langchaingo/embeddings"
)

// Adapter wraps a langchaingo embedder implementation behind the service's
// encode contract: order-preserving, fixed-dimension, one vector per input.
// The underlying model is read-only after construction, so a single Adapter
// may be invoked concurrently by in-flight requests.
type Adapter struct {
	info      Info
	batchSize int
	impl      embeddings.Embedder
	cacheMu   sync.Mutex
	cache     *lru.Cache[string, []float32]
}

// New constructs an adapter bound to the local CPU backend. The model is
// loaded (downloading weights on first run) before New returns; a failure
// here must abort startup.
func New(ctx context.Context, cfg *Config) (*Adapter, error) {
	if cfg == nil {
		return nil, errors.New("embedder config is required")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	options := []embeddings.Option{
		embeddings.WithBatchSize(cfg.BatchSize),
		embeddings.WithStripNewLines(cfg.StripNewLines),
	}
	impl, err := buildLocalEmbedder(ctx, cfg, options...)
	if err != nil {
		return nil, err
	}
	return newAdapter(cfg, impl)
}

// Wrap constructs an adapter around an existing langchaingo embedder.
func Wrap(cfg *Config, impl embeddings.Embedder) (*Adapter, error) {
	if cfg == nil {
		return nil, errors.New("embedder config is required")
	}
	if impl == nil {
		return nil, fmt.Errorf("embedder %q: implementation is required", cfg.Model)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return newAdapter(cfg, impl)
}

func newAdapter(cfg *Config, impl embeddings.Embedder) (*Adapter, error) {
	a := &Adapter{
		info: Info{
			Name:       cfg.Model,
			Dimensions: cfg.Dimensions,
			MaxTokens:  cfg.MaxTokens,
		},
		batchSize: cfg.BatchSize,
		impl:      impl,
	}
	if cfg.CacheSize > 0 {
		if err := a.EnableCache(cfg.CacheSize); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Info returns the static model metadata.
func (a *Adapter) Info() Info {
	return a.info
}

// Dimensions returns the configured vector dimension.
func (a *Adapter) Dimensions() int {
	return a.info.Dimensions
}

// EnableCache initializes an LRU cache for embeddings.
func (a *Adapter) EnableCache(size int) error {
	if size <= 0 {
		return fmt.Errorf("embedder %q: cache size must be greater than zero", a.info.Name)
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return fmt.Errorf("embedder %q: init cache: %w", a.info.Name, err)
	}
	a.cacheMu.Lock()
	a.cache = cache
	a.cacheMu.Unlock()
	return nil
}

// EmbedTexts encodes a batch of texts into L2-normalized vectors, one per
// input in input order. An empty batch returns an empty slice without
// touching the model.
func (a *Adapter) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return make([][]float32, 0), nil
	}
	if cache := a.getCache(); cache != nil {
		return a.cachedEmbedTexts(ctx, cache, texts)
	}
	vectors, err := a.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, a.withContext(err)
	}
	if err := a.checkBatch(vectors, len(texts)); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (a *Adapter) cachedEmbedTexts(
	ctx context.Context,
	cache *lru.Cache[string, []float32],
	texts []string,
) ([][]float32, error) {
	results := make([][]float32, len(texts))
	missingIdxMap := make(map[string][]int)
	missingOrder := make([]string, 0, len(texts))
	for i := range texts {
		text := texts[i]
		if vector, ok := a.lookupCache(cache, text); ok {
			results[i] = vector
			continue
		}
		if _, seen := missingIdxMap[text]; !seen {
			missingOrder = append(missingOrder, text)
		}
		missingIdxMap[text] = append(missingIdxMap[text], i)
	}
	if len(missingOrder) == 0 {
		return results, nil
	}
	embedded, err := a.impl.EmbedDocuments(ctx, missingOrder)
	if err != nil {
		return nil, a.withContext(err)
	}
	if err := a.checkBatch(embedded, len(missingOrder)); err != nil {
		return nil, err
	}
	for i := range embedded {
		text := missingOrder[i]
		for _, idx := range missingIdxMap[text] {
			results[idx] = cloneVector(embedded[i])
		}
		a.storeCache(cache, text, embedded[i])
	}
	return results, nil
}

// checkBatch enforces the encode contract on backend output: one vector per
// input, each exactly Dimensions long.
func (a *Adapter) checkBatch(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return a.withContext(fmt.Errorf("received %d embeddings for %d texts", len(vectors), want))
	}
	for i := range vectors {
		if len(vectors[i]) != a.info.Dimensions {
			return a.withContext(fmt.Errorf(
				"vector %d has %d dimensions, expected %d", i, len(vectors[i]), a.info.Dimensions,
			))
		}
	}
	return nil
}

func (a *Adapter) getCache() *lru.Cache[string, []float32] {
	a.cacheMu.Lock()
	cache := a.cache
	a.cacheMu.Unlock()
	return cache
}

func (a *Adapter) lookupCache(cache *lru.Cache[string, []float32], text string) ([]float32, bool) {
	if cache == nil {
		return nil, false
	}
	value, ok := cache.Get(cacheKey(text))
	if !ok {
		return nil, false
	}
	return cloneVector(value), true
}

func (a *Adapter) storeCache(cache *lru.Cache[string, []float32], text string, vector []float32) {
	if cache == nil {
		return
	}
	cache.Add(cacheKey(text), cloneVector(vector))
}

func (a *Adapter) withContext(err error) error {
	return fmt.Errorf("embedder %q: %w", a.info.Name, err)
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func cloneVector(vector []float32) []float32 {
	if vector == nil {
		return nil
	}
	cloned := make([]float32, len(vector))
	copy(cloned, vector)
	return cloned
}
