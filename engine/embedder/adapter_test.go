package embedder

import (
	"context"
	"errors"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	dims      int
	calls     int
	lastBatch []string
	err       error
	badDims   bool
	badCount  bool
}

func (s *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	s.lastBatch = texts
	if s.err != nil {
		return nil, s.err
	}
	if s.badCount {
		return [][]float32{}, nil
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		dims := s.dims
		if s.badDims {
			dims = s.dims + 1
		}
		vector := make([]float32, dims)
		h := fnv.New32a()
		h.Write([]byte(text))
		vector[int(h.Sum32())%dims] = 1
		out[i] = vector
	}
	return out, nil
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func testConfig() *Config {
	return &Config{
		Model:      "test-model",
		ModelsDir:  "models",
		Dimensions: 4,
		MaxTokens:  512,
		BatchSize:  8,
	}
}

func TestConfigValidation(t *testing.T) {
	t.Run("Should reject missing model", func(t *testing.T) {
		cfg := testConfig()
		cfg.Model = ""
		_, err := Wrap(cfg, &stubEmbedder{dims: 4})
		require.ErrorIs(t, err, errMissingModel)
	})
	t.Run("Should reject non-positive dimensions", func(t *testing.T) {
		cfg := testConfig()
		cfg.Dimensions = 0
		_, err := Wrap(cfg, &stubEmbedder{dims: 4})
		require.ErrorIs(t, err, errInvalidDimension)
	})
	t.Run("Should reject non-positive max tokens", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxTokens = 0
		_, err := Wrap(cfg, &stubEmbedder{dims: 4})
		require.ErrorIs(t, err, errInvalidMaxTokens)
	})
	t.Run("Should reject non-positive batch size", func(t *testing.T) {
		cfg := testConfig()
		cfg.BatchSize = 0
		_, err := Wrap(cfg, &stubEmbedder{dims: 4})
		require.ErrorIs(t, err, errInvalidBatchSize)
	})
	t.Run("Should reject negative cache size", func(t *testing.T) {
		cfg := testConfig()
		cfg.CacheSize = -1
		_, err := Wrap(cfg, &stubEmbedder{dims: 4})
		require.ErrorIs(t, err, errInvalidCacheSize)
	})
	t.Run("Should require an implementation", func(t *testing.T) {
		_, err := Wrap(testConfig(), nil)
		require.Error(t, err)
	})
	t.Run("Should require a config", func(t *testing.T) {
		_, err := Wrap(nil, &stubEmbedder{dims: 4})
		require.Error(t, err)
	})
}

func TestAdapterInfo(t *testing.T) {
	t.Run("Should expose static model metadata", func(t *testing.T) {
		adapter, err := Wrap(testConfig(), &stubEmbedder{dims: 4})
		require.NoError(t, err)
		info := adapter.Info()
		assert.Equal(t, "test-model", info.Name)
		assert.Equal(t, 4, info.Dimensions)
		assert.Equal(t, 512, info.MaxTokens)
		assert.Equal(t, 4, adapter.Dimensions())
	})
}

func TestEmbedTexts(t *testing.T) {
	ctx := context.Background()
	t.Run("Should return empty output for empty input without invoking the model", func(t *testing.T) {
		stub := &stubEmbedder{dims: 4}
		adapter, err := Wrap(testConfig(), stub)
		require.NoError(t, err)
		vectors, err := adapter.EmbedTexts(ctx, []string{})
		require.NoError(t, err)
		assert.NotNil(t, vectors)
		assert.Empty(t, vectors)
		assert.Equal(t, 0, stub.calls)
	})
	t.Run("Should return one vector per text in input order", func(t *testing.T) {
		stub := &stubEmbedder{dims: 4}
		adapter, err := Wrap(testConfig(), stub)
		require.NoError(t, err)
		texts := []string{"alpha", "beta", "gamma"}
		vectors, err := adapter.EmbedTexts(ctx, texts)
		require.NoError(t, err)
		require.Len(t, vectors, len(texts))
		expected, err := stub.EmbedDocuments(ctx, texts)
		require.NoError(t, err)
		for i := range texts {
			assert.Len(t, vectors[i], 4)
			assert.Equal(t, expected[i], vectors[i])
		}
	})
	t.Run("Should be deterministic for identical input", func(t *testing.T) {
		adapter, err := Wrap(testConfig(), &stubEmbedder{dims: 4})
		require.NoError(t, err)
		first, err := adapter.EmbedTexts(ctx, []string{"same text"})
		require.NoError(t, err)
		second, err := adapter.EmbedTexts(ctx, []string{"same text"})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
	t.Run("Should surface backend errors", func(t *testing.T) {
		stub := &stubEmbedder{dims: 4, err: errors.New("boom")}
		adapter, err := Wrap(testConfig(), stub)
		require.NoError(t, err)
		_, err = adapter.EmbedTexts(ctx, []string{"x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "test-model")
	})
	t.Run("Should reject vector count mismatches", func(t *testing.T) {
		adapter, err := Wrap(testConfig(), &stubEmbedder{dims: 4, badCount: true})
		require.NoError(t, err)
		_, err = adapter.EmbedTexts(ctx, []string{"x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "received 0 embeddings for 1 texts")
	})
	t.Run("Should reject dimension mismatches", func(t *testing.T) {
		adapter, err := Wrap(testConfig(), &stubEmbedder{dims: 4, badDims: true})
		require.NoError(t, err)
		_, err = adapter.EmbedTexts(ctx, []string{"x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 4")
	})
}

func TestEmbedTextsCache(t *testing.T) {
	ctx := context.Background()
	cachedConfig := func() *Config {
		cfg := testConfig()
		cfg.CacheSize = 16
		return cfg
	}
	t.Run("Should encode duplicate texts once per batch", func(t *testing.T) {
		stub := &stubEmbedder{dims: 4}
		adapter, err := Wrap(cachedConfig(), stub)
		require.NoError(t, err)
		vectors, err := adapter.EmbedTexts(ctx, []string{"dup", "dup", "other"})
		require.NoError(t, err)
		require.Len(t, vectors, 3)
		assert.Equal(t, vectors[0], vectors[1])
		assert.Equal(t, []string{"dup", "other"}, stub.lastBatch)
	})
	t.Run("Should serve repeated requests from cache", func(t *testing.T) {
		stub := &stubEmbedder{dims: 4}
		adapter, err := Wrap(cachedConfig(), stub)
		require.NoError(t, err)
		first, err := adapter.EmbedTexts(ctx, []string{"hello"})
		require.NoError(t, err)
		second, err := adapter.EmbedTexts(ctx, []string{"hello"})
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, stub.calls)
	})
	t.Run("Should not let callers alias cached vectors", func(t *testing.T) {
		stub := &stubEmbedder{dims: 4}
		adapter, err := Wrap(cachedConfig(), stub)
		require.NoError(t, err)
		first, err := adapter.EmbedTexts(ctx, []string{"hello"})
		require.NoError(t, err)
		first[0][0] = 42
		second, err := adapter.EmbedTexts(ctx, []string{"hello"})
		require.NoError(t, err)
		assert.NotEqual(t, float32(42), second[0][0])
	})
}
