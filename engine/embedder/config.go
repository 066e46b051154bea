package embedder

import (
	"errors"
)

// Config describes the single embedding model bound to the process. The
// service loads exactly one model at startup and never reloads it.
type Config struct {
	// Model is the HuggingFace identifier of the sentence-embedding model.
	Model string
	// ModelsDir is the local directory where model weights are cached.
	ModelsDir string
	// Dimensions is the length of every output vector.
	Dimensions int
	// MaxTokens is the model's input window; longer inputs are truncated by
	// the backend tokenizer.
	MaxTokens int
	// BatchSize is the number of texts encoded per backend call.
	BatchSize int
	// CacheSize bounds the embedding LRU cache; zero disables caching.
	CacheSize int
	// StripNewLines collapses newlines to spaces before encoding.
	StripNewLines bool
}

var (
	errMissingModel     = errors.New("embedder model is required")
	errInvalidDimension = errors.New("embedder dimensions must be greater than zero")
	errInvalidMaxTokens = errors.New("embedder max tokens must be greater than zero")
	errInvalidBatchSize = errors.New("embedder batch size must be greater than zero")
	errInvalidCacheSize = errors.New("embedder cache size must not be negative")
)

func validateConfig(cfg *Config) error {
	if cfg.Model == "" {
		return errMissingModel
	}
	if cfg.Dimensions <= 0 {
		return errInvalidDimension
	}
	if cfg.MaxTokens <= 0 {
		return errInvalidMaxTokens
	}
	if cfg.BatchSize <= 0 {
		return errInvalidBatchSize
	}
	if cfg.CacheSize < 0 {
		return errInvalidCacheSize
	}
	return nil
}
