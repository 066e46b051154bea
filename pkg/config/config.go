package config

import (
	"time"
)

// Config represents the complete configuration for the embedd service.
// It provides type-safe access to all configuration values with validation.
type Config struct {
	Server   ServerConfig   `koanf:"server"   validate:"required"`
	Embedder EmbedderConfig `koanf:"embedder" validate:"required"`
	Runtime  RuntimeConfig  `koanf:"runtime"`
}

// ServerConfig contains HTTP server configuration. Every field can be
// overridden through the environment as EMBEDD_SERVER_<FIELD>, e.g.
// EMBEDD_SERVER_PORT.
type ServerConfig struct {
	Host           string        `koanf:"host"            validate:"required"`
	Port           int           `koanf:"port"            validate:"min=1,max=65535"`
	Timeout        time.Duration `koanf:"timeout"`
	MetricsEnabled bool          `koanf:"metrics_enabled"`
}

// EmbedderConfig contains the embedding model configuration. The model is
// loaded once at startup and held for the process lifetime. Environment
// overrides use EMBEDD_EMBEDDER_<FIELD>, e.g. EMBEDD_EMBEDDER_MAX_TOKENS.
type EmbedderConfig struct {
	Model         string `koanf:"model"           validate:"required"`
	ModelsDir     string `koanf:"models_dir"      validate:"required"`
	Dimensions    int    `koanf:"dimensions"      validate:"min=1"`
	MaxTokens     int    `koanf:"max_tokens"      validate:"min=1"`
	BatchSize     int    `koanf:"batch_size"      validate:"min=1"`
	CacheSize     int    `koanf:"cache_size"      validate:"min=0"`
	StripNewLines bool   `koanf:"strip_new_lines"`
}

// RuntimeConfig contains runtime behavior configuration. Environment
// overrides use EMBEDD_RUNTIME_<FIELD>, e.g. EMBEDD_RUNTIME_LOG_LEVEL.
type RuntimeConfig struct {
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `koanf:"log_json"`
}

// Default returns the built-in configuration. The embedder defaults mirror the
// BAAI/bge-small-en-v1.5 model card: 384-dimensional output, 512-token input
// window.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8121,
			Timeout:        30 * time.Second,
			MetricsEnabled: true,
		},
		Embedder: EmbedderConfig{
			Model:         "BAAI/bge-small-en-v1.5",
			ModelsDir:     "models",
			Dimensions:    384,
			MaxTokens:     512,
			BatchSize:     8,
			CacheSize:     1024,
			StripNewLines: false,
		},
		Runtime: RuntimeConfig{
			LogLevel: "info",
			LogJSON:  false,
		},
	}
}
