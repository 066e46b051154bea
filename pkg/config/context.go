package config

import (
	"context"
	"sync"
)

type ctxKey struct{}

// ContextWithConfig stores the configuration in the context.
func ContextWithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

var defaultConfig *Config
var defaultConfigOnce sync.Once

// FromContext returns the active configuration for the provided context. If
// none is attached it falls back to a lazily-initialized default loaded from
// built-in defaults and environment variables, mirroring the logger package
// behavior so components always see a usable configuration.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok && cfg != nil {
			return cfg
		}
	}
	return getDefaultConfig()
}

func getDefaultConfig() *Config {
	defaultConfigOnce.Do(func() {
		cfg, err := Load(context.Background())
		if err != nil {
			cfg = Default()
		}
		defaultConfig = cfg
	})
	return defaultConfig
}
