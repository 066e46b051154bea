package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// loader assembles configuration from defaults and environment variables.
type loader struct {
	koanf     *koanf.Koanf
	validator *validator.Validate
}

func newLoader() *loader {
	return &loader{
		koanf:     koanf.New("."),
		validator: validator.New(),
	}
}

// Load builds the effective configuration: built-in defaults overlaid with
// environment variables. The last source wins.
func Load(_ context.Context) (*Config, error) {
	l := newLoader()
	if err := l.loadDefaults(); err != nil {
		return nil, err
	}
	if err := l.loadEnvironment(); err != nil {
		return nil, err
	}
	return l.unmarshalAndValidate()
}

// loadDefaults loads the default configuration.
func (l *loader) loadDefaults() error {
	// The structs provider converts the default config to a map, so defaults
	// live in one place instead of hardcoded key-value pairs.
	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	return nil
}

// envPrefix scopes environment overrides to this service so ambient
// variables from other tooling cannot leak into the configuration.
const envPrefix = "EMBEDD_"

// transformEnvKey converts a prefix-stripped environment variable name to a
// koanf path. For example: EMBEDDER_MAX_TOKENS -> embedder.max_tokens
func transformEnvKey(s string) string {
	s = strings.ToLower(s)
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_'
	})
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	// First part is the top-level section (e.g. "embedder"); the remaining
	// parts keep their underscores to preserve field names.
	return parts[0] + "." + strings.Join(parts[1:], "_")
}

// loadEnvironment loads configuration overrides from environment variables.
func (l *loader) loadEnvironment() error {
	if err := l.koanf.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key string, value string) (string, any) {
			return transformEnvKey(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// unmarshalAndValidate unmarshals the configuration and validates it.
func (l *loader) unmarshalAndValidate() (*Config, error) {
	var config Config
	if err := l.koanf.UnmarshalWithConf("", &config, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &config,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := l.Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks if the configuration meets all validation requirements.
func (l *loader) Validate(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := l.validator.Struct(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// Validate checks a configuration against the struct constraints. Used by
// callers that mutate a loaded config (e.g. CLI flag overrides).
func Validate(config *Config) error {
	return newLoader().Validate(config)
}
