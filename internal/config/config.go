// Package config loads the service configuration from defaults, an optional
// TOML file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	ProviderDashScope = "dashscope"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"

	defaultBaseURL     = "https://dashscope-intl.aliyuncs.com/api/v1"
	defaultModel       = "qwen-max"
	defaultGeminiModel = "gemini-2.5-flash"

	envPrefix    = "GENERATOR_"
	legacyPrefix = "QWEN_"
)

// DefaultPaths are tried in order when no config file is given.
var DefaultPaths = []string{"./generator.toml", "$HOME/.component-generator.toml"}

type Config struct {
	Upstream Upstream `koanf:"upstream"`
	Server   Server   `koanf:"server"`
	Store    Store    `koanf:"store"`
	Pipeline Pipeline `koanf:"pipeline"`
	Log      Log      `koanf:"log"`
}

type Upstream struct {
	Provider       string  `koanf:"provider"`
	APIKey         string  `koanf:"api_key"`
	KeyParam       string  `koanf:"key_param"`
	BaseURL        string  `koanf:"base_url"`
	Model          string  `koanf:"model"`
	Temperature    float64 `koanf:"temperature"`
	MaxTokens      int     `koanf:"max_tokens"`
	TimeoutSeconds int     `koanf:"timeout_seconds"`
}

// Timeout is the bound on the single upstream call.
func (u Upstream) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

type Server struct {
	Addr string `koanf:"addr"`
}

// Store configures the optional DynamoDB generation log. An empty table
// disables it.
type Store struct {
	Table string `koanf:"table"`
}

type Pipeline struct {
	MaxCodeSize int `koanf:"max_code_size"`
}

type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SlogLevel maps the configured level name onto slog; unknown names are INFO.
func (l Log) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"upstream.provider":        ProviderDashScope,
		"upstream.base_url":        defaultBaseURL,
		"upstream.model":           defaultModel,
		"upstream.temperature":     0.7,
		"upstream.max_tokens":      4000,
		"upstream.timeout_seconds": 120,
		"server.addr":              ":8000",
		"pipeline.max_code_size":   10000,
		"log.level":                "info",
		"log.format":               "text",
	}
}

// Load builds a Config. When configPath is empty the DefaultPaths are tried
// and a missing file is not an error.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", configPath, err)
		}
	} else {
		for _, path := range DefaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", path, err)
			}
			break
		}
	}

	if err := k.Load(env.Provider(legacyPrefix, ".", legacyKey), nil); err != nil {
		return nil, fmt.Errorf("config: load legacy environment: %w", err)
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Upstream.Provider = strings.ToLower(strings.TrimSpace(cfg.Upstream.Provider))
	// The native DashScope endpoint only serves the dashscope provider; the
	// other clients fall back to their own default endpoint.
	if cfg.Upstream.Provider != ProviderDashScope && cfg.Upstream.BaseURL == defaultBaseURL {
		cfg.Upstream.BaseURL = ""
	}
	if cfg.Upstream.Provider == ProviderGemini && cfg.Upstream.Model == defaultModel {
		cfg.Upstream.Model = defaultGeminiModel
	}
	return &cfg, nil
}

// envKey maps GENERATOR_UPSTREAM_API_KEY to upstream.api_key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// legacyKey maps the original QWEN_* variables; anything else is skipped.
func legacyKey(s string) string {
	switch s {
	case "QWEN_API_KEY":
		return "upstream.api_key"
	case "QWEN_API_BASE_URL":
		return "upstream.base_url"
	}
	return ""
}

// Validate rejects configurations the service cannot run with. A missing API
// key is allowed: every request then degrades to a fallback component.
func Validate(cfg *Config) error {
	switch cfg.Upstream.Provider {
	case ProviderDashScope, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("config: unknown upstream provider %q", cfg.Upstream.Provider)
	}
	if strings.TrimSpace(cfg.Upstream.Model) == "" {
		return fmt.Errorf("config: upstream model is required")
	}
	if cfg.Upstream.MaxTokens <= 0 {
		return fmt.Errorf("config: upstream max_tokens must be positive, got %d", cfg.Upstream.MaxTokens)
	}
	if cfg.Upstream.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: upstream timeout_seconds must be positive, got %d", cfg.Upstream.TimeoutSeconds)
	}
	if cfg.Upstream.Temperature < 0 || cfg.Upstream.Temperature > 2 {
		return fmt.Errorf("config: upstream temperature must be within [0, 2], got %v", cfg.Upstream.Temperature)
	}
	if cfg.Pipeline.MaxCodeSize <= 0 {
		return fmt.Errorf("config: pipeline max_code_size must be positive, got %d", cfg.Pipeline.MaxCodeSize)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", cfg.Log.Format)
	}
	return nil
}
