// Package config loads chefbot runtime configuration from defaults, an
// optional YAML file, an optional .env file and CHEFBOT_* environment variables,
// in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported providers.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config is the full runtime configuration.
type Config struct {
	Env   string `yaml:"env"`
	Model Model  `yaml:"model"`
	HTTP  HTTP   `yaml:"http"`
	Log   Log    `yaml:"log"`
}

// Model configures the model-serving backend.
type Model struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	Name        string        `yaml:"name"`
	APIKey      string        `yaml:"api_key"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// HTTP configures the API server.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Env: "development",
		Model: Model{
			Provider: ProviderOllama,
			Name:     "qwen2.5:3b",
			Timeout:  2 * time.Minute,
		},
		HTTP: HTTP{Addr: ":8080"},
		Log:  Log{Level: "info"},
	}
}

// Load builds the configuration. path names an optional YAML file; when empty
// the CHEFBOT_CONFIG variable is consulted. envFile names an optional dotenv
// file; a missing file is not an error.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	if path == "" {
		path = os.Getenv("CHEFBOT_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch c.Model.Provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("config: unknown model provider %q", c.Model.Provider)
	}
	if c.Model.Timeout < 0 {
		return fmt.Errorf("config: model timeout must be non-negative, got %s", c.Model.Timeout)
	}
	if c.Model.Temperature < 0 {
		return fmt.Errorf("config: temperature must be non-negative, got %v", c.Model.Temperature)
	}
	return nil
}

// Production reports whether the configuration targets production.
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("CHEFBOT_ENV", &cfg.Env)
	str("CHEFBOT_PROVIDER", &cfg.Model.Provider)
	str("CHEFBOT_BASE_URL", &cfg.Model.BaseURL)
	str("CHEFBOT_MODEL", &cfg.Model.Name)
	str("CHEFBOT_API_KEY", &cfg.Model.APIKey)
	str("CHEFBOT_HTTP_ADDR", &cfg.HTTP.Addr)
	str("CHEFBOT_LOG_LEVEL", &cfg.Log.Level)

	if v, ok := lookup("CHEFBOT_TEMPERATURE"); ok && v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("config: CHEFBOT_TEMPERATURE: %w", err)
		}
		cfg.Model.Temperature = float32(t)
	}
	if v, ok := lookup("CHEFBOT_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: CHEFBOT_TIMEOUT: %w", err)
		}
		cfg.Model.Timeout = d
	}
	return nil
}
