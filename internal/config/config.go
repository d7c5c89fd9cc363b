// Package config holds all MediChain configuration: the HTTP server,
// the LLM provider, storage, auth, and logging. Values come from a
// YAML file with environment-variable overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when no
// --config flag is given.
const DefaultPath = ".medichain/config.yaml"

// Config holds all MediChain configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LLMConfig configures the text-generation capability.
type LLMConfig struct {
	Provider        string `yaml:"provider"` // gemini
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	BaseURL         string `yaml:"base_url"`
	Timeout         string `yaml:"timeout"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

// StorageConfig selects and locates the backing store.
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite, memory
	Path   string `yaml:"path"`
}

// AuthConfig configures session tokens.
type AuthConfig struct {
	TokenSecret string `yaml:"token_secret"`
	TokenTTL    string `yaml:"token_ttl"`
}

// LoggingConfig controls the category file logger.
type LoggingConfig struct {
	DebugMode bool   `yaml:"debug_mode"`
	Dir       string `yaml:"dir"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		LLM: LLMConfig{
			Provider:        "gemini",
			Model:           "gemini-2.0-flash",
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
			Timeout:         "2m",
			MaxOutputTokens: 8192,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   filepath.Join(".medichain", "medichain.db"),
		},
		Auth: AuthConfig{
			TokenTTL: "24h",
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Dir:       ".medichain",
		},
	}
}

// Load reads a config file, overlays defaults for missing fields, and
// applies environment overrides. A missing file yields defaults plus
// overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides lets the environment win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("MEDICHAIN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MEDICHAIN_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("MEDICHAIN_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("MEDICHAIN_TOKEN_SECRET"); v != "" {
		c.Auth.TokenSecret = v
	}
	if v := os.Getenv("MEDICHAIN_DEBUG"); v == "true" || v == "1" {
		c.Logging.DebugMode = true
	}
}

// Validate checks the fields no command can run without. LLM settings
// are checked separately by ValidateLLM so that commands that never
// build a requester (seeding, for one) do not demand an API key.
func (c *Config) Validate() error {
	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("auth token_secret is required (set MEDICHAIN_TOKEN_SECRET)")
	}
	switch c.Storage.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.Storage.Driver)
	}
	if _, err := c.TokenTTL(); err != nil {
		return err
	}
	return nil
}

// ValidateLLM checks the fields needed to issue analysis requests.
func (c *Config) ValidateLLM() error {
	if c.LLM.Provider != "gemini" {
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm api_key is required (set GEMINI_API_KEY)")
	}
	if _, err := c.LLMTimeout(); err != nil {
		return err
	}
	return nil
}

// LLMTimeout parses the configured request timeout.
func (c *Config) LLMTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid llm timeout %q: %w", c.LLM.Timeout, err)
	}
	return d, nil
}

// TokenTTL parses the configured session lifetime.
func (c *Config) TokenTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid token ttl %q: %w", c.Auth.TokenTTL, err)
	}
	return d, nil
}
