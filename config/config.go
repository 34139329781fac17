package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the docgen tool.
type Config struct {
	Provider  ProviderConfig  `yaml:"provider"`
	Templates TemplatesConfig `yaml:"templates"`
	Batch     BatchConfig     `yaml:"batch"`
	Cache     CacheConfig     `yaml:"cache"`
	Web       WebConfig       `yaml:"web"`
}

// ProviderConfig selects and tunes the LLM provider.
type ProviderConfig struct {
	Name        string  `yaml:"name"` // "auto", "mock", "deepseek", "openai"
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"` // overrides the provider's default env var
	BaseURL     string  `yaml:"base_url"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	MaxRetries  int     `yaml:"max_retries"`
	BackoffSec  float64 `yaml:"backoff_sec"`
	BackoffCap  float64 `yaml:"backoff_cap_sec"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// TemplatesConfig points at user-editable prompt template files. Empty
// paths select the embedded defaults.
type TemplatesConfig struct {
	Function string `yaml:"function"`
	Class    string `yaml:"class"`
}

// BatchConfig holds directory-walking configuration.
type BatchConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// CacheConfig holds generation-cache configuration.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	MemorySize int  `yaml:"memory_size"`
	TTLMinutes int  `yaml:"ttl_minutes"`
}

// WebConfig holds web server configuration.
type WebConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// DefaultConfig returns the default configuration. The defaults run fully
// offline: the provider resolves to mock unless an API key is present.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:        "auto",
			Model:       "",
			TimeoutSec:  30,
			MaxRetries:  3,
			BackoffSec:  1,
			BackoffCap:  8,
			Temperature: 0.3,
			MaxTokens:   1000,
		},
		Batch: BatchConfig{
			Includes: []string{"**/*.py"},
			Excludes: []string{"**/.git/**", "**/__pycache__/**", "**/venv/**", "**/.venv/**", "**/node_modules/**"},
		},
		Cache: CacheConfig{
			Enabled:    true,
			MemorySize: 256,
			TTLMinutes: 60,
		},
		Web: WebConfig{
			Addr:         ":8080",
			MaxBodyBytes: 16 * 1024 * 1024,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docgen.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docgen.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docgen", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Timeout returns the provider request timeout.
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.TimeoutSec) * time.Second
}

// Backoff returns the base retry delay.
func (p ProviderConfig) Backoff() time.Duration {
	if p.BackoffSec <= 0 {
		return time.Second
	}
	return time.Duration(p.BackoffSec * float64(time.Second))
}

// BackoffLimit returns the retry delay cap.
func (p ProviderConfig) BackoffLimit() time.Duration {
	if p.BackoffCap <= 0 {
		return 8 * time.Second
	}
	return time.Duration(p.BackoffCap * float64(time.Second))
}

// TTL returns the memory cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

// CacheDBPath returns the path to the persistent generation cache.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, ".docgen", "cache.db")
}

// EnsureDocgenDir ensures the .docgen directory exists.
func EnsureDocgenDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docgen"), 0755)
}
