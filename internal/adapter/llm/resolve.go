package llm

import (
	"fmt"
	"os"
	"time"

	"docgen/internal/port"
)

// Options selects and tunes a provider. Resolution happens once at startup;
// nothing reads the environment during generation.
type Options struct {
	Provider    string // "auto", "mock", "deepseek", "openai"
	Model       string
	APIKeyEnv   string // overrides the provider's default env var
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	Backoff     time.Duration
	BackoffCap  time.Duration
	Temperature float64
	MaxTokens   int
}

const (
	deepseekKeyEnv = "DEEPSEEK_API_KEY"
	openaiKeyEnv   = "OPENAI_API_KEY"
)

// Resolve builds the configured generator, wrapped in retry middleware for
// network providers. A provider whose API key is missing falls back to mock
// so the tool stays usable offline; the returned note says why.
func Resolve(opts Options) (port.Generator, string, error) {
	provider := opts.Provider
	if provider == "" {
		provider = "auto"
	}

	switch provider {
	case "mock":
		return NewMockGenerator(), "mock mode selected", nil

	case "auto":
		if key := apiKey(opts.APIKeyEnv, deepseekKeyEnv); key != "" {
			return wrap(NewDeepSeekClient(key, opts.Model, opts.Timeout), opts), "using deepseek (" + deepseekKeyEnv + " present)", nil
		}
		if key := apiKey(opts.APIKeyEnv, openaiKeyEnv); key != "" {
			return wrap(NewOpenAIClient(key, opts.Model, opts.Timeout), opts), "using openai (" + openaiKeyEnv + " present)", nil
		}
		return NewMockGenerator(), "no API key found, mock mode selected", nil

	case "deepseek":
		key := apiKey(opts.APIKeyEnv, deepseekKeyEnv)
		if key == "" {
			return NewMockGenerator(), deepseekKeyEnv + " not set, falling back to mock mode", nil
		}
		return wrap(NewDeepSeekClient(key, opts.Model, opts.Timeout), opts), "using deepseek", nil

	case "openai":
		key := apiKey(opts.APIKeyEnv, openaiKeyEnv)
		if key == "" {
			return NewMockGenerator(), openaiKeyEnv + " not set, falling back to mock mode", nil
		}
		return wrap(NewOpenAIClient(key, opts.Model, opts.Timeout), opts), "using openai", nil

	default:
		return nil, "", fmt.Errorf("unknown provider: %s (supported: mock, deepseek, openai, auto)", provider)
	}
}

func apiKey(override, fallback string) string {
	env := fallback
	if override != "" {
		env = override
	}
	return os.Getenv(env)
}

func wrap(client *ChatClient, opts Options) port.Generator {
	if opts.BaseURL != "" {
		client.baseURL = opts.BaseURL
	}
	client.SetSampling(opts.Temperature, opts.MaxTokens)

	retries := opts.MaxRetries
	if retries == 0 {
		retries = 3
	}
	return WithRetry(client, retries, opts.Backoff, opts.BackoffCap)
}
