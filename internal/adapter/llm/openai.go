package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"docgen/internal/domain"
)

const systemPrompt = "You are a professional Python developer who writes excellent docstrings."

// ChatClient talks to an OpenAI-compatible chat completions endpoint.
// DeepSeek and OpenAI share the wire format.
type ChatClient struct {
	provider    string
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewDeepSeekClient creates a client for the DeepSeek chat API.
func NewDeepSeekClient(apiKey, model string, timeout time.Duration) *ChatClient {
	if model == "" {
		model = "deepseek-chat"
	}
	return newChatClient("deepseek", apiKey, model, "https://api.deepseek.com/v1", timeout)
}

// NewOpenAIClient creates a client for the OpenAI chat API.
func NewOpenAIClient(apiKey, model string, timeout time.Duration) *ChatClient {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return newChatClient("openai", apiKey, model, "https://api.openai.com/v1", timeout)
}

// NewCompatibleClient creates a client for any OpenAI-compatible base URL.
func NewCompatibleClient(provider, apiKey, model, baseURL string, timeout time.Duration) *ChatClient {
	return newChatClient(provider, apiKey, model, baseURL, timeout)
}

func newChatClient(provider, apiKey, model, baseURL string, timeout time.Duration) *ChatClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatClient{
		provider:    provider,
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		temperature: 0.3,
		maxTokens:   1000,
		client:      &http.Client{Timeout: timeout},
	}
}

// SetSampling overrides temperature and max tokens.
func (c *ChatClient) SetSampling(temperature float64, maxTokens int) {
	if temperature > 0 {
		c.temperature = temperature
	}
	if maxTokens > 0 {
		c.maxTokens = maxTokens
	}
}

func (c *ChatClient) Provider() string  { return c.provider }
func (c *ChatClient) ModelName() string { return c.model }

// Generate sends the prompt and returns the raw completion text. Timeouts,
// 408/429 and 5xx responses surface as ProviderTransientError; 401/403 as
// ProviderAuthError; other failures are permanent.
func (c *ChatClient) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResponse, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return domain.GenerationResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return domain.GenerationResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return domain.GenerationResponse{}, ctx.Err()
		}
		// Network errors and client timeouts are worth retrying.
		return domain.GenerationResponse{}, &domain.ProviderTransientError{Provider: c.provider, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.GenerationResponse{}, &domain.ProviderTransientError{Provider: c.provider, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return domain.GenerationResponse{}, c.statusError(resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		preview := string(respBody)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return domain.GenerationResponse{}, fmt.Errorf("failed to parse response (body: %s): %w", preview, err)
	}

	if parsed.Error != nil {
		return domain.GenerationResponse{}, fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return domain.GenerationResponse{}, errors.New("API returned no choices")
	}

	return domain.GenerationResponse{Text: parsed.Choices[0].Message.Content}, nil
}

func (c *ChatClient) statusError(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &domain.ProviderAuthError{Provider: c.provider, Status: status}
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout || status >= 500:
		return &domain.ProviderTransientError{Provider: c.provider, Status: status}
	default:
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return fmt.Errorf("API returned status %d: %s", status, preview)
	}
}
