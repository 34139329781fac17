package port

import (
	"context"

	"docgen/internal/domain"
)

// Generator produces docstring text from a prompt.
type Generator interface {
	// Generate sends the prompt and returns the raw generated text.
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResponse, error)

	// Provider returns the provider name ("mock", "deepseek", "openai").
	Provider() string

	// ModelName returns the model identifier, or "" for mock.
	ModelName() string
}
