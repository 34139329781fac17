package llm

import (
	"context"
	"strings"

	"docgen/internal/domain"
)

// MockGenerator builds deterministic docstrings from the entity signature
// with no network calls, so the tool stays usable offline. Identical input
// always yields identical output.
type MockGenerator struct{}

// NewMockGenerator creates a mock generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (g *MockGenerator) Provider() string  { return "mock" }
func (g *MockGenerator) ModelName() string { return "" }

// Generate renders a placeholder docstring for the request's entity.
func (g *MockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.GenerationResponse{}, err
	}

	e := req.Entity
	var b strings.Builder

	if e.Kind == domain.KindClass {
		b.WriteString(e.Name + " class.\n")
		if len(e.Bases) > 0 {
			b.WriteString("\nInherits from " + strings.Join(e.Bases, ", ") + ".\n")
		}
		b.WriteString("\nGenerated by docgen in mock mode; replace with a real description.")
		return domain.GenerationResponse{Text: b.String()}, nil
	}

	b.WriteString(e.Name + ": " + e.Signature() + ".\n")

	params := documentableParams(e.Params)
	if len(params) > 0 {
		b.WriteString("\nArgs:\n")
		for _, p := range params {
			b.WriteString("    " + p.Name)
			if p.Annotation != "" {
				b.WriteString(" (" + p.Annotation + ")")
			}
			b.WriteString(": Description of " + p.Name + ".")
			if p.Default != "" {
				b.WriteString(" Defaults to " + p.Default + ".")
			}
			b.WriteString("\n")
		}
	}

	if e.Returns != "" && e.Returns != "None" {
		b.WriteString("\nReturns:\n    " + e.Returns + ": Description of return value.\n")
	}

	b.WriteString("\nGenerated by docgen in mock mode; replace with a real description.")
	return domain.GenerationResponse{Text: b.String()}, nil
}

// documentableParams drops self/cls and bare separators.
func documentableParams(params []domain.Param) []domain.Param {
	var out []domain.Param
	for _, p := range params {
		if p.Name == "self" || p.Name == "cls" || p.Name == "*" || p.Name == "/" {
			continue
		}
		out = append(out, p)
	}
	return out
}
