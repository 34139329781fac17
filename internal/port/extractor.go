package port

import (
	"context"

	"docgen/internal/domain"
)

// Extractor parses source text into an ordered list of code entities.
type Extractor interface {
	// Extract returns the entities of source in document order.
	Extract(ctx context.Context, path, source string) (*domain.SourceUnit, error)

	// Analyze returns size metrics for source.
	Analyze(ctx context.Context, source string) (domain.Metrics, error)
}
