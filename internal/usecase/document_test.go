package usecase

import (
	"context"
	"strings"
	"testing"

	"docgen/internal/adapter/cache"
	"docgen/internal/adapter/extractor"
	"docgen/internal/adapter/llm"
	"docgen/internal/adapter/prompt"
	"docgen/internal/domain"
	"docgen/internal/port"
)

func newTestPipeline(t *testing.T, gen port.Generator, c port.Cache) *DocumentUseCase {
	t.Helper()
	prompts, err := prompt.NewBuilder("", "")
	if err != nil {
		t.Fatal(err)
	}
	return NewDocumentUseCase(extractor.NewPythonExtractor(), prompts, gen, c)
}

// failNGenerator fails the first n calls with a transient error, then
// delegates to the mock generator.
type failNGenerator struct {
	mock  *llm.MockGenerator
	fails int
	calls int
}

func (g *failNGenerator) Provider() string  { return "mock" }
func (g *failNGenerator) ModelName() string { return "" }

func (g *failNGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResponse, error) {
	g.calls++
	if g.calls <= g.fails {
		return domain.GenerationResponse{}, &domain.ProviderTransientError{Provider: "mock", Status: 503}
	}
	return g.mock.Generate(ctx, req)
}

const sampleSource = `def add(a: int, b: int) -> int:
    return a + b


class Calculator:
    def __init__(self):
        self.total = 0
`

func TestDocumentInsertsAtLineTwo(t *testing.T) {
	uc := newTestPipeline(t, llm.NewMockGenerator(), nil)

	res, err := uc.Document(context.Background(), "sample.py", sampleSource, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Generated != 2 || res.Skipped != 0 {
		t.Fatalf("generated=%d skipped=%d", res.Generated, res.Skipped)
	}

	lines := strings.Split(res.NewSource, "\n")
	if !strings.Contains(lines[1], `"""`) {
		t.Errorf("line 2 should open the docstring, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[1], "    ") {
		t.Errorf("docstring not indented to the body: %q", lines[1])
	}
	if !strings.Contains(res.NewSource, "return a + b") {
		t.Error("function body lost during insertion")
	}
}

func TestDocumentIdempotent(t *testing.T) {
	uc := newTestPipeline(t, llm.NewMockGenerator(), nil)
	ctx := context.Background()

	first, err := uc.Document(ctx, "sample.py", sampleSource, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := uc.Document(ctx, "sample.py", first.NewSource, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if second.NewSource != first.NewSource {
		t.Errorf("second run changed the output:\nfirst:\n%s\nsecond:\n%s", first.NewSource, second.NewSource)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	// Re-extraction of the patched source must find the generated
	// docstrings attached to the right entities.
	uc := newTestPipeline(t, llm.NewMockGenerator(), nil)
	ctx := context.Background()

	res, err := uc.Document(ctx, "sample.py", sampleSource, Options{})
	if err != nil {
		t.Fatal(err)
	}

	unit, err := extractor.NewPythonExtractor().Extract(ctx, "sample.py", res.NewSource)
	if err != nil {
		t.Fatal(err)
	}
	if len(unit.Entities) != 2 {
		t.Fatalf("re-extraction found %d entities", len(unit.Entities))
	}
	for _, e := range unit.Entities {
		if e.Docstring == "" {
			t.Errorf("%s has no docstring after round trip", e.ID())
		}
	}
}

func TestDocumentOffsetStability(t *testing.T) {
	// Three functions in one file: each docstring must land inside its
	// own body even though insertions shift later line numbers.
	source := `def first():
    return 1


def second():
    return 2


def third():
    return 3
`
	uc := newTestPipeline(t, llm.NewMockGenerator(), nil)

	res, err := uc.Document(context.Background(), "multi.py", source, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Generated != 3 {
		t.Fatalf("generated=%d", res.Generated)
	}

	unit, err := extractor.NewPythonExtractor().Extract(context.Background(), "multi.py", res.NewSource)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range unit.Entities {
		if !strings.Contains(e.Docstring, e.Name) {
			t.Errorf("%s got the wrong docstring: %q", e.ID(), e.Docstring)
		}
	}
}

func TestDocumentFiltersByKind(t *testing.T) {
	uc := newTestPipeline(t, llm.NewMockGenerator(), nil)
	ctx := context.Background()

	res, err := uc.Document(ctx, "sample.py", sampleSource, Options{FunctionsOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 1 || res.Results[0].Entity.Kind != domain.KindFunction {
		t.Errorf("functions-only processed %d results", len(res.Results))
	}

	res, err = uc.Document(ctx, "sample.py", sampleSource, Options{ClassesOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 1 || res.Results[0].Entity.Kind != domain.KindClass {
		t.Errorf("classes-only processed %d results", len(res.Results))
	}
}

func TestDocumentSelectByID(t *testing.T) {
	uc := newTestPipeline(t, llm.NewMockGenerator(), nil)

	res, err := uc.Document(context.Background(), "sample.py", sampleSource, Options{
		SelectIDs: []string{"class:Calculator"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 1 || res.Results[0].Entity.Name != "Calculator" {
		t.Fatalf("selection processed %+v", res.Results)
	}
}

func TestDocumentEntityFailureDoesNotAbortFile(t *testing.T) {
	// The first entity's generation fails; the second must still get
	// documented.
	gen := &failNGenerator{mock: llm.NewMockGenerator(), fails: 1}
	uc := newTestPipeline(t, gen, nil)

	res, err := uc.Document(context.Background(), "sample.py", sampleSource, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped=%d", res.Skipped)
	}
	if res.Generated != 1 {
		t.Errorf("generated=%d", res.Generated)
	}
	if res.Results[0].Err == "" {
		t.Error("failed entity should carry its error")
	}
	if !strings.Contains(res.NewSource, `"""`) {
		t.Error("surviving entity was not documented")
	}
}

func TestDocumentCacheHit(t *testing.T) {
	c := cache.NewMemoryCache(16, 0)
	uc := newTestPipeline(t, llm.NewMockGenerator(), c)
	ctx := context.Background()

	first, err := uc.Document(ctx, "sample.py", sampleSource, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached != 0 {
		t.Fatalf("cold run reported %d cache hits", first.Cached)
	}

	second, err := uc.Document(ctx, "sample.py", sampleSource, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if second.Cached != 2 {
		t.Errorf("warm run cached=%d", second.Cached)
	}
	if second.NewSource != first.NewSource {
		t.Error("cached output differs from generated output")
	}
}

func TestDocumentSingleLineDefinitionSkipped(t *testing.T) {
	source := "def noop(): pass\n"
	uc := newTestPipeline(t, llm.NewMockGenerator(), nil)

	res, err := uc.Document(context.Background(), "inline.py", source, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Generated != 0 || res.Skipped != 1 {
		t.Errorf("generated=%d skipped=%d", res.Generated, res.Skipped)
	}
	if res.NewSource != source {
		t.Error("source changed despite insertion failure")
	}
	if res.Results[0].Err != "docstring could not be inserted" {
		t.Errorf("err: %q", res.Results[0].Err)
	}
}

func TestDocumentParseErrorSurfaces(t *testing.T) {
	uc := newTestPipeline(t, llm.NewMockGenerator(), nil)

	_, err := uc.Document(context.Background(), "bad.py", "def broken(:\n", Options{})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !IsParseError(err) {
		t.Errorf("IsParseError = false for %v", err)
	}
}

func TestAnalyzeReturnsMetrics(t *testing.T) {
	uc := newTestPipeline(t, llm.NewMockGenerator(), nil)

	unit, metrics, err := uc.Analyze(context.Background(), "sample.py", sampleSource)
	if err != nil {
		t.Fatal(err)
	}
	if len(unit.Entities) != 2 {
		t.Errorf("entities=%d", len(unit.Entities))
	}
	// __init__ counts too: Analyze walks all depths.
	if metrics.Functions != 2 || metrics.Classes != 1 {
		t.Errorf("metrics=%+v", metrics)
	}
}
