package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docgen/internal/domain"
)

func extract(t *testing.T, source string) *domain.SourceUnit {
	t.Helper()
	unit, err := NewPythonExtractor().Extract(context.Background(), "test.py", source)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	return unit
}

func TestExtractCounts(t *testing.T) {
	source := `import os

def first(a, b):
    return a + b

class Alpha:
    def method(self):
        pass

def second():
    pass

class Beta(Alpha):
    pass
`
	unit := extract(t, source)

	var funcs, classes int
	for _, e := range unit.Entities {
		switch e.Kind {
		case domain.KindFunction:
			funcs++
		case domain.KindClass:
			classes++
		}
	}
	if funcs != 2 {
		t.Errorf("expected 2 functions, got %d", funcs)
	}
	if classes != 2 {
		t.Errorf("expected 2 classes, got %d", classes)
	}

	// Document order.
	want := []string{"first", "Alpha", "second", "Beta"}
	if len(unit.Entities) != len(want) {
		t.Fatalf("expected %d entities, got %d", len(want), len(unit.Entities))
	}
	for i, name := range want {
		if unit.Entities[i].Name != name {
			t.Errorf("entity %d: expected %s, got %s", i, name, unit.Entities[i].Name)
		}
	}
}

func TestExtractSkipsNestedDefinitions(t *testing.T) {
	source := `def outer():
    def inner():
        pass
    class InnerClass:
        pass
    return inner
`
	unit := extract(t, source)

	if len(unit.Entities) != 1 {
		t.Fatalf("expected only the outer function, got %d entities", len(unit.Entities))
	}
	if unit.Entities[0].Name != "outer" {
		t.Errorf("expected outer, got %s", unit.Entities[0].Name)
	}
}

func TestExtractSignatureFields(t *testing.T) {
	source := `def process(data: list, filter_key: str = None, *args, limit=compute(1, 2), **kwargs) -> list:
    return data
`
	unit := extract(t, source)
	if len(unit.Entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(unit.Entities))
	}
	e := unit.Entities[0]

	if e.Name != "process" {
		t.Errorf("name: got %s", e.Name)
	}
	if e.Returns != "list" {
		t.Errorf("returns: got %q", e.Returns)
	}

	wantParams := []domain.Param{
		{Name: "data", Annotation: "list"},
		{Name: "filter_key", Annotation: "str", Default: "None"},
		{Name: "*args"},
		{Name: "limit", Default: "compute(1, 2)"},
		{Name: "**kwargs"},
	}
	if len(e.Params) != len(wantParams) {
		t.Fatalf("expected %d params, got %d: %+v", len(wantParams), len(e.Params), e.Params)
	}
	for i, want := range wantParams {
		got := e.Params[i]
		if got.Name != want.Name || got.Annotation != want.Annotation || got.Default != want.Default {
			t.Errorf("param %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestExtractMultiLineSignature(t *testing.T) {
	source := `def configure(
    host: str,
    port: int = 8080,
) -> dict:
    return {}
`
	unit := extract(t, source)
	if len(unit.Entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(unit.Entities))
	}
	e := unit.Entities[0]

	if e.StartLine != 1 {
		t.Errorf("start line: got %d", e.StartLine)
	}
	if e.SigEndLine != 4 {
		t.Errorf("signature end line: got %d, want 4", e.SigEndLine)
	}
	if e.BodyStartLine != 5 {
		t.Errorf("body start line: got %d, want 5", e.BodyStartLine)
	}
	if len(e.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(e.Params))
	}
}

func TestExtractDecorated(t *testing.T) {
	source := `@app.route("/users")
@cached
def list_users():
    pass
`
	unit := extract(t, source)
	if len(unit.Entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(unit.Entities))
	}
	e := unit.Entities[0]

	if len(e.Decorators) != 2 {
		t.Fatalf("expected 2 decorators, got %v", e.Decorators)
	}
	if e.Decorators[0] != `@app.route("/users")` {
		t.Errorf("decorator 0: got %q", e.Decorators[0])
	}
	if e.StartLine != 1 {
		t.Errorf("start line should cover decorators, got %d", e.StartLine)
	}
	if !strings.HasPrefix(e.Snippet, "@app.route") {
		t.Errorf("snippet should include decorators, got %q", e.Snippet)
	}
}

func TestExtractExistingDocstring(t *testing.T) {
	source := `def documented():
    """Already described.

    More detail.
    """
    return 1

def bare():
    return 2
`
	unit := extract(t, source)
	if len(unit.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(unit.Entities))
	}

	doc := unit.Entities[0]
	if doc.Docstring == "" {
		t.Fatal("expected existing docstring to be detected")
	}
	if !strings.HasPrefix(doc.Docstring, "Already described.") {
		t.Errorf("docstring content: got %q", doc.Docstring)
	}
	if doc.DocStartLine != 2 || doc.DocEndLine != 5 {
		t.Errorf("docstring span: got %d-%d, want 2-5", doc.DocStartLine, doc.DocEndLine)
	}

	if unit.Entities[1].Docstring != "" {
		t.Errorf("bare function should have no docstring, got %q", unit.Entities[1].Docstring)
	}
}

func TestExtractClassFields(t *testing.T) {
	source := `class Calculator(Base, metaclass=Meta):
    def add(self, a, b):
        return a + b
`
	unit := extract(t, source)
	if len(unit.Entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(unit.Entities))
	}
	e := unit.Entities[0]

	if e.Kind != domain.KindClass {
		t.Errorf("kind: got %s", e.Kind)
	}
	if len(e.Bases) != 2 {
		t.Errorf("bases: got %v", e.Bases)
	}
	if e.BodyIndent != 4 {
		t.Errorf("body indent: got %d", e.BodyIndent)
	}
}

func TestExtractSyntaxError(t *testing.T) {
	source := "def broken(:\n    pass\n"
	_, err := NewPythonExtractor().Extract(context.Background(), "bad.py", source)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
	if pe.Line < 1 {
		t.Errorf("parse error should name a line, got %d", pe.Line)
	}
}

func TestAnalyzeMetrics(t *testing.T) {
	source := `import os
from sys import path

def a():
    def nested():
        pass

class B:
    def method(self):
        pass
`
	m, err := NewPythonExtractor().Analyze(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if m.Functions != 3 {
		t.Errorf("functions: got %d, want 3 (nested and methods count)", m.Functions)
	}
	if m.Classes != 1 {
		t.Errorf("classes: got %d", m.Classes)
	}
	if m.Imports != 2 {
		t.Errorf("imports: got %d", m.Imports)
	}
	if m.Characters != len(source) {
		t.Errorf("characters: got %d, want %d", m.Characters, len(source))
	}
}

func TestSignatureRendering(t *testing.T) {
	source := `async def fetch(url: str, timeout: int = 30) -> bytes:
    pass
`
	unit := extract(t, source)
	got := unit.Entities[0].Signature()
	want := "async def fetch(url: str, timeout: int = 30) -> bytes"
	if got != want {
		t.Errorf("signature: got %q, want %q", got, want)
	}
}
