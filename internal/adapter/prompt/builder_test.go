package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docgen/internal/domain"
)

func TestDefaultTemplates(t *testing.T) {
	b, err := NewBuilder("", "")
	if err != nil {
		t.Fatalf("embedded templates should load: %v", err)
	}

	entity := domain.CodeEntity{
		Kind:    domain.KindFunction,
		Name:    "add",
		Params:  []domain.Param{{Name: "a", Annotation: "int"}, {Name: "b", Annotation: "int"}},
		Returns: "int",
		Snippet: "def add(a: int, b: int) -> int:\n    return a + b",
	}

	p, err := b.Render(entity)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p, entity.Snippet) {
		t.Error("prompt missing the code snippet")
	}
	if !strings.Contains(p, "add") {
		t.Error("prompt missing the entity name")
	}
}

func TestClassTemplateSelected(t *testing.T) {
	b, err := NewBuilder("", "")
	if err != nil {
		t.Fatal(err)
	}

	p, err := b.Render(domain.CodeEntity{
		Kind:    domain.KindClass,
		Name:    "Calculator",
		Snippet: "class Calculator:\n    pass",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p, "Python class") {
		t.Errorf("class prompt not selected:\n%s", p)
	}
}

func TestCustomTemplateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fn.txt")
	if err := os.WriteFile(path, []byte("Document this:\n{{.Code}}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	b, err := NewBuilder(path, "")
	if err != nil {
		t.Fatal(err)
	}

	p, err := b.Render(domain.CodeEntity{Kind: domain.KindFunction, Name: "f", Snippet: "def f(): pass"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(p, "Document this:") {
		t.Errorf("custom template not used:\n%s", p)
	}
}

func TestMissingCodePlaceholderFailsAtLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.txt")
	if err := os.WriteFile(path, []byte("Only the name: {{.Name}}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewBuilder(path, "")
	if err == nil {
		t.Fatal("expected TemplateError for template without {{.Code}}")
	}
	var te *domain.TemplateError
	if !errors.As(err, &te) {
		t.Fatalf("expected TemplateError, got %T: %v", err, err)
	}
}

func TestUnreadableTemplateFailsAtLoad(t *testing.T) {
	_, err := NewBuilder(filepath.Join(t.TempDir(), "missing.txt"), "")
	if err == nil {
		t.Fatal("expected TemplateError for missing file")
	}
	var te *domain.TemplateError
	if !errors.As(err, &te) {
		t.Fatalf("expected TemplateError, got %T", err)
	}
}
