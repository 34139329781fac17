package prompt

import (
	"bytes"
	"embed"
	"os"
	"strings"
	"text/template"

	"docgen/internal/domain"
)

//go:embed templates/*.txt
var defaultTemplates embed.FS

// codeSentinel is rendered through a candidate template to verify it
// actually includes the code snippet.
const codeSentinel = "__DOCGEN_CODE_PLACEHOLDER__"

// Data is what a prompt template is executed against.
type Data struct {
	Name      string
	Signature string
	Kind      string
	Code      string
}

// Builder renders entity prompts from one template per entity kind.
// Templates are loaded and validated once at construction, so a broken
// template fails at startup rather than per call.
type Builder struct {
	function *template.Template
	class    *template.Template
}

// NewBuilder loads the prompt templates. Empty paths select the embedded
// defaults; non-empty paths load user-editable files.
func NewBuilder(functionPath, classPath string) (*Builder, error) {
	fn, err := loadTemplate(functionPath, "templates/function_prompt.txt")
	if err != nil {
		return nil, err
	}
	cls, err := loadTemplate(classPath, "templates/class_prompt.txt")
	if err != nil {
		return nil, err
	}
	return &Builder{function: fn, class: cls}, nil
}

// Render produces the prompt for one entity.
func (b *Builder) Render(entity domain.CodeEntity) (string, error) {
	tmpl := b.function
	if entity.Kind == domain.KindClass {
		tmpl = b.class
	}

	data := Data{
		Name:      entity.Name,
		Signature: entity.Signature(),
		Kind:      string(entity.Kind),
		Code:      entity.Snippet,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", &domain.TemplateError{Template: tmpl.Name(), Msg: err.Error()}
	}
	return buf.String(), nil
}

func loadTemplate(path, embedded string) (*template.Template, error) {
	name := embedded
	var raw []byte
	var err error

	if path != "" {
		name = path
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, &domain.TemplateError{Template: path, Msg: err.Error()}
		}
	} else {
		raw, err = defaultTemplates.ReadFile(embedded)
		if err != nil {
			return nil, &domain.TemplateError{Template: embedded, Msg: err.Error()}
		}
	}

	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return nil, &domain.TemplateError{Template: name, Msg: err.Error()}
	}

	if err := validate(tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// validate executes the template against sentinel data and requires the
// code snippet to appear in the output.
func validate(tmpl *template.Template) error {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, Data{
		Name:      "probe",
		Signature: "def probe()",
		Kind:      "function",
		Code:      codeSentinel,
	})
	if err != nil {
		return &domain.TemplateError{Template: tmpl.Name(), Msg: err.Error()}
	}
	if !strings.Contains(buf.String(), codeSentinel) {
		return &domain.TemplateError{Template: tmpl.Name(), Msg: "missing required {{.Code}} placeholder"}
	}
	return nil
}
