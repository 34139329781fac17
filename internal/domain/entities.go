package domain

// EntityKind distinguishes functions from classes.
type EntityKind string

const (
	KindFunction EntityKind = "function"
	KindClass    EntityKind = "class"
)

// Param is one parameter of a function signature.
type Param struct {
	Name       string `json:"name"`
	Annotation string `json:"annotation,omitempty"`
	Default    string `json:"default,omitempty"`
}

// CodeEntity is one top-level function or class found in a source unit.
// Line numbers are 1-based and refer to the text the entity was extracted
// from; they become stale once the text is patched, so insertions are
// applied bottom-to-top.
type CodeEntity struct {
	Kind       EntityKind `json:"kind"`
	Name       string     `json:"name"`
	Params     []Param    `json:"params,omitempty"`
	Returns    string     `json:"returns,omitempty"`
	Bases      []string   `json:"bases,omitempty"`
	Decorators []string   `json:"decorators,omitempty"`
	Async      bool       `json:"async,omitempty"`

	StartLine     int `json:"start_line"`
	EndLine       int `json:"end_line"`
	SigEndLine    int `json:"sig_end_line"`
	BodyStartLine int `json:"body_start_line"`
	BodyIndent    int `json:"body_indent"`

	// Existing docstring, if the first body statement is a string literal.
	Docstring    string `json:"docstring,omitempty"`
	DocStartLine int    `json:"doc_start_line,omitempty"`
	DocEndLine   int    `json:"doc_end_line,omitempty"`

	// Snippet is the full definition text (decorators included).
	Snippet string `json:"snippet"`
}

// ID identifies an entity within its file, e.g. "function:add".
func (e CodeEntity) ID() string {
	return string(e.Kind) + ":" + e.Name
}

// Signature renders a one-line Python signature for the entity.
func (e CodeEntity) Signature() string {
	if e.Kind == KindClass {
		s := "class " + e.Name
		if len(e.Bases) > 0 {
			s += "("
			for i, b := range e.Bases {
				if i > 0 {
					s += ", "
				}
				s += b
			}
			s += ")"
		}
		return s
	}

	s := "def " + e.Name + "("
	for i, p := range e.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Name
		if p.Annotation != "" {
			s += ": " + p.Annotation
		}
		if p.Default != "" {
			if p.Annotation != "" {
				s += " = " + p.Default
			} else {
				s += "=" + p.Default
			}
		}
	}
	s += ")"
	if e.Returns != "" {
		s += " -> " + e.Returns
	}
	if e.Async {
		s = "async " + s
	}
	return s
}

// SourceUnit is one parsed input file. It is never mutated; insertion
// produces a new source text.
type SourceUnit struct {
	Path     string       `json:"path"`
	Source   string       `json:"-"`
	Entities []CodeEntity `json:"entities"`
}

// Metrics are simple size counts for a source unit.
type Metrics struct {
	Functions  int `json:"functions"`
	Classes    int `json:"classes"`
	Imports    int `json:"imports"`
	Lines      int `json:"lines"`
	Characters int `json:"characters"`
}

// GenerationRequest is the prompt handed to a generator. Entity rides
// along so offline generators can build text from the signature alone.
type GenerationRequest struct {
	Prompt string
	Kind   EntityKind
	Entity CodeEntity
}

// GenerationResponse is the raw text a generator returned.
type GenerationResponse struct {
	Text string
}

// DocstringResult ties a generated docstring back to its entity.
type DocstringResult struct {
	Entity    CodeEntity `json:"entity"`
	Docstring string     `json:"docstring,omitempty"`
	Provider  string     `json:"provider"`
	Model     string     `json:"model,omitempty"`
	Cached    bool       `json:"cached,omitempty"`
	Err       string     `json:"error,omitempty"`
}

// Skipped reports whether generation failed for this entity.
func (r DocstringResult) Skipped() bool {
	return r.Err != ""
}
