package extractor

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"docgen/internal/domain"
)

// PythonExtractor parses Python source with tree-sitter and yields one
// entity per top-level function or class. Nested definitions are not
// extracted; methods travel inside their class snippet.
type PythonExtractor struct{}

// NewPythonExtractor creates a new Python extractor.
func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{}
}

// Language returns the language this extractor handles.
func (x *PythonExtractor) Language() string {
	return "python"
}

// Extract parses source and returns its top-level entities in document
// order. Source containing syntax errors fails with a ParseError naming
// the first offending line.
func (x *PythonExtractor) Extract(ctx context.Context, path, source string) (*domain.SourceUnit, error) {
	root, tree, err := parse(ctx, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	content := []byte(source)
	if root.HasError() {
		return nil, &domain.ParseError{
			Path: path,
			Line: firstErrorLine(root),
			Msg:  "invalid Python syntax",
		}
	}

	lines := strings.Split(source, "\n")
	unit := &domain.SourceUnit{Path: path, Source: source}

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_definition":
			if e, ok := x.processFunction(child, content, lines, nil, child); ok {
				unit.Entities = append(unit.Entities, e)
			}
		case "class_definition":
			if e, ok := x.processClass(child, content, lines, nil, child); ok {
				unit.Entities = append(unit.Entities, e)
			}
		case "decorated_definition":
			decorators, def := x.splitDecorated(child, content)
			if def == nil {
				continue
			}
			switch def.Type() {
			case "function_definition":
				if e, ok := x.processFunction(def, content, lines, decorators, child); ok {
					unit.Entities = append(unit.Entities, e)
				}
			case "class_definition":
				if e, ok := x.processClass(def, content, lines, decorators, child); ok {
					unit.Entities = append(unit.Entities, e)
				}
			}
		}
	}

	return unit, nil
}

// Analyze counts functions, classes and imports at every nesting level,
// plus raw size figures.
func (x *PythonExtractor) Analyze(ctx context.Context, source string) (domain.Metrics, error) {
	root, tree, err := parse(ctx, source)
	if err != nil {
		return domain.Metrics{}, err
	}
	defer tree.Close()

	m := domain.Metrics{
		Lines:      len(strings.Split(source, "\n")),
		Characters: len(source),
	}
	countNodes(root, &m)
	return m, nil
}

func parse(ctx context.Context, source string) (*sitter.Node, *sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, []byte(source))
	if err != nil {
		return nil, nil, err
	}
	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, nil, &domain.ParseError{Line: 1, Msg: "parser returned no tree"}
	}
	return root, tree, nil
}

func countNodes(node *sitter.Node, m *domain.Metrics) {
	switch node.Type() {
	case "function_definition":
		m.Functions++
	case "class_definition":
		m.Classes++
	case "import_statement", "import_from_statement":
		m.Imports++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		countNodes(node.Child(i), m)
	}
}

// firstErrorLine walks the tree toward the first ERROR or missing node.
func firstErrorLine(node *sitter.Node) int {
	if node.Type() == "ERROR" || node.IsMissing() {
		return int(node.StartPoint().Row + 1)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsMissing() {
			return firstErrorLine(child)
		}
	}
	return int(node.StartPoint().Row + 1)
}

// splitDecorated separates the decorator list from the wrapped definition.
func (x *PythonExtractor) splitDecorated(node *sitter.Node, content []byte) ([]string, *sitter.Node) {
	var decorators []string
	var def *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorator":
			decorators = append(decorators, nodeText(child, content))
		case "function_definition", "class_definition":
			def = child
		}
	}
	return decorators, def
}

// processFunction extracts one function definition. The outer node covers
// decorators when the definition is wrapped.
func (x *PythonExtractor) processFunction(node *sitter.Node, content []byte, lines []string, decorators []string, outer *sitter.Node) (domain.CodeEntity, bool) {
	e := domain.CodeEntity{
		Kind:       domain.KindFunction,
		Decorators: decorators,
	}

	var body *sitter.Node
	sigEndRow := int(node.StartPoint().Row)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "async":
			e.Async = true
		case "identifier":
			e.Name = nodeText(child, content)
		case "parameters":
			e.Params = x.extractParams(child, content)
			sigEndRow = int(child.EndPoint().Row)
		case "type":
			e.Returns = nodeText(child, content)
			sigEndRow = int(child.EndPoint().Row)
		case ":":
			sigEndRow = int(child.EndPoint().Row)
		case "block":
			body = child
		}
	}

	if e.Name == "" || body == nil {
		return e, false
	}

	x.fillSpans(&e, node, outer, body, content, lines)
	e.SigEndLine = sigEndRow + 1
	return e, true
}

// processClass extracts one class definition.
func (x *PythonExtractor) processClass(node *sitter.Node, content []byte, lines []string, decorators []string, outer *sitter.Node) (domain.CodeEntity, bool) {
	e := domain.CodeEntity{
		Kind:       domain.KindClass,
		Decorators: decorators,
	}

	var body *sitter.Node
	sigEndRow := int(node.StartPoint().Row)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			e.Name = nodeText(child, content)
			sigEndRow = int(child.EndPoint().Row)
		case "argument_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				arg := child.Child(j)
				switch arg.Type() {
				case "identifier", "attribute", "keyword_argument", "subscript":
					e.Bases = append(e.Bases, nodeText(arg, content))
				}
			}
			sigEndRow = int(child.EndPoint().Row)
		case ":":
			sigEndRow = int(child.EndPoint().Row)
		case "block":
			body = child
		}
	}

	if e.Name == "" || body == nil {
		return e, false
	}

	x.fillSpans(&e, node, outer, body, content, lines)
	e.SigEndLine = sigEndRow + 1
	return e, true
}

// fillSpans records line offsets, body indentation, the existing docstring
// and the snippet text.
func (x *PythonExtractor) fillSpans(e *domain.CodeEntity, node, outer, body *sitter.Node, content []byte, lines []string) {
	e.StartLine = int(outer.StartPoint().Row + 1)
	e.EndLine = int(node.EndPoint().Row + 1)
	e.BodyStartLine = int(body.StartPoint().Row + 1)
	e.BodyIndent = int(body.StartPoint().Column)
	e.Snippet = extractLines(lines, e.StartLine, e.EndLine)

	if body.ChildCount() > 0 {
		first := body.Child(0)
		if first.Type() == "expression_statement" && first.ChildCount() > 0 {
			str := first.Child(0)
			if str.Type() == "string" {
				e.Docstring = stringContent(str, content)
				e.DocStartLine = int(first.StartPoint().Row + 1)
				e.DocEndLine = int(first.EndPoint().Row + 1)
			}
		}
	}
}

// extractParams walks a parameters node. Default expressions containing
// commas or parens stay intact because spans come from the tree, not from
// splitting text.
func (x *PythonExtractor) extractParams(node *sitter.Node, content []byte) []domain.Param {
	var params []domain.Param

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			params = append(params, domain.Param{Name: nodeText(child, content)})
		case "typed_parameter":
			p := domain.Param{}
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
					p.Name = nodeText(gc, content)
				case "type":
					p.Annotation = nodeText(gc, content)
				}
			}
			params = append(params, p)
		case "default_parameter", "typed_default_parameter":
			p := domain.Param{}
			sawEq := false
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "identifier":
					if p.Name == "" {
						p.Name = nodeText(gc, content)
					} else if sawEq {
						p.Default = nodeText(gc, content)
					}
				case "type":
					p.Annotation = nodeText(gc, content)
				case "=":
					sawEq = true
				default:
					if sawEq && gc.IsNamed() {
						p.Default = nodeText(gc, content)
					}
				}
			}
			params = append(params, p)
		case "list_splat_pattern", "dictionary_splat_pattern":
			params = append(params, domain.Param{Name: nodeText(child, content)})
		case "keyword_separator", "positional_separator":
			params = append(params, domain.Param{Name: nodeText(child, content)})
		}
	}

	return params
}

func nodeText(node *sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}

// stringContent strips quotes and string prefixes from a string node.
func stringContent(node *sitter.Node, content []byte) string {
	raw := nodeText(node, content)
	raw = strings.TrimLeft(raw, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2*len(q) {
			return raw[len(q) : len(raw)-len(q)]
		}
	}
	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2 {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}

// extractLines returns lines start..end inclusive (1-based).
func extractLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
