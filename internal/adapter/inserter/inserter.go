package inserter

import (
	"sort"
	"strings"

	"docgen/internal/domain"
)

// Insert returns source with docstring spliced in as the first statement of
// entity's body: a triple-quoted block indented to the body indentation,
// placed immediately after the signature's closing line. An existing
// first-statement docstring is replaced in place. All bytes outside the
// modified span are preserved exactly.
func Insert(source string, entity domain.CodeEntity, docstring string) (string, error) {
	if entity.BodyStartLine <= entity.SigEndLine {
		// Inline body, e.g. "def f(): pass". A docstring needs its own line.
		return "", &domain.InsertionError{Entity: entity.ID(), Msg: "definition body is on the signature line"}
	}

	lines := strings.Split(source, "\n")
	if entity.SigEndLine > len(lines) || entity.BodyStartLine > len(lines)+1 {
		return "", &domain.InsertionError{Entity: entity.ID(), Msg: "entity span exceeds source"}
	}

	block := Format(docstring, entity.BodyIndent)
	blockLines := strings.Split(block, "\n")

	var out []string
	if entity.DocStartLine > 0 {
		// Replace the existing docstring span.
		if entity.DocEndLine > len(lines) || entity.DocStartLine > entity.DocEndLine {
			return "", &domain.InsertionError{Entity: entity.ID(), Msg: "stale docstring span"}
		}
		out = append(out, lines[:entity.DocStartLine-1]...)
		out = append(out, blockLines...)
		out = append(out, lines[entity.DocEndLine:]...)
	} else {
		// Insert before the first body line.
		out = append(out, lines[:entity.BodyStartLine-1]...)
		out = append(out, blockLines...)
		out = append(out, lines[entity.BodyStartLine-1:]...)
	}

	return strings.Join(out, "\n"), nil
}

// InsertAll applies results bottom-to-top (descending StartLine) so earlier
// line numbers stay valid, and reports the entity IDs it had to skip.
// Results already marked skipped pass through untouched.
func InsertAll(source string, results []domain.DocstringResult) (string, []string) {
	ordered := make([]domain.DocstringResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Entity.StartLine > ordered[j].Entity.StartLine
	})

	var skipped []string
	text := source
	for _, r := range ordered {
		if r.Skipped() || r.Docstring == "" {
			continue
		}
		patched, err := Insert(text, r.Entity, r.Docstring)
		if err != nil {
			skipped = append(skipped, r.Entity.ID())
			continue
		}
		text = patched
	}
	return text, skipped
}

// Format renders docstring body text as a triple-quoted block at the given
// indentation. Single-line text stays on one line; multi-line text gets the
// closing quotes on their own line.
func Format(docstring string, indent int) string {
	pad := strings.Repeat(" ", indent)
	text := strings.TrimRight(docstring, "\n")

	if !strings.Contains(text, "\n") {
		return pad + `"""` + text + `"""`
	}

	var b strings.Builder
	b.WriteString(pad + `"""`)
	for i, line := range strings.Split(text, "\n") {
		if i == 0 {
			b.WriteString(line)
			continue
		}
		b.WriteString("\n")
		if line != "" {
			b.WriteString(pad + line)
		}
	}
	b.WriteString("\n" + pad + `"""`)
	return b.String()
}
