package llm

import (
	"regexp"
	"strings"
)

var reFence = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*\n(.*?)\n?```$")

// Sanitize strips markdown code fences and enclosing triple quotes that a
// model may have echoed around the docstring body. The inserter expects
// bare body text.
func Sanitize(text string) string {
	s := strings.TrimSpace(text)

	if m := reFence.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = strings.TrimSpace(s[len(q) : len(s)-len(q)])
			break
		}
	}

	return s
}
