// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"regexp"
	"strings"
)

// bulletPrefix matches one leading list marker: "-", "*", "•", "1." or "1)".
var bulletPrefix = regexp.MustCompile(`^(?:[-*•]|\d{1,3}[.)])\s+`)

// ParseList reads one item per line from model output. Each line is
// trimmed, one bullet prefix and surrounding quotes are removed, and
// lines that are not items (blank, code fences, "...:" preambles) are
// skipped. The text is never evaluated.
func ParseList(text string) []string {
	items := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") || strings.HasSuffix(line, ":") {
			continue
		}
		line = bulletPrefix.ReplaceAllString(line, "")
		line = strings.TrimSpace(strings.Trim(line, "*"))
		line = unquote(line)
		if line == "" {
			continue
		}
		items = append(items, line)
	}
	return items
}

// unquote strips one pair of matching quotes and a trailing comma.
func unquote(s string) string {
	s = strings.TrimSuffix(s, ",")
	for _, q := range []string{`"`, `'`, "`", "“"} {
		closing := q
		if q == "“" {
			closing = "”"
		}
		if len(s) >= len(q)+len(closing) && strings.HasPrefix(s, q) && strings.HasSuffix(s, closing) {
			return strings.TrimSpace(s[len(q) : len(s)-len(closing)])
		}
	}
	return s
}
