// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"strings"

	"github.com/pdiddy/thesis-engine/internal/session"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Manuscript assembles the title and every drafted chapter into one
// markup document ready for export. Chapters with no text are omitted.
func Manuscript(s *session.Session) string {
	var b strings.Builder
	if s.Title != "" {
		b.WriteString("# ")
		b.WriteString(strings.ToUpper(s.Title))
		b.WriteString("\n")
	}
	for _, ch := range types.Chapters {
		text := strings.TrimSpace(s.Chapters[ch])
		if text == "" {
			continue
		}
		b.WriteString("\n# ")
		b.WriteString(ch.Name())
		b.WriteString("\n\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

// ChapterDocument renders one chapter with its heading, for per-chapter
// downloads.
func ChapterDocument(s *session.Session, ch types.Chapter) string {
	return "# " + ch.Name() + "\n\n" + strings.TrimSpace(s.Chapters[ch]) + "\n"
}
