// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/thesis-engine/internal/logging"
)

// DefaultMaxPages bounds how many pages are read from one document.
const DefaultMaxPages = 50

// ErrNoText reports that none of the given documents yielded text.
var ErrNoText = errors.New("no text extracted from any document")

// Extractor reads plain text from PDF documents.
type Extractor struct {
	// MaxPages per document. Zero uses DefaultMaxPages.
	MaxPages int
	Log      logrus.FieldLogger
}

// Extract reads every path and returns one segment per readable file.
// Unreadable files are logged and skipped; the call fails only when no
// file produced text.
func (e *Extractor) Extract(ctx context.Context, paths ...string) ([]Segment, error) {
	log := logging.OrDiscard(e.Log)

	var segs []Segment
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return segs, err
		}
		text, err := e.extractFile(p)
		if err != nil {
			log.WithError(err).WithField("file", p).Warn("skipping unreadable document")
			continue
		}
		segs = append(segs, Segment{Document: filepath.Base(p), Text: text})
	}
	if len(segs) == 0 && len(paths) > 0 {
		return nil, ErrNoText
	}
	return segs, nil
}

// ExtractReader reads a PDF held in memory, as received from an upload.
func (e *Extractor) ExtractReader(name string, r io.ReaderAt, size int64) (Segment, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return Segment{}, fmt.Errorf("opening %s: %w", name, err)
	}
	text, err := e.pages(reader)
	if err != nil {
		return Segment{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return Segment{Document: name, Text: text}, nil
}

func (e *Extractor) extractFile(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()
	return e.pages(reader)
}

// pages concatenates the plain text of the first MaxPages pages. The pdf
// library panics on some malformed content streams, so the walk recovers.
func (e *Extractor) pages(r *pdf.Reader) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	limit := e.MaxPages
	if limit <= 0 {
		limit = DefaultMaxPages
	}
	n := r.NumPage()
	if n > limit {
		n = limit
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	out := b.String()
	if strings.TrimSpace(out) == "" {
		return "", ErrNoText
	}
	return out, nil
}
