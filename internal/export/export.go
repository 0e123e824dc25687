// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders thesis markup ("#" headings, "-" bullets,
// **bold** and *italic*) as Word, PDF, or Markdown documents.
package export

import (
	"fmt"
	"strings"
)

// Format names a document format.
type Format string

const (
	FormatDOCX     Format = "docx"
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "md"
)

// Formats lists the supported formats.
var Formats = []Format{FormatDOCX, FormatPDF, FormatMarkdown}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if f == "markdown" {
		f = FormatMarkdown
	}
	switch f {
	case FormatDOCX, FormatPDF, FormatMarkdown:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q: use docx, pdf, or md", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Extension returns the file extension for f, with the dot.
func (f Format) Extension() string { return "." + string(f) }

// Export renders markup text in format f.
func Export(f Format, text string) ([]byte, error) {
	switch f {
	case FormatDOCX:
		return DOCX(Parse(text))
	case FormatPDF:
		return PDF(Parse(text))
	case FormatMarkdown:
		return []byte(text), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}
