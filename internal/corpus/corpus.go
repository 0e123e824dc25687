// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus holds the reference text extracted from a student's
// uploaded documents and the PDF extractor that produces it.
package corpus

import "strings"

// Segment is the text of one source document.
type Segment struct {
	Document string `json:"document" yaml:"document"`
	Text     string `json:"text" yaml:"text"`
}

// Corpus is the ordered collection of extracted segments. The zero value is
// an empty corpus.
type Corpus struct {
	Segments []Segment `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// Append adds a segment. Blank text is ignored.
func (c *Corpus) Append(doc, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.Segments = append(c.Segments, Segment{Document: doc, Text: text})
}

// AppendAll adds segments in order.
func (c *Corpus) AppendAll(segs []Segment) {
	for _, s := range segs {
		c.Append(s.Document, s.Text)
	}
}

// Text renders the corpus as one string, each segment introduced by a
// source marker.
func (c *Corpus) Text() string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	for _, s := range c.Segments {
		b.WriteString("\n--- SUMBER: ")
		b.WriteString(s.Document)
		b.WriteString(" ---\n")
		b.WriteString(s.Text)
	}
	return b.String()
}

// Len returns the rune length of Text.
func (c *Corpus) Len() int {
	return len([]rune(c.Text()))
}

// Documents lists segment document names in order.
func (c *Corpus) Documents() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.Segments))
	for i, s := range c.Segments {
		names[i] = s.Document
	}
	return names
}
