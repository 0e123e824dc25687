// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind distinguishes the block types of the markup convention.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	Bullet
)

// Run is a span of text with uniform emphasis.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Block is one rendered line: a heading, a bullet item, or a paragraph.
// Level is 0, 1, or 2 for headings and unused otherwise.
type Block struct {
	Kind  BlockKind
	Level int
	Runs  []Run
}

// Plain returns the block text without emphasis.
func (b Block) Plain() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

var md = goldmark.New()

// Parse converts markup into blocks. "#", "##", "###" give heading levels
// 0 to 2 (deeper headings clamp to 2). Each source line of a paragraph
// becomes its own paragraph block.
func Parse(src string) []Block {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	var blocks []Block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		blocks = append(blocks, blockNodes(n, source)...)
	}
	return blocks
}

func blockNodes(n ast.Node, source []byte) []Block {
	switch node := n.(type) {
	case *ast.Heading:
		if !isATXHeading(node, source) {
			// Underlined text is a paragraph; only "#" lines are headings.
			return splitParagraph(inlineRuns(node, source, false, false))
		}
		level := node.Level - 1
		if level > 2 {
			level = 2
		}
		return []Block{{Kind: Heading, Level: level, Runs: trimRuns(inlineRuns(node, source, false, false))}}

	case *ast.List:
		var out []Block
		n := node.Start
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			var runs []Run
			kind := Bullet
			if node.IsOrdered() {
				// Numbered lines stay paragraphs with their number.
				kind = Paragraph
				runs = append(runs, Run{Text: fmt.Sprintf("%d%c ", n, node.Marker)})
				n++
			}
			var nested []Block
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				if _, ok := c.(*ast.List); ok {
					nested = append(nested, blockNodes(c, source)...)
					continue
				}
				if c != item.FirstChild() {
					runs = append(runs, Run{Text: " "})
				}
				runs = append(runs, inlineRuns(c, source, false, false)...)
			}
			out = append(out, Block{Kind: kind, Runs: trimRuns(joinBreaks(runs))})
			out = append(out, nested...)
		}
		return out

	case *ast.Paragraph, *ast.TextBlock:
		return splitParagraph(inlineRuns(node, source, false, false))

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var out []Block
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimRight(string(seg.Value(source)), "\n")
			out = append(out, Block{Kind: Paragraph, Runs: []Run{{Text: line}}})
		}
		return out

	case *ast.ThematicBreak, *ast.HTMLBlock:
		return nil

	default:
		var out []Block
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			out = append(out, blockNodes(c, source)...)
		}
		return out
	}
}

// isATXHeading reports whether h was written with a leading "#" rather
// than as an underlined (setext) heading.
func isATXHeading(h *ast.Heading, source []byte) bool {
	lines := h.Lines()
	if lines.Len() == 0 {
		return true
	}
	start := lines.At(0).Start
	i := start
	for i > 0 && source[i-1] != '\n' {
		i--
	}
	return bytes.HasPrefix(bytes.TrimLeft(source[i:start], " \t"), []byte("#"))
}

// lineBreak marks a source line boundary inside a paragraph.
const lineBreak = "\n"

func inlineRuns(n ast.Node, source []byte, bold, italic bool) []Run {
	var runs []Run
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			runs = append(runs, Run{Text: string(node.Segment.Value(source)), Bold: bold, Italic: italic})
			if node.SoftLineBreak() || node.HardLineBreak() {
				runs = append(runs, Run{Text: lineBreak})
			}
		case *ast.String:
			runs = append(runs, Run{Text: string(node.Value), Bold: bold, Italic: italic})
		case *ast.Emphasis:
			if node.Level >= 2 {
				runs = append(runs, inlineRuns(node, source, true, italic)...)
			} else {
				runs = append(runs, inlineRuns(node, source, bold, true)...)
			}
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				runs = append(runs, Run{Text: string(seg.Value(source)), Bold: bold, Italic: italic})
			}
		case *ast.AutoLink:
			runs = append(runs, Run{Text: string(node.URL(source)), Bold: bold, Italic: italic})
		default:
			runs = append(runs, inlineRuns(c, source, bold, italic)...)
		}
	}
	return mergeRuns(runs)
}

// splitParagraph turns each line of a paragraph into its own block.
func splitParagraph(runs []Run) []Block {
	var out []Block
	var cur []Run
	flush := func() {
		cur = trimRuns(cur)
		if len(cur) > 0 {
			out = append(out, Block{Kind: Paragraph, Runs: cur})
		}
		cur = nil
	}
	for _, r := range runs {
		if r.Text == lineBreak {
			flush()
			continue
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// joinBreaks replaces line boundaries with spaces.
func joinBreaks(runs []Run) []Run {
	for i := range runs {
		if runs[i].Text == lineBreak {
			runs[i].Text = " "
		}
	}
	return mergeRuns(runs)
}

// mergeRuns joins neighbours with identical emphasis.
func mergeRuns(runs []Run) []Run {
	var out []Run
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && r.Text != lineBreak && out[n-1].Text != lineBreak &&
			out[n-1].Bold == r.Bold && out[n-1].Italic == r.Italic {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// trimRuns strips leading and trailing whitespace across the run list.
func trimRuns(runs []Run) []Run {
	for len(runs) > 0 {
		runs[0].Text = strings.TrimLeft(runs[0].Text, " \t")
		if runs[0].Text != "" {
			break
		}
		runs = runs[1:]
	}
	for len(runs) > 0 {
		last := len(runs) - 1
		runs[last].Text = strings.TrimRight(runs[last].Text, " \t")
		if runs[last].Text != "" {
			break
		}
		runs = runs[:last]
	}
	return runs
}
