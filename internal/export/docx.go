// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Page layout for thesis documents: Times New Roman 12pt, 1.5 line
// spacing, justified body. Sizes are half-points; spacing is in 240ths of
// a line.
const (
	bodyFont      = "Times New Roman"
	bodySize      = 24
	lineSpacing   = 360
	headingSize0  = 28
	headingSize12 = 24
	bulletIndent  = 720
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

var stylesXML = fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults>
<w:rPrDefault><w:rPr><w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s" w:cs="%[1]s" w:eastAsia="%[1]s"/><w:sz w:val="%[2]d"/><w:szCs w:val="%[2]d"/><w:lang w:val="id-ID"/></w:rPr></w:rPrDefault>
<w:pPrDefault><w:pPr><w:spacing w:after="0" w:line="%[3]d" w:lineRule="auto"/><w:jc w:val="both"/></w:pPr></w:pPrDefault>
</w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
</w:styles>`, bodyFont, bodySize, lineSpacing)

// DOCX renders blocks as a WordprocessingML package.
func DOCX(blocks []Block) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/document.xml", documentXML(blocks)},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", p.name, err)
		}
		if _, err := io.WriteString(w, p.body); err != nil {
			return nil, fmt.Errorf("writing %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing docx: %w", err)
	}
	return buf.Bytes(), nil
}

func documentXML(blocks []Block) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, blk := range blocks {
		writeParagraph(&b, blk)
	}
	// A4 with 4-3-3-3 cm margins, the common thesis layout.
	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1701" w:right="1701" w:bottom="1701" w:left="2268" w:header="709" w:footer="709" w:gutter="0"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func writeParagraph(b *strings.Builder, blk Block) {
	b.WriteString("<w:p><w:pPr>")
	switch blk.Kind {
	case Heading:
		b.WriteString(`<w:keepNext/><w:spacing w:before="240" w:after="120"/>`)
		if blk.Level == 0 {
			b.WriteString(`<w:jc w:val="center"/>`)
		} else {
			b.WriteString(`<w:jc w:val="left"/>`)
		}
	case Bullet:
		fmt.Fprintf(b, `<w:ind w:left="%d" w:hanging="360"/>`, bulletIndent)
	default:
		b.WriteString(`<w:ind w:firstLine="720"/>`)
	}
	b.WriteString("</w:pPr>")

	if blk.Kind == Bullet {
		writeRun(b, Run{Text: "•\t"}, false, 0)
	}
	for _, r := range blk.Runs {
		size := 0
		if blk.Kind == Heading {
			size = headingSize12
			if blk.Level == 0 {
				size = headingSize0
			}
		}
		writeRun(b, r, blk.Kind == Heading, size)
	}
	b.WriteString("</w:p>")
}

func writeRun(b *strings.Builder, r Run, forceBold bool, size int) {
	b.WriteString("<w:r>")
	if r.Bold || r.Italic || forceBold || size > 0 {
		b.WriteString("<w:rPr>")
		if r.Bold || forceBold {
			b.WriteString("<w:b/>")
		}
		if r.Italic {
			b.WriteString("<w:i/>")
		}
		if size > 0 {
			fmt.Fprintf(b, `<w:sz w:val="%d"/>`, size)
		}
		b.WriteString("</w:rPr>")
	}
	parts := strings.Split(r.Text, "\t")
	for i, part := range parts {
		if i > 0 {
			b.WriteString("<w:tab/>")
		}
		if part == "" {
			continue
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(b, []byte(part))
		b.WriteString("</w:t>")
	}
	b.WriteString("</w:r>")
}
