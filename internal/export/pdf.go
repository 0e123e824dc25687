// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfFont       = "Times"
	pdfBodySize   = 12
	pdfLineHeight = 9 // 1.5 spacing at 12pt, in mm
)

// PDF renders blocks onto A4 pages with the thesis margins.
func PDF(blocks []Block) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(40, 30, 30)
	doc.SetAutoPageBreak(true, 30)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-20)
		doc.SetFont(pdfFont, "", 10)
		doc.CellFormat(0, 10, fmt.Sprintf("%d", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, blk := range blocks {
		switch blk.Kind {
		case Heading:
			size := 12.0
			align := "L"
			if blk.Level == 0 {
				size = 14
				align = "C"
			}
			doc.Ln(4)
			doc.SetFont(pdfFont, "B", size)
			doc.MultiCell(0, pdfLineHeight, tr(blk.Plain()), "", align, false)
			doc.Ln(2)

		case Bullet:
			left, _, _, _ := doc.GetMargins()
			doc.SetX(left + 5)
			doc.SetFont(pdfFont, "", pdfBodySize)
			doc.Write(pdfLineHeight, tr("• "))
			writeRuns(doc, blk.Runs, tr)
			doc.Ln(pdfLineHeight)

		default:
			doc.SetX(doc.GetX() + 10)
			writeRuns(doc, blk.Runs, tr)
			doc.Ln(pdfLineHeight)
		}
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRuns(doc *gofpdf.Fpdf, runs []Run, tr func(string) string) {
	for _, r := range runs {
		style := ""
		if r.Bold {
			style += "B"
		}
		if r.Italic {
			style += "I"
		}
		doc.SetFont(pdfFont, style, pdfBodySize)
		doc.Write(pdfLineHeight, tr(r.Text))
	}
}
