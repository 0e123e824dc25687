// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# JUDUL TESIS

## Latar Belakang
Stunting adalah masalah **gizi kronis** pada *balita*.
Baris kedua paragraf.

- butir satu
- butir **dua**

### Sub Rinci
Teks akhir.`

func TestParse(t *testing.T) {
	blocks := Parse(sample)
	require.Len(t, blocks, 8)

	assert.Equal(t, Block{Kind: Heading, Level: 0, Runs: []Run{{Text: "JUDUL TESIS"}}}, blocks[0])
	assert.Equal(t, Heading, blocks[1].Kind)
	assert.Equal(t, 1, blocks[1].Level)

	assert.Equal(t, []Run{
		{Text: "Stunting adalah masalah "},
		{Text: "gizi kronis", Bold: true},
		{Text: " pada "},
		{Text: "balita", Italic: true},
		{Text: "."},
	}, blocks[2].Runs)
	assert.Equal(t, "Baris kedua paragraf.", blocks[3].Plain())

	assert.Equal(t, Bullet, blocks[4].Kind)
	assert.Equal(t, "butir satu", blocks[4].Plain())
	assert.Equal(t, []Run{{Text: "butir "}, {Text: "dua", Bold: true}}, blocks[5].Runs)

	assert.Equal(t, 2, blocks[6].Level)
	assert.Equal(t, Paragraph, blocks[7].Kind)
}

func TestParseClampsDeepHeadings(t *testing.T) {
	blocks := Parse("##### Dalam")
	require.Len(t, blocks, 1)
	assert.Equal(t, 2, blocks[0].Level)
}

func TestParseNumberedLinesStayParagraphs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"dot", "1. Latar Belakang\n2. Rumusan Masalah", []string{"1. Latar Belakang", "2. Rumusan Masalah"}},
		{"paren start", "3) Tujuan\n4) Manfaat", []string{"3) Tujuan", "4) Manfaat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Parse(tt.text)
			require.Len(t, blocks, len(tt.want))
			for i, w := range tt.want {
				assert.Equal(t, Paragraph, blocks[i].Kind)
				assert.Equal(t, w, blocks[i].Plain())
			}
		})
	}

	blocks := Parse("1. Faktor **gizi**")
	require.Len(t, blocks, 1)
	assert.Equal(t, []Run{{Text: "1. Faktor "}, {Text: "gizi", Bold: true}}, blocks[0].Runs)
}

func TestParseUnderlinedTextIsNotHeading(t *testing.T) {
	for _, text := range []string{"Nilai p = 0.003\n---\nLanjut", "Nilai p = 0.003\n===\nLanjut"} {
		blocks := Parse(text)
		require.Len(t, blocks, 2, text)
		for _, b := range blocks {
			assert.Equal(t, Paragraph, b.Kind, text)
		}
		assert.Equal(t, "Nilai p = 0.003", blocks[0].Plain())
		assert.Equal(t, "Lanjut", blocks[1].Plain())
	}
}

func readZipFile(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(b)
		}
	}
	t.Fatalf("%s not found in package", name)
	return ""
}

func TestExportDOCX(t *testing.T) {
	data, err := Export(FormatDOCX, sample+"\n\nA & B <c>")
	require.NoError(t, err)

	doc := readZipFile(t, data, "word/document.xml")
	assert.Contains(t, doc, `<w:jc w:val="center"/>`)
	assert.Contains(t, doc, `<w:b/>`)
	assert.Contains(t, doc, `<w:i/>`)
	assert.Contains(t, doc, "gizi kronis")
	assert.Contains(t, doc, "A &amp; B &lt;c&gt;")

	styles := readZipFile(t, data, "word/styles.xml")
	assert.Contains(t, styles, `w:ascii="Times New Roman"`)
	assert.Contains(t, styles, `<w:sz w:val="24"/>`)
	assert.Contains(t, styles, `w:line="360"`)
	assert.Contains(t, styles, `<w:jc w:val="both"/>`)

	assert.NotEmpty(t, readZipFile(t, data, "[Content_Types].xml"))
}

func TestExportPDF(t *testing.T) {
	data, err := Export(FormatPDF, sample)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumPage())
}

func TestExportPDFLongDocumentPaginates(t *testing.T) {
	text := "# Judul\n\n" + strings.Repeat("Kalimat panjang untuk mengisi halaman.\n", 200)
	data, err := Export(FormatPDF, text)
	require.NoError(t, err)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Greater(t, r.NumPage(), 1)
}

func TestExportMarkdownPassthrough(t *testing.T) {
	data, err := Export(FormatMarkdown, sample)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"docx": FormatDOCX, ".PDF": FormatPDF, "markdown": FormatMarkdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)

	_, err = Export(Format("xlsx"), "x")
	assert.Error(t, err)
}
