// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePDF renders one page per entry in pages.
func writePDF(t *testing.T, path string, pages ...string) {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	for _, text := range pages {
		doc.AddPage()
		doc.SetFont("Arial", "", 12)
		doc.MultiCell(0, 10, text, "", "", false)
	}
	require.NoError(t, doc.OutputFileAndClose(path))
}

func TestCorpusText(t *testing.T) {
	var c Corpus
	assert.Equal(t, "", c.Text())
	assert.Equal(t, 0, c.Len())

	c.Append("a.pdf", "alpha")
	c.Append("blank.pdf", "   ")
	c.Append("b.pdf", "beta")

	assert.Equal(t, "\n--- SUMBER: a.pdf ---\nalpha\n--- SUMBER: b.pdf ---\nbeta", c.Text())
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, c.Documents())
}

func TestExtractPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jurnal.pdf")
	writePDF(t, path, "Stunting prevalence among toddlers", "Second page about nutrition")

	e := &Extractor{}
	segs, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "jurnal.pdf", segs[0].Document)
	assert.Contains(t, segs[0].Text, "Stunting")
	assert.Contains(t, segs[0].Text, "nutrition")
}

func TestExtractRespectsMaxPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.pdf")
	writePDF(t, path, "first page", "second page", "third page")

	segs, err := (&Extractor{MaxPages: 2}).Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Contains(t, segs[0].Text, "second")
	assert.NotContains(t, segs[0].Text, "third")
}

func TestExtractSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	writePDF(t, good, "readable text")
	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a pdf"), 0o644))

	segs, err := (&Extractor{}).Extract(context.Background(), bad, good, filepath.Join(dir, "missing.pdf"))
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "good.pdf", segs[0].Document)
}

func TestExtractAllFailed(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))

	_, err := (&Extractor{}).Extract(context.Background(), bad)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.pdf")
	writePDF(t, path, "uploaded reference")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	seg, err := (&Extractor{}).ExtractReader("upload.pdf", bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.True(t, strings.Contains(seg.Text, "uploaded"))

	_, err = (&Extractor{}).ExtractReader("junk.pdf", bytes.NewReader([]byte("junk")), 4)
	assert.Error(t, err)
}
