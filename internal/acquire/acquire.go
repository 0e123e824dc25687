// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads open-access full-text PDFs for references and
// extracts them into corpus segments.
package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/thesis-engine/internal/corpus"
	"github.com/pdiddy/thesis-engine/internal/httputil"
	"github.com/pdiddy/thesis-engine/internal/logging"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// doiBase is the DOI resolver used when OpenAlex knows no PDF. Declared as
// a var so tests can substitute an httptest server.
var doiBase = "https://doi.org/"

const downloadTimeout = 60 * time.Second

// ErrNotPDF reports a download whose body is not a PDF document, typically
// a publisher landing page.
var ErrNotPDF = errors.New("response is not a PDF")

// Fetcher resolves identifiers to PDFs and extracts their text.
type Fetcher struct {
	Client    *httputil.Client
	Extractor *corpus.Extractor
	// Dir keeps downloaded PDFs and reuses them on later runs. Empty keeps
	// nothing on disk.
	Dir string
	// Mailto joins the OpenAlex polite pool.
	Mailto string
	Log    logrus.FieldLogger
}

// BatchResult holds the outcome of a batch fetch.
type BatchResult struct {
	Downloaded int
	Cached     int
	Failed     int
	Segments   []corpus.Segment
	Failures   []string
}

// Total returns the total number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Cached + r.Failed
}

// Fetch resolves identifier, downloads the PDF (or reuses the copy in Dir),
// and extracts it. cached reports whether the download was skipped.
func (f *Fetcher) Fetch(ctx context.Context, identifier string) (seg corpus.Segment, cached bool, err error) {
	idType, normalized := Classify(identifier)
	if idType == TypeUnknown {
		return corpus.Segment{}, false, fmt.Errorf("unrecognized identifier format: %q", identifier)
	}
	name := Slug(idType, normalized) + ".pdf"

	if f.Dir != "" {
		if data, err := os.ReadFile(filepath.Join(f.Dir, name)); err == nil {
			seg, err := f.extract(name, data)
			return seg, true, err
		}
	}

	pdfURL := f.resolve(ctx, idType, normalized)
	data, err := f.client().Get(ctx, pdfURL, downloadTimeout)
	if err != nil {
		return corpus.Segment{}, false, fmt.Errorf("downloading %s: %w", name, err)
	}
	if !isPDF(data) {
		return corpus.Segment{}, false, fmt.Errorf("%s: %w", pdfURL, ErrNotPDF)
	}

	if f.Dir != "" {
		if err := writeAtomic(filepath.Join(f.Dir, name), data); err != nil {
			f.log().WithError(err).WithField("file", name).Warn("could not keep downloaded PDF")
		}
	}

	seg, err = f.extract(name, data)
	return seg, false, err
}

// FetchAll fetches every identifier, continuing after individual failures.
func (f *Fetcher) FetchAll(ctx context.Context, identifiers []string) BatchResult {
	var result BatchResult
	for _, id := range identifiers {
		if ctx.Err() != nil {
			break
		}
		seg, cached, err := f.Fetch(ctx, id)
		if err != nil {
			f.log().WithError(err).WithField("identifier", id).Warn("fetch failed")
			result.Failed++
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		if cached {
			result.Cached++
		} else {
			result.Downloaded++
		}
		result.Segments = append(result.Segments, seg)
	}
	f.log().WithFields(logrus.Fields{
		"downloaded": result.Downloaded,
		"cached":     result.Cached,
		"failed":     result.Failed,
	}).Info("fetch finished")
	return result
}

// Identifiers picks a fetchable identifier for each record: the full-text
// link when one was detected, else the DOI. Records with neither are
// skipped and duplicates are dropped.
func Identifiers(records []types.BibliographicRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		id := ""
		switch {
		case r.HasFullText && r.Link != "" && r.Link != "-":
			id = r.Link
		case r.Identifier != "" && r.Identifier != "-":
			id = r.Identifier
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// resolve returns the download URL. DOIs go through OpenAlex first and fall
// back to the DOI resolver.
func (f *Fetcher) resolve(ctx context.Context, idType IdentifierType, normalized string) string {
	if idType == TypeURL {
		return normalized
	}
	oaURL, err := resolveOpenAlex(ctx, f.client(), normalized, f.Mailto)
	if err != nil {
		f.log().WithError(err).WithField("doi", normalized).Debug("OpenAlex lookup failed")
	}
	if oaURL != "" {
		return oaURL
	}
	return doiBase + normalized
}

func (f *Fetcher) extract(name string, data []byte) (corpus.Segment, error) {
	ex := f.Extractor
	if ex == nil {
		ex = &corpus.Extractor{Log: f.Log}
	}
	return ex.ExtractReader(name, bytes.NewReader(data), int64(len(data)))
}

func (f *Fetcher) client() *httputil.Client {
	if f.Client == nil {
		f.Client = &httputil.Client{Log: f.Log}
	}
	return f.Client
}

func (f *Fetcher) log() logrus.FieldLogger { return logging.OrDiscard(f.Log) }

func isPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("%PDF-"))
}

// writeAtomic writes data to a temporary file and renames it into place.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".acquire-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
