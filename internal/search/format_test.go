// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

func sampleOutput() SearchOutput {
	return SearchOutput{
		Query: types.SearchQuery{Field: "Kedokteran", Keyword: "stunting", Limit: 5, MaxAgeYears: 5},
		Records: []types.BibliographicRecord{
			{Title: "Stunting in toddlers", Author: "Smith et al.", Year: 2024, Identifier: "10.1/a", Link: "https://pubmed.ncbi.nlm.nih.gov/1/", Source: "pubmed"},
			{Title: "Nutrition, growth", Author: "Smith et al.", Year: 2024, Identifier: "-", Link: "https://pub.example/b.pdf", Source: "crossref", HasFullText: true},
			{Title: "Untitled cohort", Author: "Unknown", Year: 0, Identifier: "-", Link: "-", Source: "crossref"},
		},
		DupsRemoved: 2,
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(sampleOutput(), &buf)
	out := buf.String()
	for _, want := range []string{"Stunting in toddlers", "unknown", "3 results (2 duplicates removed)"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	FormatTable(SearchOutput{}, &buf)
	if !strings.Contains(buf.String(), "No results found.") {
		t.Errorf("empty table = %q", buf.String())
	}
}

func TestFormatCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatCSV(sampleOutput(), &buf); err != nil {
		t.Fatalf("FormatCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want header + 3", len(rows))
	}
	if rows[0][0] != "Title" || rows[0][3] != "DOI" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][0] != "Nutrition, growth" || rows[2][6] != "true" {
		t.Errorf("row 2 = %v", rows[2])
	}
	if rows[3][2] != "unknown" {
		t.Errorf("unknown year rendered as %q", rows[3][2])
	}
}

func TestFormatBibTeX(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatBibTeX(sampleOutput(), &buf); err != nil {
		t.Fatalf("FormatBibTeX: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"@article{smith2024,",
		"@article{smith2024b,",
		"@article{anonnd,",
		"author = {Smith and others}",
		"doi = {10.1/a}",
		"url = {https://pub.example/b.pdf}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("BibTeX missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "doi = {-}") || strings.Contains(out, "author = {Unknown") {
		t.Errorf("placeholders leaked into BibTeX:\n%s", out)
	}
}

func TestFormatCSL(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatCSL(sampleOutput(), &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}
	var items []CSLItem
	if err := yaml.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatalf("parsing CSL: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	if items[0].ID != "smith2024" || items[1].ID != "smith2024b" {
		t.Errorf("IDs = %q, %q", items[0].ID, items[1].ID)
	}
	if items[0].DOI != "10.1/a" || items[1].DOI != "" {
		t.Errorf("DOIs = %q, %q", items[0].DOI, items[1].DOI)
	}
	if items[0].Issued == nil || items[0].Issued.DateParts[0][0] != 2024 {
		t.Errorf("Issued = %+v", items[0].Issued)
	}
	if len(items[2].Author) != 0 || items[2].Issued != nil {
		t.Errorf("placeholder author/year should be omitted: %+v", items[2])
	}
}

func TestResultFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.yaml")
	out := sampleOutput()
	out.ProviderErrors = []string{"pubmed: timeout"}

	if err := WriteResultFile(path, out); err != nil {
		t.Fatalf("WriteResultFile: %v", err)
	}
	rf, err := ReadResultFile(path)
	if err != nil {
		t.Fatalf("ReadResultFile: %v", err)
	}
	if rf.Summary.Total != 3 || rf.Summary.Timestamp.IsZero() {
		t.Errorf("Summary = %+v", rf.Summary)
	}

	back := rf.Output()
	if back.Query.Keyword != "stunting" || len(back.Records) != 3 || back.DupsRemoved != 2 {
		t.Errorf("Output() = %+v", back)
	}
	if back.Records[1].Link != "https://pub.example/b.pdf" || !back.Records[1].HasFullText {
		t.Errorf("record 1 = %+v", back.Records[1])
	}
}

func TestReadResultFileMissing(t *testing.T) {
	if _, err := ReadResultFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
