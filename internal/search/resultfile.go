// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// ResultFile is the on-disk representation of a search and its records.
// A saved search can be reloaded and re-exported without re-querying
// providers.
type ResultFile struct {
	Query   types.SearchQuery           `yaml:"query"`
	Records []types.BibliographicRecord `yaml:"records"`
	Summary ResultSummary               `yaml:"summary"`
}

// ResultSummary stores result statistics and a timestamp.
type ResultSummary struct {
	Total             int       `yaml:"total"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	ProviderErrors    []string  `yaml:"provider_errors,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteResultFile saves a search output to a YAML file.
func WriteResultFile(path string, out SearchOutput) error {
	rf := ResultFile{
		Query:   out.Query,
		Records: out.Records,
		Summary: ResultSummary{
			Total:             len(out.Records),
			DuplicatesRemoved: out.DupsRemoved,
			ProviderErrors:    out.ProviderErrors,
			Timestamp:         time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}

// Output converts the file back into a SearchOutput for formatting.
func (rf *ResultFile) Output() SearchOutput {
	return SearchOutput{
		Query:          rf.Query,
		Records:        rf.Records,
		DupsRemoved:    rf.Summary.DuplicatesRemoved,
		ProviderErrors: rf.Summary.ProviderErrors,
	}
}
