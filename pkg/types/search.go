// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for thesis-engine: bibliographic
// records, search queries, thesis chapters, and configuration.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// BibliographicRecord is a normalized citation returned by a search provider.
type BibliographicRecord struct {
	// Title is the article title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Author is a display string, usually "Family et al.".
	Author string `json:"author" yaml:"author"`

	// Year is the publication year. Zero means unknown.
	Year int `json:"year" yaml:"year"`

	// Identifier is the persistent identifier (DOI), or "-" when missing.
	Identifier string `json:"identifier" yaml:"identifier"`

	// Link points at the full text when one was found, else the landing page.
	Link string `json:"link" yaml:"link"`

	// Source is the provider tag (e.g. "pubmed", "crossref").
	Source string `json:"source" yaml:"source"`

	// HasFullText reports whether Link is a direct full-text document.
	HasFullText bool `json:"has_full_text" yaml:"has_full_text"`

	// License is the first license URL in provider metadata, if any.
	License string `json:"license,omitempty" yaml:"license,omitempty"`
}

// YearString renders Year, or "unknown" when it is zero.
func (r BibliographicRecord) YearString() string {
	if r.Year == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d", r.Year)
}

// Search defaults applied by SearchQuery.WithDefaults.
const (
	DefaultSearchLimit = 10
	DefaultMaxAgeYears = 5
	MaxSearchLimit     = 100
)

// ErrInvalidQuery is returned when a search query fails validation.
var ErrInvalidQuery = errors.New("invalid search query")

// SearchQuery holds the parameters of a single bibliographic search.
type SearchQuery struct {
	// Field is the field-of-study tag. It only selects which providers run.
	Field string `json:"field" yaml:"field"`

	// Keyword is the topic or keyword string sent to providers.
	Keyword string `json:"keyword" yaml:"keyword" validate:"required"`

	// Limit is the maximum number of records returned.
	Limit int `json:"limit" yaml:"limit" validate:"gte=0,lte=100"`

	// MaxAgeYears bounds the publication year to [now-MaxAgeYears, now].
	MaxAgeYears int `json:"max_age_years" yaml:"max_age_years" validate:"gte=0"`

	// OpenAccessOnly drops records without a license field.
	OpenAccessOnly bool `json:"open_access_only" yaml:"open_access_only"`

	// FullTextOnly drops records without a detected full-text link.
	FullTextOnly bool `json:"fulltext_only" yaml:"fulltext_only"`
}

// Validate reports an InputFailure for queries that must not reach the network.
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Keyword) == "" {
		return fmt.Errorf("%w: keyword is required", ErrInvalidQuery)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidQuery, q.Limit)
	}
	if q.MaxAgeYears < 0 {
		return fmt.Errorf("%w: max age must not be negative, got %d", ErrInvalidQuery, q.MaxAgeYears)
	}
	return nil
}

// WithDefaults fills a zero limit and caps oversized limits.
func (q SearchQuery) WithDefaults() SearchQuery {
	if q.Limit == 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Limit > MaxSearchLimit {
		q.Limit = MaxSearchLimit
	}
	q.Keyword = strings.TrimSpace(q.Keyword)
	return q
}

// YearRange returns the inclusive publication-year window for currentYear.
func (q SearchQuery) YearRange(currentYear int) (min, max int) {
	return currentYear - q.MaxAgeYears, currentYear
}
