// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries bibliographic metadata providers and returns merged,
// deduplicated, bounded record lists.
//
// Provider failures never surface as errors: a provider that times out,
// returns a bad status, or sends an unexpected shape contributes zero
// records. The only error Search reports is an invalid query, detected
// before any network call.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/thesis-engine/internal/httputil"
	"github.com/pdiddy/thesis-engine/internal/logging"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Provider searches a single bibliographic metadata API.
type Provider interface {
	Name() string
	Search(ctx context.Context, q types.SearchQuery) ([]types.BibliographicRecord, error)
}

// SearchOutput holds merged records and diagnostics for one search.
type SearchOutput struct {
	Query          types.SearchQuery           `json:"query" yaml:"query"`
	Records        []types.BibliographicRecord `json:"records" yaml:"records"`
	DupsRemoved    int                         `json:"duplicates_removed" yaml:"duplicates_removed"`
	ProviderErrors []string                    `json:"provider_errors,omitempty" yaml:"provider_errors,omitempty"`
}

// Aggregator dispatches a query to its providers and merges the results.
type Aggregator struct {
	// Specialist is queried first, and only for health and medical fields.
	Specialist Provider
	// General is always queried.
	General Provider
	// NormalizeTitles keys deduplication on normalized rather than exact titles.
	NormalizeTitles bool
	Log             logrus.FieldLogger
}

// healthFieldMarkers select the life-sciences provider. Matching is
// case-insensitive on the field-of-study tag.
var healthFieldMarkers = []string{
	"kesehatan", "kedokteran", "keperawatan", "kebidanan", "farmasi",
	"medic", "health", "nursing",
}

// IsHealthField reports whether field names a health or medical domain.
func IsHealthField(field string) bool {
	f := strings.ToLower(field)
	for _, m := range healthFieldMarkers {
		if strings.Contains(f, m) {
			return true
		}
	}
	return false
}

// New builds an Aggregator over PubMed and Crossref sharing one rate-limited
// HTTP client.
func New(cfg types.SearchConfig, log logrus.FieldLogger) *Aggregator {
	limiter := httputil.NewLimiter(0)
	ncbiRate := 3.0
	if cfg.NCBIAPIKey != "" {
		ncbiRate = 10
	}
	limiter.SetHostRate(hostOf(pubmedBase), ncbiRate)
	limiter.SetHostRate(hostOf(crossrefBase), 5)

	client := &httputil.Client{
		Limiter:    limiter,
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
		Log:        log,
	}
	if cfg.Timeout > 0 {
		client.HTTP = newHTTPClient(cfg.Timeout)
	}

	return &Aggregator{
		Specialist:      &PubMed{Client: client, APIKey: cfg.NCBIAPIKey, Email: cfg.Email},
		General:         &Crossref{Client: client, Mailto: cfg.Email},
		NormalizeTitles: cfg.NormalizeTitles,
		Log:             log,
	}
}

// Search runs q and returns the merged records. The error is non-nil only
// for an invalid query; provider failures yield fewer (or zero) records.
func (a *Aggregator) Search(ctx context.Context, q types.SearchQuery) ([]types.BibliographicRecord, error) {
	out, err := a.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	return out.Records, nil
}

// Run is Search with diagnostics.
func (a *Aggregator) Run(ctx context.Context, q types.SearchQuery) (SearchOutput, error) {
	if err := q.Validate(); err != nil {
		return SearchOutput{}, err
	}
	q = q.WithDefaults()
	log := logging.OrDiscard(a.Log).WithFields(logrus.Fields{
		"field":   q.Field,
		"keyword": q.Keyword,
		"limit":   q.Limit,
	})

	var providers []Provider
	if a.Specialist != nil && IsHealthField(q.Field) {
		providers = append(providers, a.Specialist)
	}
	if a.General != nil {
		providers = append(providers, a.General)
	}

	out := SearchOutput{Query: q}
	var all []types.BibliographicRecord
	for _, p := range providers {
		start := time.Now()
		recs, err := p.Search(ctx, q)
		if err != nil {
			out.ProviderErrors = append(out.ProviderErrors, fmt.Sprintf("%s: %v", p.Name(), err))
			log.WithError(err).WithField("provider", p.Name()).Warn("provider failed, continuing without its results")
			continue
		}
		log.WithFields(logrus.Fields{
			"provider": p.Name(),
			"records":  len(recs),
			"elapsed":  time.Since(start).String(),
		}).Debug("provider finished")
		all = append(all, recs...)
	}

	merged, removed := deduplicate(all, a.NormalizeTitles)
	if len(merged) > q.Limit {
		merged = merged[:q.Limit]
	}
	out.Records = merged
	out.DupsRemoved = removed
	return out, nil
}

// deduplicate keeps the first record for each title key. The result is never
// nil so callers can treat "no matches" and "empty" alike.
func deduplicate(records []types.BibliographicRecord, normalize bool) ([]types.BibliographicRecord, int) {
	seen := make(map[string]bool, len(records))
	deduped := make([]types.BibliographicRecord, 0, len(records))
	removed := 0
	for _, r := range records {
		key := r.Title
		if normalize {
			key = NormalizeTitle(r.Title)
		}
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		deduped = append(deduped, r)
	}
	return deduped, removed
}

// NormalizeTitle case-folds title, collapses internal whitespace, and strips
// trailing punctuation.
func NormalizeTitle(title string) string {
	t := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	return strings.TrimRightFunc(t, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
