// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/thesis-engine/internal/httputil"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// crossrefBase is the Crossref works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefBase = "https://api.crossref.org/works"

const crossrefTimeout = 20 * time.Second

// crossrefFields is the select list sent to Crossref.
const crossrefFields = "title,DOI,URL,author,published-print,published-online,created,link,license"

// Crossref queries the Crossref REST API for journal articles.
type Crossref struct {
	Client *httputil.Client
	// Mailto joins the Crossref polite pool.
	Mailto string
	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// Name returns the provider tag.
func (c *Crossref) Name() string { return "crossref" }

// Search requests 5*limit candidates newest first and keeps at most limit
// records that pass the year window and the full-text and open-access
// filters.
func (c *Crossref) Search(ctx context.Context, q types.SearchQuery) ([]types.BibliographicRecord, error) {
	minYear, maxYear := q.YearRange(now(c.Now).Year())

	params := url.Values{
		"query":  {asciiOnly(q.Keyword)},
		"rows":   {strconv.Itoa(5 * q.Limit)},
		"select": {crossrefFields},
		"filter": {fmt.Sprintf("type:journal-article,from-pub-date:%d-01-01", minYear)},
		"sort":   {"published"},
		"order":  {"desc"},
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}

	var resp crossrefResponse
	if err := c.Client.GetJSON(ctx, crossrefBase+"?"+params.Encode(), crossrefTimeout, &resp); err != nil {
		return nil, fmt.Errorf("Crossref works: %w", err)
	}

	records := make([]types.BibliographicRecord, 0, q.Limit)
	for _, item := range resp.Message.Items {
		rec := item.record()
		if rec.Year < minYear || rec.Year > maxYear {
			continue
		}
		if q.FullTextOnly && !rec.HasFullText {
			continue
		}
		if q.OpenAccessOnly && !item.hasLicense() {
			continue
		}
		records = append(records, rec)
		if len(records) >= q.Limit {
			break
		}
	}
	return records, nil
}

type crossrefResponse struct {
	Message struct {
		Items []crossrefItem `json:"items"`
	} `json:"message"`
}

type crossrefItem struct {
	Title           []string         `json:"title"`
	DOI             string           `json:"DOI"`
	URL             string           `json:"URL"`
	Author          []crossrefAuthor `json:"author"`
	PublishedPrint  *crossrefDate    `json:"published-print"`
	PublishedOnline *crossrefDate    `json:"published-online"`
	Created         *crossrefDate    `json:"created"`
	Link            []crossrefLink   `json:"link"`
	License         json.RawMessage  `json:"license"`
}

type crossrefAuthor struct {
	Family string `json:"family"`
	Given  string `json:"given"`
	Name   string `json:"name"`
}

// crossrefDate holds date-parts such as [[2024, 3, 1]]. Null parts decode
// as zero.
type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefLink struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}

type crossrefLicense struct {
	URL string `json:"URL"`
}

// year returns the first date-part, or 0 when the date is absent.
func (d *crossrefDate) year() int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

// resolveYear prefers the print date, then the online date, then the
// record creation date.
func (it crossrefItem) resolveYear() int {
	for _, d := range []*crossrefDate{it.PublishedPrint, it.PublishedOnline, it.Created} {
		if d != nil {
			return d.year()
		}
	}
	return 0
}

// hasLicense reports whether the license key is present, even as null.
func (it crossrefItem) hasLicense() bool {
	return len(it.License) > 0
}

// licenseURL returns the first license URL, or "" when none decodes.
func (it crossrefItem) licenseURL() string {
	var licenses []crossrefLicense
	if err := json.Unmarshal(it.License, &licenses); err != nil || len(licenses) == 0 {
		return ""
	}
	return licenses[0].URL
}

// pdfLink returns the first link whose content type names a PDF.
func (it crossrefItem) pdfLink() (string, bool) {
	for _, l := range it.Link {
		if strings.Contains(strings.ToLower(l.ContentType), "pdf") && l.URL != "" {
			return l.URL, true
		}
	}
	return "", false
}

func (it crossrefItem) record() types.BibliographicRecord {
	rec := types.BibliographicRecord{
		Title:      "No Title",
		Author:     "Unknown",
		Year:       it.resolveYear(),
		Identifier: "-",
		Link:       it.URL,
		Source:     "crossref",
	}
	if len(it.Title) > 0 && strings.TrimSpace(it.Title[0]) != "" {
		rec.Title = strings.Join(strings.Fields(it.Title[0]), " ")
	}
	if it.DOI != "" {
		rec.Identifier = it.DOI
	}
	if len(it.Author) > 0 && it.Author[0].Family != "" {
		rec.Author = it.Author[0].Family + " et al."
	}
	if link, ok := it.pdfLink(); ok {
		rec.Link = link
		rec.HasFullText = true
	}
	if rec.Link == "" {
		rec.Link = "-"
	}
	rec.License = it.licenseURL()
	return rec
}

// asciiOnly drops non-ASCII characters, which Crossref's query parser
// handles poorly.
func asciiOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
