// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/thesis-engine/internal/httputil"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// pubmedBase is the NCBI E-utilities root. Declared as a var so tests can
// substitute an httptest server.
var pubmedBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// pmcBase prefixes PubMed Central article ids. Only articles deposited in
// PMC get a full-text link.
const pmcBase = "https://www.ncbi.nlm.nih.gov/pmc/articles/"

const (
	pubmedSearchTimeout = 10 * time.Second
	pubmedFetchTimeout  = 15 * time.Second

	pubmedTool = "thesis-engine"
)

// PubMed queries the NCBI E-utilities in two phases: esearch resolves PMIDs,
// efetch returns full metadata for the batch.
type PubMed struct {
	Client *httputil.Client
	// APIKey raises the NCBI rate limit.
	APIKey string
	// Email identifies the caller to NCBI.
	Email string
	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// Name returns the provider tag.
func (p *PubMed) Name() string { return "pubmed" }

// Search resolves up to 2*limit PMIDs for the keyword within the year
// window, fetches their metadata, and keeps at most limit records whose
// year falls inside the window.
func (p *PubMed) Search(ctx context.Context, q types.SearchQuery) ([]types.BibliographicRecord, error) {
	currentYear := now(p.Now).Year()
	minYear, maxYear := q.YearRange(currentYear)

	ids, err := p.searchIDs(ctx, q, minYear, maxYear)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []types.BibliographicRecord{}, nil
	}

	set, err := p.fetch(ctx, ids)
	if err != nil {
		return nil, err
	}

	records := make([]types.BibliographicRecord, 0, q.Limit)
	for _, art := range set.Articles {
		rec, ok := art.record(currentYear)
		if !ok {
			continue
		}
		if rec.Year < minYear || rec.Year > maxYear {
			continue
		}
		records = append(records, rec)
		if len(records) >= q.Limit {
			break
		}
	}
	return records, nil
}

// pubmedSearchResponse is the esearch JSON envelope.
type pubmedSearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

func (p *PubMed) searchIDs(ctx context.Context, q types.SearchQuery, minYear, maxYear int) ([]string, error) {
	term := fmt.Sprintf("%s AND %d:%d[pdat]", q.Keyword, minYear, maxYear)
	if q.FullTextOnly {
		term += " AND free full text[sb]"
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmax":  {strconv.Itoa(2 * q.Limit)},
		"retmode": {"json"},
		"sort":    {"relevance"},
	}
	p.addEtiquette(params)

	var resp pubmedSearchResponse
	if err := p.Client.GetJSON(ctx, pubmedBase+"/esearch.fcgi?"+params.Encode(), pubmedSearchTimeout, &resp); err != nil {
		return nil, fmt.Errorf("PubMed esearch: %w", err)
	}
	return resp.Result.IDList, nil
}

func (p *PubMed) fetch(ctx context.Context, ids []string) (*pubmedArticleSet, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	p.addEtiquette(params)

	var set pubmedArticleSet
	if err := p.Client.GetXML(ctx, pubmedBase+"/efetch.fcgi?"+params.Encode(), pubmedFetchTimeout, &set); err != nil {
		return nil, fmt.Errorf("PubMed efetch: %w", err)
	}
	return &set, nil
}

func (p *PubMed) addEtiquette(params url.Values) {
	params.Set("tool", pubmedTool)
	if p.Email != "" {
		params.Set("email", p.Email)
	}
	if p.APIKey != "" {
		params.Set("api_key", p.APIKey)
	}
}

// pubmedArticleSet is the efetch XML document.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID        string            `xml:"MedlineCitation>PMID"`
	Title       pubmedInnerXML    `xml:"MedlineCitation>Article>ArticleTitle"`
	Year        string            `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	MedlineDate string            `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>MedlineDate"`
	Authors     []pubmedAuthor    `xml:"MedlineCitation>Article>AuthorList>Author"`
	ArticleIDs  []pubmedArticleID `xml:"PubmedData>ArticleIdList>ArticleId"`
}

// pubmedInnerXML keeps inline markup (<i>, <sup>) so it can be flattened.
type pubmedInnerXML struct {
	Inner string `xml:",innerxml"`
}

type pubmedAuthor struct {
	LastName       string `xml:"LastName"`
	CollectiveName string `xml:"CollectiveName"`
}

type pubmedArticleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}

var (
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
	yearPattern = regexp.MustCompile(`\b(1[89]|20)\d{2}\b`)
)

// record converts an article, applying the defaults for missing year
// (currentYear), author ("Team"), and DOI ("-"). A PMC id makes the PMC
// PDF the full-text link. Articles without a title
// or PMID are unusable and reported as !ok.
func (a pubmedArticle) record(currentYear int) (types.BibliographicRecord, bool) {
	title := strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(a.Title.Inner, "")))
	pmid := strings.TrimSpace(a.PMID)
	if title == "" || pmid == "" {
		return types.BibliographicRecord{}, false
	}

	rec := types.BibliographicRecord{
		Title:      strings.Join(strings.Fields(title), " "),
		Author:     a.author(),
		Year:       a.year(currentYear),
		Identifier: a.doi(),
		Link:       "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/",
		Source:     "pubmed",
	}
	if pmc := a.articleID("pmc"); pmc != "" {
		rec.Link = pmcBase + pmc + "/pdf/"
		rec.HasFullText = true
	}
	return rec, true
}

func (a pubmedArticle) year(currentYear int) int {
	if y, err := strconv.Atoi(strings.TrimSpace(a.Year)); err == nil && y > 0 {
		return y
	}
	if m := yearPattern.FindString(a.MedlineDate); m != "" {
		y, _ := strconv.Atoi(m)
		return y
	}
	return currentYear
}

func (a pubmedArticle) author() string {
	if len(a.Authors) == 0 {
		return "Team"
	}
	first := a.Authors[0]
	name := strings.TrimSpace(first.LastName)
	if name == "" {
		name = strings.TrimSpace(first.CollectiveName)
	}
	if name == "" {
		return "Team"
	}
	return name + " et al."
}

func (a pubmedArticle) doi() string {
	if doi := a.articleID("doi"); doi != "" {
		return doi
	}
	return "-"
}

// articleID returns the first non-empty ArticleId of the given IdType.
func (a pubmedArticle) articleID(kind string) string {
	for _, id := range a.ArticleIDs {
		if id.Type == kind && strings.TrimSpace(id.Value) != "" {
			return strings.TrimSpace(id.Value)
		}
	}
	return ""
}

func now(f func() time.Time) time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}
