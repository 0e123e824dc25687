package search

import (
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID     string    `yaml:"id"`
	Type   string    `yaml:"type"`
	Title  string    `yaml:"title"`
	Author []CSLName `yaml:"author,omitempty"`
	Issued *CSLDate  `yaml:"issued,omitempty"`
	DOI    string    `yaml:"DOI,omitempty"`
	URL    string    `yaml:"URL,omitempty"`
	Source string    `yaml:"source,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes records as a CSL-YAML list to w.
func FormatCSL(out SearchOutput, w io.Writer) error {
	items := make([]CSLItem, len(out.Records))
	used := make(map[string]int)
	for i, r := range out.Records {
		items[i] = toCSLItem(r)
		used[items[i].ID]++
		if n := used[items[i].ID]; n > 1 {
			items[i].ID += string(rune('a' + n - 1))
		}
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a record to a CSL article-journal entry.
func toCSLItem(r types.BibliographicRecord) CSLItem {
	item := CSLItem{
		ID:     citationKey(r),
		Type:   "article-journal",
		Title:  r.Title,
		Source: r.Source,
	}
	if author := bibAuthor(r.Author); author != "" {
		item.Author = append(item.Author, CSLName{Family: familyName(r.Author)})
	}
	if r.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{r.Year}}}
	}
	if isDOI(r.Identifier) {
		item.DOI = r.Identifier
	}
	if r.Link != "" && r.Link != "-" {
		item.URL = r.Link
	}
	return item
}
