// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// FormatTable writes records as a human-readable table to w.
func FormatTable(out SearchOutput, w io.Writer) {
	if len(out.Records) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-7s  %-8s  %s\n",
		"No", "Title", "Author", "Year", "Source", "Link")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for i, r := range out.Records {
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-7s  %-8s  %s\n",
			i+1, truncate(r.Title, 60), truncate(r.Author, 20), r.YearString(), r.Source, r.Link)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Records))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(out SearchOutput, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Records)
}

// csvHeader is the column order of FormatCSV.
var csvHeader = []string{"Title", "Author", "Year", "DOI", "Link", "Source", "Full Text", "License"}

// FormatCSV writes records as a spreadsheet-friendly CSV table to w.
func FormatCSV(out SearchOutput, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range out.Records {
		row := []string{
			r.Title, r.Author, r.YearString(), r.Identifier, r.Link, r.Source,
			fmt.Sprintf("%t", r.HasFullText), r.License,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatBibTeX writes records as @article entries keyed by author and year.
// Keys that collide get a letter suffix (smith2024, smith2024b).
func FormatBibTeX(out SearchOutput, w io.Writer) error {
	used := make(map[string]int)
	for _, r := range out.Records {
		key := citationKey(r)
		used[key]++
		if n := used[key]; n > 1 {
			key += string(rune('a' + n - 1))
		}

		var b strings.Builder
		fmt.Fprintf(&b, "@article{%s,\n", key)
		fmt.Fprintf(&b, "  title = {%s},\n", r.Title)
		if author := bibAuthor(r.Author); author != "" {
			fmt.Fprintf(&b, "  author = {%s},\n", author)
		}
		if r.Year > 0 {
			fmt.Fprintf(&b, "  year = {%d},\n", r.Year)
		}
		if isDOI(r.Identifier) {
			fmt.Fprintf(&b, "  doi = {%s},\n", r.Identifier)
		}
		if r.Link != "" && r.Link != "-" {
			fmt.Fprintf(&b, "  url = {%s},\n", r.Link)
		}
		fmt.Fprintf(&b, "}\n\n")

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// citationKey builds a lowercase author+year key such as "smith2024".
func citationKey(r types.BibliographicRecord) string {
	family := ""
	if bibAuthor(r.Author) != "" {
		family = familyName(r.Author)
	}
	var b strings.Builder
	for _, c := range strings.ToLower(family) {
		if c < 0x80 && (unicode.IsLetter(c) || unicode.IsDigit(c)) {
			b.WriteRune(c)
		}
	}
	key := b.String()
	if key == "" {
		key = "anon"
	}
	if r.Year > 0 {
		key += fmt.Sprintf("%d", r.Year)
	} else {
		key += "nd"
	}
	return key
}

// familyName strips the " et al." display suffix.
func familyName(author string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(author), "et al."))
}

// bibAuthor renders the display author for BibTeX, mapping "et al." to
// "and others" and dropping placeholder labels.
func bibAuthor(author string) string {
	family := familyName(author)
	switch family {
	case "", "Unknown", "Team":
		return ""
	}
	if strings.HasSuffix(strings.TrimSpace(author), "et al.") {
		return family + " and others"
	}
	return family
}

func isDOI(id string) bool {
	return strings.HasPrefix(id, "10.")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
