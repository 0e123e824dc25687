// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Citation is one APA in-text citation: (Author, Year) or
// (Author et al., Year).
type Citation struct {
	Author string
	Year   int
}

func (c Citation) String() string {
	return c.Author + ", " + strconv.Itoa(c.Year)
}

var (
	// parenPattern matches parenthesised groups that end in a year.
	parenPattern = regexp.MustCompile(`\(([^()]*?\b(?:19|20)\d{2}[a-z]?)\)`)
	// citePattern matches one "Author[ et al.], Year" entry inside a group.
	citePattern = regexp.MustCompile(`^([\p{L}][\p{L}'\-]*(?:\s+[\p{L}][\p{L}'\-]*)*?)(?:\s+(?:et al\.?|dkk\.?))?,?\s+((?:19|20)\d{2})[a-z]?$`)
	// numericPattern matches numeric citations like [1] or [2, 3].
	numericPattern = regexp.MustCompile(`\[\d+(?:\s*[,\-–]\s*\d+)*\]`)
)

// ExtractCitations finds APA in-text citations. Groups with several
// entries, "(Lee, 2021; Putri dkk., 2023)", yield one citation each.
func ExtractCitations(text string) []Citation {
	var out []Citation
	for _, m := range parenPattern.FindAllStringSubmatch(text, -1) {
		for _, part := range strings.Split(m[1], ";") {
			sub := citePattern.FindStringSubmatch(strings.TrimSpace(part))
			if sub == nil {
				continue
			}
			year, _ := strconv.Atoi(sub[2])
			out = append(out, Citation{Author: sub[1], Year: year})
		}
	}
	return out
}

// HasNumericCitations reports whether text uses [n] style citations.
func HasNumericCitations(text string) bool {
	return numericPattern.MatchString(text)
}

// UnmatchedCitations returns the distinct citations in text that match no
// record by first-author family name and year, sorted.
func UnmatchedCitations(text string, records []types.BibliographicRecord) []Citation {
	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[citationKey(recordFamily(r.Author), r.Year)] = true
	}

	seen := make(map[string]bool)
	var missing []Citation
	for _, c := range ExtractCitations(text) {
		key := citationKey(c.Author, c.Year)
		if known[key] || seen[key] {
			continue
		}
		seen[key] = true
		missing = append(missing, c)
	}
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Author != missing[j].Author {
			return missing[i].Author < missing[j].Author
		}
		return missing[i].Year < missing[j].Year
	})
	return missing
}

// recordFamily turns a record's "Smith et al." display string into the
// family name.
func recordFamily(author string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(author), "et al."))
}

func citationKey(author string, year int) string {
	return strings.ToLower(author) + "|" + strconv.Itoa(year)
}
