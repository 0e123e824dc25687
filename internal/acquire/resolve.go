// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// IdentifierType classifies an input identifier.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeDOI
	TypeURL
)

func (t IdentifierType) String() string {
	switch t {
	case TypeDOI:
		return "doi"
	case TypeURL:
		return "url"
	default:
		return "unknown"
	}
}

// doiPattern matches DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)

// doiPrefixes are stripped before matching so resolver links and "doi:"
// forms classify as DOIs.
var doiPrefixes = []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"}

// Classify determines the identifier type and returns the normalized form.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	doi := identifier
	for _, p := range doiPrefixes {
		if len(doi) >= len(p) && strings.EqualFold(doi[:len(p)], p) {
			doi = doi[len(p):]
			break
		}
	}
	if doiPattern.MatchString(doi) {
		return TypeDOI, doi
	}

	if u, err := url.Parse(identifier); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return TypeURL, identifier
	}

	return TypeUnknown, identifier
}

// Slug returns a filesystem-safe filename stem for the identifier.
func Slug(idType IdentifierType, normalized string) string {
	switch idType {
	case TypeDOI:
		return strings.NewReplacer("/", "-", ":", "-").Replace(normalized)
	case TypeURL:
		u, err := url.Parse(normalized)
		if err != nil {
			return urlHashSlug(normalized)
		}
		base := strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
		if base == "" || base == "." || base == "/" {
			return urlHashSlug(normalized)
		}
		return base
	default:
		return "unknown"
	}
}

func urlHashSlug(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return fmt.Sprintf("url-%x", h[:8])
}
