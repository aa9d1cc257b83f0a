package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugLength = 200
	slugSuffixLen = 8
)

var (
	lower         = cases.Lower(language.Und)
	stripAccents  = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	fallbackTitle = "post"
)

// Slugify formats a title as a URL path segment. Accents are folded to their
// base letter, letters and digits are kept, and every other run of characters
// becomes a single hyphen.
func Slugify(title string) string {
	folded, _, err := transform.String(stripAccents, strings.TrimSpace(title))
	if err != nil {
		folded = title
	}
	folded = lower.String(folded)

	var result strings.Builder
	pendingHyphen := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && result.Len() > 0 {
				result.WriteByte('-')
			}
			pendingHyphen = false
			result.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := result.String()
	// Leave room for a uniqueness suffix.
	if limit := maxSlugLength - slugSuffixLen - 1; len(slug) > limit {
		slug = strings.TrimRight(slug[:limit], "-")
	}
	if slug == "" {
		return fallbackTitle
	}
	return slug
}
