package provider

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeIdentifier lowercases, trims, and strips diacritics so that
// "Café Römer" and "cafe romer" resolve to the same dataset entry.
func normalizeIdentifier(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(stripMarks, s); err == nil {
		return out
	}
	return s
}

// looksLikeURL reports whether an identifier should be resolved by
// website match rather than name match.
func looksLikeURL(identifier string) bool {
	return strings.HasPrefix(identifier, "http://") ||
		strings.HasPrefix(identifier, "https://") ||
		strings.HasPrefix(identifier, "www.")
}

// stripURLPrefix removes scheme and www prefixes plus any trailing slash
// so URLs compare by host and path only.
func stripURLPrefix(u string) string {
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "www.")
	return strings.TrimSuffix(u, "/")
}
