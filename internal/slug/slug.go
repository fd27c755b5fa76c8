// Package slug derives URL-safe article slugs from titles.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxLen = 80
	minLen = 5
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	dashRuns   = regexp.MustCompile(`[\s-]+`)
)

// Generate turns title into a lowercase ASCII slug of at most 80 characters.
// Titles with too few Latin characters (Arabic headlines, for instance) get a
// stable "article-<hash>" token derived from fallbackID instead.
func Generate(title, fallbackID string) string {
	s := sanitize(title)
	if len(s) < minLen {
		return fmt.Sprintf("article-%08x", hashString(fallbackID))
	}
	return s
}

func sanitize(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	s := strings.ToLower(folded)
	s = disallowed.ReplaceAllString(s, "")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	return s
}

// hashString is the 31-multiplier string hash over UTF-16 code units, so
// fallback slugs agree with those minted by the site's own tooling.
func hashString(s string) uint32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(unit)
	}
	return uint32(h)
}

// Registry hands out unique slugs for one sync run.
type Registry struct {
	used map[string]struct{}
}

// NewRegistry seeds a registry with slugs that are already taken.
func NewRegistry(taken []string) *Registry {
	r := &Registry{used: make(map[string]struct{}, len(taken))}
	for _, s := range taken {
		r.used[s] = struct{}{}
	}
	return r
}

// Claim reserves a slug for title, appending -2, -3, ... on collision.
func (r *Registry) Claim(title, fallbackID string) string {
	base := Generate(title, fallbackID)
	candidate := base
	for n := 2; r.Taken(candidate); n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	r.used[candidate] = struct{}{}
	return candidate
}

// Reserve marks s as taken.
func (r *Registry) Reserve(s string) {
	r.used[s] = struct{}{}
}

// Taken reports whether s is already in use.
func (r *Registry) Taken(s string) bool {
	_, ok := r.used[s]
	return ok
}
