// Package header detects an explicit metadata block at the top of a post.
//
// Channels write headers in several styles, for example:
//
//	**Title**
//	**Strikes on Hodeidah port**
//	**Category**: Military
//	COUNTRIES: Yemen, Israel
//
// Each field is recognised in three tiers: a bold label with the value on a
// following line, a label and value on the same line (bold or half bold), and
// the legacy plain "LABEL: value" form. Labels are accepted in English and Arabic.
package header

import (
	"regexp"
	"strings"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/textnorm"
)

const (
	scanLines    = 15
	lookahead    = 2
	maxTitleLen  = 150
	maxListItems = 5
)

// ParsedHeader is the metadata found in a post header.
type ParsedHeader struct {
	Title         string
	Category      domain.Category
	Countries     []string
	Organizations []string
	// ContentStart is the raw line index where free body text begins.
	ContentStart int
}

// HasCategory reports whether a valid category was declared.
func (h ParsedHeader) HasCategory() bool {
	return h.Category != ""
}

type field int

const (
	fieldTitle field = iota
	fieldCategory
	fieldCountries
	fieldOrganizations
)

var labels = map[field]string{
	fieldTitle:         `Title|العنوان`,
	fieldCategory:      `Category|CAT|التصنيف`,
	fieldCountries:     `Countries\s+Involved|Countries|Country|الدول`,
	fieldOrganizations: `Organi[sz]ations?|Orgs?|المنظمات`,
}

// sep accepts a colon, or a dash set off by whitespace so "Country-wide" is not a label.
const sep = `(?:\s*:|\s+[\-–—])\s*`

// rule matches one surface syntax of one field. A rule without a capture
// group is a label-only line whose value follows on a later line.
type rule struct {
	field   field
	pattern *regexp.Regexp
}

func (r rule) labelOnly() bool {
	return r.pattern.NumSubexp() == 0
}

var rules = buildRules()

func buildRules() []rule {
	var out []rule
	for _, f := range []field{fieldTitle, fieldCategory, fieldCountries, fieldOrganizations} {
		l := labels[f]
		for _, expr := range []string{
			`^\*\*(?:` + l + `)\s*:?\s*\*\*\s*:?$`,
			`^\*\*(?:` + l + `)` + sep + `(.+?)\*\*$`,
			`^\*\*(?:` + l + `)\*\*\s*[:\-–—]?\s*(.+)$`,
			`^\*\*(?:` + l + `)` + sep + `(.+)$`,
			`^(?:` + l + `)` + sep + `(.+)$`,
		} {
			out = append(out, rule{field: f, pattern: regexp.MustCompile(`(?i)` + expr)})
		}
	}
	return out
}

var (
	boldValue = regexp.MustCompile(`^\*\*(.+?)\*\*$`)
	listSep   = regexp.MustCompile(`[|,،]`)
)

// Parse scans the leading lines of text for a header. The boolean is true
// only when a title was found; a header without a title is ignored.
func Parse(text string) (ParsedHeader, bool) {
	var (
		result ParsedHeader
		seen   = map[field]bool{}
		last   = -1
	)

	lines := strings.Split(text, "\n")
	limit := min(len(lines), scanLines)

	for i := 0; i < limit; i++ {
		line := normalizeLine(lines[i])
		if line == "" {
			continue
		}

		r, value, ok := matchLine(line)
		if !ok {
			continue
		}
		end := i

		if r.labelOnly() {
			var j int
			value, j = lookupValue(lines, i)
			if j < 0 {
				continue
			}
			end = j
		}

		if seen[r.field] {
			continue
		}
		if apply(&result, r.field, value) {
			seen[r.field] = true
			last = max(last, end)
		}
	}

	if result.Title == "" {
		return ParsedHeader{}, false
	}
	result.ContentStart = last + 1
	return result, true
}

// IsLabelLine reports whether line is a header line for any known field.
func IsLabelLine(line string) bool {
	_, _, ok := matchLine(normalizeLine(line))
	return ok
}

func normalizeLine(line string) string {
	return strings.TrimSpace(textnorm.TrimDecorPrefix(line))
}

func matchLine(line string) (rule, string, bool) {
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if r.labelOnly() {
			return r, "", true
		}
		return r, m[1], true
	}
	return rule{}, "", false
}

func lookupValue(lines []string, from int) (string, int) {
	end := min(len(lines), from+1+lookahead)
	for j := from + 1; j < end; j++ {
		candidate := normalizeLine(lines[j])
		if candidate == "" {
			continue
		}
		if _, _, isLabel := matchLine(candidate); isLabel {
			continue
		}
		if m := boldValue.FindStringSubmatch(candidate); m != nil {
			candidate = m[1]
		}
		return candidate, j
	}
	return "", -1
}

func apply(h *ParsedHeader, f field, value string) bool {
	switch f {
	case fieldTitle:
		title := textnorm.Truncate(textnorm.Clean(value), maxTitleLen)
		if title == "" {
			return false
		}
		h.Title = title
	case fieldCategory:
		cat, ok := domain.ParseCategory(textnorm.Clean(value))
		if !ok {
			return false
		}
		h.Category = cat
	case fieldCountries:
		items := SplitList(value)
		if len(items) == 0 {
			return false
		}
		h.Countries = items
	case fieldOrganizations:
		items := SplitList(value)
		if len(items) == 0 {
			return false
		}
		h.Organizations = items
	}
	return true
}

// SplitList splits a comma, pipe or Arabic-comma separated value into at
// most five cleaned, distinct entries.
func SplitList(value string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range listSep.Split(value, -1) {
		item := textnorm.Clean(strings.Map(func(r rune) rune {
			if textnorm.IsFlag(r) {
				return -1
			}
			return r
		}, part))
		if item == "" || seen[strings.ToLower(item)] {
			continue
		}
		seen[strings.ToLower(item)] = true
		out = append(out, item)
		if len(out) == maxListItems {
			break
		}
	}
	return out
}
