// Package inference guesses article metadata from posts that carry no header.
//
// Matching is plain case-insensitive substring search over the lowercased
// text. Short keywords therefore fire inside longer words ("un " in "run ",
// "war" in "toward"); the tables are tuned with that in mind.
package inference

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/header"
	"ChannelSync/internal/textnorm"
)

const (
	titleScanLines   = 8
	titleMaxLen      = 100
	boldTitleMinLen  = 15
	plainTitleMinLen = 20
	maxEntities      = 5

	excerptScanLines = 8
	excerptMinLine   = 20
	excerptTarget    = 300
	excerptMaxLen    = 350
	excerptCutFloor  = 100

	untitled = "Untitled"
)

var (
	titleSkip = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:Category|التصنيف)`),
		regexp.MustCompile(`(?i)^(?:Countries?|الدول)`),
		regexp.MustCompile(`(?i)^(?:Orgs?|Organi[sz]ations?|المنظمات)`),
		regexp.MustCompile(`(?i)^(?:Geopolitics?|Geographical)`),
		regexp.MustCompile(`^\d+\.`),
		regexp.MustCompile(`^[IVX]+\.`),
		regexp.MustCompile(`(?i)^\*\*(?:Category|Countries|Orgs)`),
	}
	boldLine     = regexp.MustCompile(`^\*\*(.+?)\*\*$`)
	bulletPrefix = regexp.MustCompile(`^(?:[•·\-–—]+\s*|\d+[.)]\s+)`)
	mention      = regexp.MustCompile(`(?:^|\s)@\w+`)
	markdownLink = regexp.MustCompile(`^\[.*\]\(`)
)

var titleBreaks = []string{". ", ": ", " — ", " - ", ", ", "; "}

// Inferrer applies a fixed vocabulary to post text.
type Inferrer struct {
	vocab Vocabulary
}

// New builds an Inferrer over a private copy of vocab.
func New(vocab Vocabulary) *Inferrer {
	return &Inferrer{vocab: vocab.clone()}
}

// Title picks a headline from the leading lines of text.
func (in *Inferrer) Title(text string) string {
	lines := nonEmptyLines(text)

	for _, line := range lines[:min(len(lines), titleScanLines)] {
		if matchesAny(titleSkip, line) {
			continue
		}

		if m := boldLine.FindStringSubmatch(line); m != nil {
			title := textnorm.Clean(m[1])
			if textnorm.RuneLen(title) >= boldTitleMinLen && strings.Count(title, "|") < 2 {
				return TruncateTitle(title, titleMaxLen)
			}
		}

		if strings.Count(line, "|") >= 2 || isLinkLine(line) {
			continue
		}

		cleaned := stripBullet(textnorm.Clean(line))
		if hasLetters(cleaned) &&
			textnorm.RuneLen(cleaned) >= plainTitleMinLen &&
			strings.Count(cleaned, "|") < 2 &&
			!in.isSectionHeading(cleaned) {
			return TruncateTitle(cleaned, titleMaxLen)
		}
	}

	if len(lines) > 0 {
		if cleaned := stripBullet(textnorm.Clean(lines[0])); cleaned != "" {
			return TruncateTitle(cleaned, titleMaxLen)
		}
	}
	return untitled
}

// Category returns the first bucket with a keyword hit, or the fallback.
func (in *Inferrer) Category(text string) domain.Category {
	lower := strings.ToLower(text)
	for _, bucket := range in.vocab.Buckets {
		for _, kw := range bucket.Keywords {
			if strings.Contains(lower, kw) {
				return bucket.Category
			}
		}
	}
	return in.vocab.Fallback
}

// Countries lists canonical country names mentioned in text.
func (in *Inferrer) Countries(text string) []string {
	return detect(in.vocab.Countries, text)
}

// Organizations lists canonical organization names mentioned in text.
func (in *Inferrer) Organizations(text string) []string {
	return detect(in.vocab.Organizations, text)
}

// Excerpt collects readable body lines after the title. contentStart is a
// raw line offset from a parsed header; zero means "locate the title".
func (in *Inferrer) Excerpt(text, title string, contentStart int) string {
	var (
		lines []string
		start int
	)

	if contentStart > 0 {
		raw := strings.Split(text, "\n")
		lines = nonEmptyLines(strings.Join(raw[min(contentStart, len(raw)):], "\n"))
	} else {
		lines = nonEmptyLines(text)
		for i, line := range lines[:min(len(lines), 5)] {
			cleaned := textnorm.Clean(line)
			if cleaned != "" && (strings.Contains(cleaned, title) || strings.Contains(title, cleaned)) {
				start = i + 1
				break
			}
		}
	}

	var (
		parts []string
		total int
	)
	end := min(len(lines), start+excerptScanLines)
	for i := start; i < end; i++ {
		line := lines[i]
		if isLinkOrMention(line) || strings.HasPrefix(line, "---") || header.IsLabelLine(line) {
			continue
		}
		cleaned := textnorm.Clean(line)
		if textnorm.RuneLen(cleaned) < excerptMinLine {
			continue
		}
		parts = append(parts, cleaned)
		total += textnorm.RuneLen(cleaned)
		if total > excerptTarget {
			break
		}
	}

	excerpt := trimExcerpt(strings.Join(parts, " "))
	if excerpt == "" {
		return title
	}
	return excerpt
}

// TruncateTitle shortens text to maxLen runes, preferring a natural break.
func TruncateTitle(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	const floor = 30
	if maxLen > floor {
		window := string(runes[floor:maxLen])
		for _, punct := range titleBreaks {
			if b := strings.Index(window, punct); b >= 0 {
				idx := floor + utf8.RuneCountInString(window[:b])
				return strings.TrimSpace(string(runes[:idx]))
			}
		}
		if b := strings.LastIndex(string(runes[floor:maxLen-3]), " "); b > 0 {
			idx := floor + utf8.RuneCountInString(window[:b])
			return strings.TrimSpace(string(runes[:idx])) + "..."
		}
	}

	return strings.TrimSpace(string(runes[:maxLen-3])) + "..."
}

func trimExcerpt(excerpt string) string {
	runes := []rune(excerpt)
	if len(runes) <= excerptMaxLen {
		return excerpt
	}

	window := runes[excerptCutFloor:excerptMaxLen]
	if i := lastIndexRune(window, '.'); i > 0 {
		return string(runes[:excerptCutFloor+i+1])
	}
	if i := lastIndexRune(window[:len(window)-3], ' '); i > 0 {
		return string(runes[:excerptCutFloor+i]) + "..."
	}
	return string(runes[:excerptMaxLen-3]) + "..."
}

func lastIndexRune(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

func detect(table map[string]string, text string) []string {
	lower := strings.ToLower(text)
	found := map[string]struct{}{}
	for kw, name := range table {
		if strings.Contains(lower, kw) {
			found[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	slices.Sort(names)
	if len(names) > maxEntities {
		names = names[:maxEntities]
	}
	return names
}

func (in *Inferrer) isSectionHeading(text string) bool {
	lower := strings.ToLower(strings.TrimRight(text, ": "))
	return slices.Contains(in.vocab.SectionHeadings, lower)
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

func stripBullet(text string) string {
	return strings.TrimSpace(bulletPrefix.ReplaceAllString(text, ""))
}

func hasLetters(text string) bool {
	return strings.IndexFunc(text, unicode.IsLetter) >= 0
}

// IsLinkLine reports whether a line is a bare link, handle or link caption.
func IsLinkLine(line string) bool {
	return isLinkLine(line)
}

func isLinkLine(line string) bool {
	switch {
	case strings.HasPrefix(line, "http"), strings.HasPrefix(line, "@"):
		return true
	case strings.Contains(line, "Link to"):
		return true
	case strings.Contains(line, "t.me/") && utf8.RuneCountInString(line) < 50:
		return true
	case markdownLink.MatchString(line):
		return true
	}
	return false
}

func isLinkOrMention(line string) bool {
	return strings.Contains(line, "http") ||
		strings.Contains(line, "t.me/") ||
		strings.Contains(line, "Link to") ||
		mention.MatchString(line)
}
