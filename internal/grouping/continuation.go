package grouping

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"ChannelSync/internal/header"
	"ChannelSync/internal/textnorm"
)

var (
	boldHeader = regexp.MustCompile(`^\*\*.+?\*\*`)
	numbered   = regexp.MustCompile(`^(\d+)[.)]\s`)
	roman      = regexp.MustCompile(`^([IVX]+)[.)]\s`)
)

const bullets = "•-–—·"

// IsContinuation guesses whether text picks up mid-article rather than
// opening a new post: it starts lowercase, or continues a numbered or roman
// list past its first item. Header lines never continue anything.
func IsContinuation(text string) bool {
	rest := strings.TrimLeftFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || textnorm.IsDecorative(r) || strings.ContainsRune(bullets, r)
	})
	if rest == "" {
		return false
	}

	firstLine, _, _ := strings.Cut(rest, "\n")
	if boldHeader.MatchString(firstLine) || header.IsLabelLine(firstLine) {
		return false
	}

	if r, _ := utf8.DecodeRuneInString(rest); unicode.IsLower(r) {
		return true
	}
	if m := numbered.FindStringSubmatch(rest); m != nil {
		n, err := strconv.Atoi(m[1])
		return err == nil && n >= 2
	}
	if m := roman.FindStringSubmatch(rest); m != nil {
		return romanValue(m[1]) >= 2
	}
	return false
}

func romanValue(s string) int {
	values := map[byte]int{'I': 1, 'V': 5, 'X': 10}
	total := 0
	for i := 0; i < len(s); i++ {
		v := values[s[i]]
		if i+1 < len(s) && values[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	return total
}
