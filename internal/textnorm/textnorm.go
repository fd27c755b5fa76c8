// Package textnorm cleans channel post text for matching and display.
package textnorm

import (
	"strings"
	"unicode"
)

// decorative covers pictographs, dingbats, variation selectors and flags.
var decorative = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2300, Hi: 0x23FF, Stride: 1},
		{Lo: 0x2600, Hi: 0x26FF, Stride: 1},
		{Lo: 0x2700, Hi: 0x27BF, Stride: 1},
		{Lo: 0xFE00, Hi: 0xFE0F, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E0, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F9FF, Stride: 1},
	},
}

// markers are status glyphs channels put in front of headlines.
const markers = "🔴🔵🟢🟡⚫⚪🔻🔺📌🖋👍✅❌⚠🚨📢📣📂🌍🏛📊"

// IsDecorative reports whether r is removed by Clean.
func IsDecorative(r rune) bool {
	return unicode.Is(decorative, r) || strings.ContainsRune(markers, r)
}

// IsFlag reports whether r is a regional indicator symbol.
func IsFlag(r rune) bool {
	return r >= 0x1F1E0 && r <= 0x1F1FF
}

// Clean removes decorative symbols and emphasis markers and collapses whitespace.
func Clean(text string) string {
	stripped := strings.Map(func(r rune) rune {
		if r == '*' || r == '_' || IsDecorative(r) {
			return -1
		}
		return r
	}, text)
	return strings.Join(strings.Fields(stripped), " ")
}

// TrimDecorPrefix drops leading whitespace and decorative symbols.
func TrimDecorPrefix(text string) string {
	return strings.TrimLeftFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || IsDecorative(r)
	})
}

// RuneLen counts characters rather than bytes.
func RuneLen(text string) int {
	return len([]rune(text))
}

// Truncate cuts text to at most limit runes.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
