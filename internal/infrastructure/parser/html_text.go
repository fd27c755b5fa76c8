package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// renderText flattens post HTML into plain text, keeping line breaks and
// marking bold runs with **.
func renderText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		renderNode(&b, s)
	})

	out := strings.ReplaceAll(b.String(), "\u00a0", " ")
	out = trailingSpace.ReplaceAllString(out, "\n")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func renderNode(b *strings.Builder, s *goquery.Selection) {
	node := s.Get(0)
	switch node.Type {
	case html.TextNode:
		b.WriteString(node.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch node.Data {
	case "br":
		b.WriteString("\n")
	case "script", "style":
	case "p", "div", "blockquote":
		renderChildren(b, s)
		b.WriteString("\n")
	case "b", "strong":
		var inner strings.Builder
		renderChildren(&inner, s)
		if text := strings.TrimSpace(inner.String()); text != "" {
			b.WriteString("**" + text + "**")
		}
	case "i":
		// Telegram draws custom emoji as <i class="emoji"><b>X</b></i>.
		if s.HasClass("emoji") {
			b.WriteString(s.Text())
			return
		}
		renderChildren(b, s)
	default:
		renderChildren(b, s)
	}
}

func renderChildren(b *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		renderNode(b, child)
	})
}
