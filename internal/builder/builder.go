// Package builder turns a message group into an article record.
package builder

import (
	"strings"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/header"
	"ChannelSync/internal/inference"
	"ChannelSync/internal/textnorm"
)

// MinBodyLen is the smallest cleaned body, in characters, worth publishing.
const MinBodyLen = 100

// Builder assembles articles. It has no side effects.
type Builder struct {
	infer *inference.Inferrer
}

// New returns a Builder that falls back to infer for missing metadata.
func New(infer *inference.Inferrer) *Builder {
	return &Builder{infer: infer}
}

// Build produces the article for group. The boolean is false when the
// combined body is too thin to publish.
func (b *Builder) Build(ch domain.Channel, group domain.MessageGroup) (domain.Article, bool) {
	if group.Len() == 0 {
		return domain.Article{}, false
	}

	body := combine(group)
	if !Substantial(body) {
		return domain.Article{}, false
	}

	anchor := group.Anchor()
	article := domain.Article{
		ExternalID:  domain.ExternalID(ch.Username, anchor.ID),
		Channel:     ch.Key,
		Content:     body,
		SourceLink:  domain.SourceLink(ch.Username, anchor.ID),
		PublishedAt: anchor.Date,
		Status:      domain.StatusPublished,
		PartCount:   group.Len(),
	}

	contentStart := 0
	if h, ok := header.Parse(anchor.Text); ok {
		article.IsStructured = true
		article.Title = h.Title
		article.Category = h.Category
		article.Countries = h.Countries
		article.Organizations = h.Organizations
		contentStart = h.ContentStart
	} else {
		article.Title = b.infer.Title(body)
	}

	if article.Category == "" {
		article.Category = b.infer.Category(body)
	}
	if len(article.Countries) == 0 {
		article.Countries = b.infer.Countries(body)
	}
	if len(article.Organizations) == 0 {
		article.Organizations = b.infer.Organizations(body)
	}
	article.Excerpt = b.infer.Excerpt(body, article.Title, contentStart)

	for _, m := range group.Messages {
		article.MediaCandidates = append(article.MediaCandidates, m.Media...)
	}
	return article, true
}

// Substantial applies the minimum-substance check to a combined body.
func Substantial(body string) bool {
	if textnorm.RuneLen(textnorm.Clean(body)) < MinBodyLen {
		return false
	}

	var lines, links int
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines++
		if strings.Contains(line, "t.me/") || strings.HasPrefix(line, "http") {
			links++
		}
	}
	return !(lines <= 3 && links > 0 && links >= lines-1)
}

func combine(group domain.MessageGroup) string {
	parts := make([]string, 0, group.Len())
	for _, m := range group.Messages {
		if m.Text != "" {
			parts = append(parts, m.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
