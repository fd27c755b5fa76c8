package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/scanner"
)

var trailingID = regexp.MustCompile(`/(\d+)/?(?:\?.*)?$`)

// RSSScanner reads a channel mirror feed (RSSHub and similar bridges).
// Message ids come from the trailing number of each item link.
type RSSScanner struct {
	client    *http.Client
	userAgent string
	policy    *bluemonday.Policy
	logger    *slog.Logger
}

// NewRSSScanner wires an HTTP client for feed requests.
func NewRSSScanner(client *http.Client, userAgent string, logger *slog.Logger) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}

	policy := bluemonday.NewPolicy()
	policy.AllowElements("p", "br", "b", "strong", "i", "em", "a", "blockquote", "div")

	return &RSSScanner{client: client, userAgent: userAgent, policy: policy, logger: logger}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return "rss"
}

// Scan parses the channel feed and returns items newer than req.AfterID.
func (r *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawMessage, error) {
	if req.Channel.FeedURL == "" {
		return nil, fmt.Errorf("channel %s has no feed url", req.Channel.Key)
	}

	fp := gofeed.NewParser()
	fp.Client = r.client
	if r.userAgent != "" {
		fp.UserAgent = r.userAgent
	}

	feed, err := fp.ParseURLWithContext(req.Channel.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.Channel.FeedURL, err)
	}

	var results []domain.RawMessage
	for _, item := range feed.Items {
		msg, ok := r.toMessage(req.Channel.Username, item)
		if !ok {
			r.logger.Debug("feed item without message id", "link", item.Link)
			continue
		}
		if msg.ID <= req.AfterID {
			continue
		}
		results = append(results, msg)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

func (r *RSSScanner) toMessage(username string, item *gofeed.Item) (domain.RawMessage, bool) {
	m := trailingID.FindStringSubmatch(item.Link)
	if m == nil {
		return domain.RawMessage{}, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return domain.RawMessage{}, false
	}

	msg := domain.RawMessage{Channel: username, ID: id}
	switch {
	case item.PublishedParsed != nil:
		msg.Date = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		msg.Date = item.UpdatedParsed.UTC()
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}
	msg.Text = r.htmlToText(body)

	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		size, _ := strconv.ParseInt(enc.Length, 10, 64)
		switch {
		case strings.HasPrefix(enc.Type, "image/"):
			msg.Media = append(msg.Media, domain.Media{Kind: domain.MediaPhoto, URL: enc.URL, MimeType: enc.Type, Size: size})
		case strings.HasPrefix(enc.Type, "video/"):
			msg.Media = append(msg.Media, domain.Media{Kind: domain.MediaVideo, URL: enc.URL, MimeType: enc.Type, Size: size})
		}
	}
	if len(msg.Media) == 0 && item.Image != nil && item.Image.URL != "" {
		msg.Media = append(msg.Media, domain.Media{Kind: domain.MediaPhoto, URL: item.Image.URL, MimeType: "image/jpeg"})
	}

	return msg, true
}

func (r *RSSScanner) htmlToText(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	cleaned := r.policy.Sanitize(body)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleaned))
	if err != nil {
		return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(body))
	}
	return renderText(doc.Find("body"))
}
