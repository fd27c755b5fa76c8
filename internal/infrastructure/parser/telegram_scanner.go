package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/scanner"
)

const (
	telegramBaseURL  = "https://t.me"
	defaultScanLimit = 100
	maxPages         = 50
)

var backgroundURL = regexp.MustCompile(`background-image:\s*url\(['"]?([^'")]+)['"]?\)`)

// TelegramWebScanner reads the public web preview of a channel
// (https://t.me/s/<username>), paging backwards with ?before=<id>.
type TelegramWebScanner struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    *slog.Logger
}

// NewTelegramWebScanner wires an HTTP client; baseURL defaults to https://t.me.
func NewTelegramWebScanner(client *http.Client, baseURL, userAgent string, logger *slog.Logger) *TelegramWebScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = telegramBaseURL
	}
	if userAgent == "" {
		userAgent = "ChannelSync/1.0"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramWebScanner{
		client:    client,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		logger:    logger,
	}
}

// Name identifies the strategy inside the registry.
func (t *TelegramWebScanner) Name() string {
	return "telegram_web"
}

// Scan walks pages from the newest post backwards until it reaches
// req.AfterID, collects req.Limit messages, or runs out of history.
func (t *TelegramWebScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawMessage, error) {
	username := req.Channel.Username
	if username == "" {
		return nil, fmt.Errorf("channel %s has no username", req.Channel.Key)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultScanLimit
	}

	var (
		results []domain.RawMessage
		seen    = map[int64]struct{}{}
		before  int64
	)

	for page := 0; page < maxPages; page++ {
		pageURL, err := buildPageURL(t.baseURL, username, before)
		if err != nil {
			return nil, err
		}

		doc, err := t.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", username, err)
		}

		messages := extractMessages(doc, username)
		t.logger.Debug("telegram page parsed", "channel", username, "before", before, "messages", len(messages))
		if len(messages) == 0 {
			break
		}

		oldest := messages[0].ID
		reachedCursor := false
		for i := len(messages) - 1; i >= 0; i-- {
			msg := messages[i]
			oldest = min(oldest, msg.ID)
			if msg.ID <= req.AfterID {
				reachedCursor = true
				continue
			}
			if _, dup := seen[msg.ID]; dup {
				continue
			}
			seen[msg.ID] = struct{}{}
			results = append(results, msg)
			if len(results) >= limit {
				return results, nil
			}
		}

		if reachedCursor || oldest <= 1 || (before != 0 && oldest >= before) {
			break
		}
		before = oldest
	}

	return results, nil
}

func (t *TelegramWebScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// extractMessages returns the page's posts in page order (oldest first).
func extractMessages(doc *goquery.Document, username string) []domain.RawMessage {
	var out []domain.RawMessage
	doc.Find(".tgme_widget_message[data-post]").Each(func(_ int, sel *goquery.Selection) {
		if sel.HasClass("service_message") {
			return
		}
		if msg, ok := parseMessage(sel, username); ok {
			out = append(out, msg)
		}
	})
	return out
}

func parseMessage(sel *goquery.Selection, username string) (domain.RawMessage, bool) {
	post, _ := sel.Attr("data-post")
	idx := strings.LastIndex(post, "/")
	if idx < 0 {
		return domain.RawMessage{}, false
	}
	id, err := strconv.ParseInt(post[idx+1:], 10, 64)
	if err != nil {
		return domain.RawMessage{}, false
	}

	msg := domain.RawMessage{Channel: username, ID: id}

	if stamp, ok := sel.Find(".tgme_widget_message_date time").First().Attr("datetime"); ok {
		if parsed, err := time.Parse(time.RFC3339, stamp); err == nil {
			msg.Date = parsed.UTC()
		}
	}

	if text := sel.Find(".js-message_text").First(); text.Length() > 0 {
		msg.Text = renderText(text)
	}

	sel.Find(".tgme_widget_message_photo_wrap").Each(func(_ int, photo *goquery.Selection) {
		style, _ := photo.Attr("style")
		if m := backgroundURL.FindStringSubmatch(style); m != nil {
			msg.Media = append(msg.Media, domain.Media{Kind: domain.MediaPhoto, URL: m[1], MimeType: "image/jpeg"})
		}
	})
	sel.Find("video.tgme_widget_message_video").Each(func(_ int, video *goquery.Selection) {
		if src, ok := video.Attr("src"); ok && src != "" {
			msg.Media = append(msg.Media, domain.Media{Kind: domain.MediaVideo, URL: src, MimeType: "video/mp4"})
		}
	})

	return msg, true
}

func buildPageURL(base, username string, before int64) (string, error) {
	parsed, err := url.Parse(base + "/s/" + url.PathEscape(username))
	if err != nil {
		return "", fmt.Errorf("invalid channel url for %s: %w", username, err)
	}

	if before > 0 {
		query := parsed.Query()
		query.Set("before", strconv.FormatInt(before, 10))
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}
