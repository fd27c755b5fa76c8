package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/ports"
)

const (
	MaxPhotoBytes int64 = 10 << 20
	MaxVideoBytes int64 = 50 << 20
)

// ErrTooLarge marks a candidate that exceeds its size cap.
var ErrTooLarge = errors.New("media exceeds size limit")

// Resolver downloads an article's first photo and first video and
// republishes them through the object store.
type Resolver struct {
	client *http.Client
	store  ports.ObjectStore
	logger *slog.Logger
}

var _ ports.MediaResolver = (*Resolver)(nil)

// NewResolver wires the download client and upload target.
func NewResolver(client *http.Client, store ports.ObjectStore, logger *slog.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{client: client, store: store, logger: logger}
}

// Resolve uploads at most one photo and one video. A candidate that fails is
// skipped in favour of the next one of the same kind; the returned error
// joins all failures and is nil when nothing went wrong.
func (r *Resolver) Resolve(ctx context.Context, externalID string, candidates []domain.Media) (domain.MediaRefs, error) {
	var (
		refs domain.MediaRefs
		errs []error
	)

	for _, m := range candidates {
		switch m.Kind {
		case domain.MediaPhoto:
			if refs.ImageURL != "" {
				continue
			}
			u, err := r.transfer(ctx, externalID, m, MaxPhotoBytes)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			refs.ImageURL = u
		case domain.MediaVideo:
			if refs.VideoURL != "" {
				continue
			}
			u, err := r.transfer(ctx, externalID, m, MaxVideoBytes)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			refs.VideoURL = u
		}
	}

	if !refs.Empty() {
		for _, err := range errs {
			r.logger.Warn("media candidate skipped", "external_id", externalID, "error", err)
		}
		return refs, nil
	}
	return refs, errors.Join(errs...)
}

func (r *Resolver) transfer(ctx context.Context, externalID string, m domain.Media, limit int64) (string, error) {
	if m.Size > limit {
		return "", fmt.Errorf("%s %s: %w", m.Kind, m.URL, ErrTooLarge)
	}

	data, contentType, err := r.download(ctx, m.URL, limit)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", m.Kind, m.URL, err)
	}
	if m.MimeType != "" {
		contentType = m.MimeType
	}
	if contentType == "" {
		contentType = defaultContentType(m.Kind)
	}

	name := ObjectName(externalID, m.Kind, contentType)
	u, err := r.store.Upload(ctx, name, contentType, data)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", m.Kind, m.URL, err)
	}
	r.logger.Debug("media uploaded", "external_id", externalID, "kind", m.Kind, "bytes", len(data))
	return u, nil
}

func (r *Resolver) download(ctx context.Context, url string, limit int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download returned %s", resp.Status)
	}
	if resp.ContentLength > limit {
		return nil, "", ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", ErrTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = parsed
	}
	return data, contentType, nil
}

// ObjectName derives a stable storage name, e.g. "chan_10_photo.jpg".
func ObjectName(externalID string, kind domain.MediaKind, contentType string) string {
	base := strings.ReplaceAll(externalID, "/", "_") + "_" + string(kind)
	return base + extension(kind, contentType)
}

func extension(kind domain.MediaKind, contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	}
	if kind == domain.MediaVideo {
		return ".mp4"
	}
	return ".jpg"
}

func defaultContentType(kind domain.MediaKind) string {
	if kind == domain.MediaVideo {
		return "video/mp4"
	}
	return "image/jpeg"
}
