package ports

import (
	"context"
	"time"

	"ChannelSync/internal/domain"
)

// MessageSource reads raw posts from a channel.
type MessageSource interface {
	// FetchSince returns posts with an id greater than afterID, newest first,
	// at most limit of them.
	FetchSince(ctx context.Context, ch domain.Channel, afterID int64, limit int) ([]domain.RawMessage, error)
	// FetchAll returns up to limit of the most recent posts.
	FetchAll(ctx context.Context, ch domain.Channel, limit int) ([]domain.RawMessage, error)
}

// ArticleStore persists articles keyed by external id.
type ArticleStore interface {
	ListByChannel(ctx context.Context, channel string) ([]domain.Article, error)
	ListSlugs(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, article domain.Article) error
	Delete(ctx context.Context, externalID string) error
}

// ObjectStore keeps binary blobs and returns their public URL.
type ObjectStore interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// MediaResolver uploads an article's attachments.
type MediaResolver interface {
	Resolve(ctx context.Context, externalID string, media []domain.Media) (domain.MediaRefs, error)
}

// CursorStore persists per-channel sync cursors.
type CursorStore interface {
	Load(ctx context.Context, channel string) (domain.SyncCursor, error)
	Save(ctx context.Context, channel string, cursor domain.SyncCursor) error
}

// Notifier delivers run reports to operators.
type Notifier interface {
	PublishReport(ctx context.Context, report string) error
}

// EventPublisher broadcasts article changes to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ArticleEvent) error
}

// RunMetrics records run outcomes.
type RunMetrics interface {
	ObserveChannel(channel string, fetched, rejected int, stats domain.SyncStats)
	ObserveRun(started time.Time, err error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
