// Package syncer reconciles freshly built articles with the article store.
package syncer

import (
	"context"
	"log/slog"
	"time"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/ports"
	"ChannelSync/internal/slug"
)

// Snapshot is the stored state of one channel, read once per run.
type Snapshot struct {
	Channel  string
	Existing map[string]domain.Article
	Slugs    *slug.Registry
	// Degraded is set when stored state could not be read and the run
	// proceeds as if the store were empty.
	Degraded bool
}

// Media returns media already stored for externalID.
func (s *Snapshot) Media(externalID string) (domain.MediaRefs, bool) {
	a, ok := s.Existing[externalID]
	if !ok || a.Media().Empty() {
		return domain.MediaRefs{}, false
	}
	return a.Media(), true
}

// Result is the outcome of one Apply call.
type Result struct {
	Stats   domain.SyncStats
	Changes []domain.ArticleEvent
}

// Engine classifies articles as inserts, updates or no-ops and writes them.
type Engine struct {
	store  ports.ArticleStore
	logger *slog.Logger
	now    func() time.Time
}

// New returns an Engine writing to store.
func New(store ports.ArticleStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger, now: time.Now}
}

// Snapshot loads the channel's stored articles and the store-wide slug set.
// Read failures are logged and yield an empty, degraded snapshot.
func (e *Engine) Snapshot(ctx context.Context, channel string) *Snapshot {
	snap := &Snapshot{
		Channel:  channel,
		Existing: map[string]domain.Article{},
	}

	existing, err := e.store.ListByChannel(ctx, channel)
	if err != nil {
		e.logger.Warn("load existing articles failed, assuming empty store", "channel", channel, "error", err)
		snap.Degraded = true
		existing = nil
	}
	for _, a := range existing {
		snap.Existing[a.ExternalID] = a
	}

	slugs, err := e.store.ListSlugs(ctx)
	if err != nil {
		e.logger.Warn("load slugs failed, assuming none taken", "channel", channel, "error", err)
		snap.Degraded = true
		slugs = nil
	}
	snap.Slugs = slug.NewRegistry(slugs)
	return snap
}

// Apply writes articles against snap. Write failures are counted and logged
// and never stop the batch. When full is set, stored articles of the channel
// that are missing from articles are deleted.
func (e *Engine) Apply(ctx context.Context, snap *Snapshot, articles []domain.Article, full bool) Result {
	var res Result
	res.Stats.Total = len(articles)
	built := make(map[string]struct{}, len(articles))

	for _, article := range articles {
		built[article.ExternalID] = struct{}{}

		prev, exists := snap.Existing[article.ExternalID]
		switch {
		case !exists:
			article.Slug = snap.Slugs.Claim(article.Title, article.ExternalID)
			if err := e.store.Upsert(ctx, article); err != nil {
				e.logger.Error("insert article failed", "external_id", article.ExternalID, "error", err)
				res.Stats.Errors++
				continue
			}
			res.Stats.Inserted++
			res.Changes = append(res.Changes, e.event(domain.ChangeInserted, article))
		case Fingerprint(prev) == Fingerprint(article):
			res.Stats.Skipped++
			continue
		default:
			article.Slug = prev.Slug
			if article.Slug == "" {
				article.Slug = snap.Slugs.Claim(article.Title, article.ExternalID)
			}
			if err := e.store.Upsert(ctx, article); err != nil {
				e.logger.Error("update article failed", "external_id", article.ExternalID, "error", err)
				res.Stats.Errors++
				continue
			}
			res.Stats.Updated++
			res.Changes = append(res.Changes, e.event(domain.ChangeUpdated, article))
		}
		snap.Existing[article.ExternalID] = article
	}

	if full {
		e.deleteOrphans(ctx, snap, built, &res)
	}
	return res
}

func (e *Engine) deleteOrphans(ctx context.Context, snap *Snapshot, built map[string]struct{}, res *Result) {
	for id, stored := range snap.Existing {
		if _, ok := built[id]; ok {
			continue
		}
		if err := e.store.Delete(ctx, id); err != nil {
			e.logger.Error("delete orphan failed", "external_id", id, "error", err)
			res.Stats.Errors++
			continue
		}
		e.logger.Info("deleted orphan article", "external_id", id, "slug", stored.Slug)
		delete(snap.Existing, id)
		res.Stats.Deleted++
		res.Changes = append(res.Changes, e.event(domain.ChangeDeleted, stored))
	}
}

func (e *Engine) event(kind domain.ChangeKind, a domain.Article) domain.ArticleEvent {
	return domain.ArticleEvent{
		Kind:       kind,
		ExternalID: a.ExternalID,
		Channel:    a.Channel,
		Slug:       a.Slug,
		Title:      a.Title,
		Category:   a.Category,
		OccurredAt: e.now(),
	}
}
