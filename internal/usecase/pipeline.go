package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ChannelSync/internal/builder"
	"ChannelSync/internal/domain"
	"ChannelSync/internal/grouping"
	"ChannelSync/internal/inference"
	"ChannelSync/internal/ports"
	"ChannelSync/internal/syncer"
	"ChannelSync/internal/textnorm"
)

// minMessageLen drops stickers, reactions and one-word posts before grouping.
const minMessageLen = 20

// ErrUnknownChannel is returned when a channel filter matches nothing.
var ErrUnknownChannel = errors.New("unknown channel")

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Channels   []domain.Channel
	Source     ports.MessageSource
	Store      ports.ArticleStore
	Media      ports.MediaResolver
	Cursors    ports.CursorStore
	Notifier   ports.Notifier
	Events     ports.EventPublisher
	Metrics    ports.RunMetrics
	Vocabulary inference.Vocabulary
	Thresholds grouping.Thresholds
	Logger     *slog.Logger
}

// RunOptions selects what a single pass processes.
type RunOptions struct {
	// Full refetches everything and deletes orphaned articles.
	Full bool
	// Channel restricts the pass to one channel key.
	Channel string
	// Limit caps messages fetched per channel; zero means the source default.
	Limit int
}

// Pipeline implements the channel-to-article sync workflow.
type Pipeline struct {
	channels   []domain.Channel
	source     ports.MessageSource
	media      ports.MediaResolver
	cursors    ports.CursorStore
	notifier   ports.Notifier
	events     ports.EventPublisher
	metrics    ports.RunMetrics
	thresholds grouping.Thresholds
	builder    *builder.Builder
	engine     *syncer.Engine
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	vocab := deps.Vocabulary
	if len(vocab.Buckets) == 0 {
		vocab = inference.DefaultVocabulary()
	}
	th := deps.Thresholds
	if th.Base == 0 {
		th = grouping.DefaultThresholds()
	}

	return &Pipeline{
		channels:   deps.Channels,
		source:     deps.Source,
		media:      deps.Media,
		cursors:    deps.Cursors,
		notifier:   deps.Notifier,
		events:     deps.Events,
		metrics:    deps.Metrics,
		thresholds: th,
		builder:    builder.New(inference.New(vocab)),
		engine:     syncer.New(deps.Store, logger.With("component", "syncer")),
		logger:     logger,
		now:        time.Now,
	}
}

// Run performs one sync pass over the selected channels. A failing channel
// does not stop the others; their errors are joined into the result.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (Report, error) {
	report := Report{RunID: uuid.NewString(), Full: opts.Full, Started: p.now()}
	logger := p.logger.With("run_id", report.RunID)

	channels, err := p.selectChannels(opts.Channel)
	if err != nil {
		return report, err
	}
	if p.source == nil {
		return report, fmt.Errorf("message source is not configured")
	}

	logger.InfoContext(ctx, "sync started", "channels", len(channels), "full", opts.Full, "limit", opts.Limit)

	var errs []error
	for _, ch := range channels {
		chReport := p.syncChannel(ctx, logger.With("channel", ch.Key), ch, opts)
		if chReport.Err != nil {
			errs = append(errs, chReport.Err)
		}
		report.Channels = append(report.Channels, chReport)
		report.Totals.Add(chReport.Stats)
	}
	report.Finished = p.now()
	runErr := errors.Join(errs...)

	if p.metrics != nil {
		p.metrics.ObserveRun(report.Started, runErr)
	}

	t := report.Totals
	logger.InfoContext(ctx, "sync finished",
		"total", t.Total, "inserted", t.Inserted, "updated", t.Updated,
		"skipped", t.Skipped, "deleted", t.Deleted, "errors", t.Errors)

	if p.notifier != nil {
		if err := p.notifier.PublishReport(ctx, report.String()); err != nil {
			logger.WarnContext(ctx, "publish report failed", "error", err)
		}
	}

	return report, runErr
}

func (p *Pipeline) selectChannels(key string) ([]domain.Channel, error) {
	if key == "" {
		return p.channels, nil
	}
	for _, ch := range p.channels {
		if ch.Key == key {
			return []domain.Channel{ch}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, key)
}

func (p *Pipeline) syncChannel(ctx context.Context, logger *slog.Logger, ch domain.Channel, opts RunOptions) ChannelReport {
	report := ChannelReport{Channel: ch.Key}

	var cursor domain.SyncCursor
	if !opts.Full && p.cursors != nil {
		loaded, err := p.cursors.Load(ctx, ch.Key)
		if err != nil {
			logger.WarnContext(ctx, "load cursor failed, starting from scratch", "error", err)
		} else {
			cursor = loaded
		}
	}

	var (
		messages []domain.RawMessage
		err      error
	)
	if opts.Full {
		messages, err = p.source.FetchAll(ctx, ch, opts.Limit)
	} else {
		messages, err = p.source.FetchSince(ctx, ch, cursor.LastMessageID, opts.Limit)
	}
	if err != nil {
		report.Err = fmt.Errorf("fetch channel %s: %w", ch.Key, err)
		logger.ErrorContext(ctx, "fetch failed", "error", err)
		return report
	}
	report.Fetched = len(messages)

	groups := grouping.Group(filterMessages(messages), p.thresholds)
	report.Groups = len(groups)

	snap := p.engine.Snapshot(ctx, ch.Key)
	report.Degraded = snap.Degraded

	articles := make([]domain.Article, 0, len(groups))
	for _, g := range groups {
		article, ok := p.build(ctx, logger, ch, g)
		if !ok {
			report.Rejected++
			continue
		}
		article = p.attachMedia(ctx, logger, snap, article)

		if article.IsStructured {
			report.Structured++
		}
		if article.PartCount > 1 {
			report.MultiPart++
		}
		if !article.Media().Empty() {
			report.WithMedia++
		}
		articles = append(articles, article)
	}

	res := p.engine.Apply(ctx, snap, articles, opts.Full)
	report.Stats = res.Stats

	p.saveCursor(ctx, logger, ch, cursor, messages, len(articles))
	p.publish(ctx, logger, res.Changes)

	if p.metrics != nil {
		p.metrics.ObserveChannel(ch.Key, report.Fetched, report.Rejected, report.Stats)
	}

	logger.InfoContext(ctx, "channel synced",
		"fetched", report.Fetched, "groups", report.Groups, "rejected", report.Rejected,
		"inserted", res.Stats.Inserted, "updated", res.Stats.Updated,
		"skipped", res.Stats.Skipped, "deleted", res.Stats.Deleted, "errors", res.Stats.Errors)
	return report
}

func (p *Pipeline) build(ctx context.Context, logger *slog.Logger, ch domain.Channel, g domain.MessageGroup) (article domain.Article, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "build group panicked", "anchor_id", g.Anchor().ID, "panic", r)
			article, ok = domain.Article{}, false
		}
	}()
	return p.builder.Build(ch, g)
}

func (p *Pipeline) attachMedia(ctx context.Context, logger *slog.Logger, snap *syncer.Snapshot, a domain.Article) domain.Article {
	if refs, ok := snap.Media(a.ExternalID); ok {
		return a.WithMedia(refs)
	}
	if p.media == nil || len(a.MediaCandidates) == 0 {
		return a
	}

	refs, err := p.media.Resolve(ctx, a.ExternalID, a.MediaCandidates)
	if err != nil {
		logger.WarnContext(ctx, "media upload failed", "external_id", a.ExternalID, "error", err)
	}
	return a.WithMedia(refs)
}

func (p *Pipeline) saveCursor(ctx context.Context, logger *slog.Logger, ch domain.Channel, prev domain.SyncCursor, messages []domain.RawMessage, built int) {
	if p.cursors == nil {
		return
	}

	next := domain.SyncCursor{
		LastMessageID:  prev.LastMessageID,
		LastRunAt:      p.now(),
		ArticlesSynced: built,
	}
	for _, m := range messages {
		next.LastMessageID = max(next.LastMessageID, m.ID)
	}

	if err := p.cursors.Save(ctx, ch.Key, next); err != nil {
		logger.WarnContext(ctx, "save cursor failed", "error", err)
	}
}

func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, changes []domain.ArticleEvent) {
	if p.events == nil {
		return
	}
	for _, ev := range changes {
		if err := p.events.Publish(ctx, ev); err != nil {
			logger.WarnContext(ctx, "publish article event failed", "external_id", ev.ExternalID, "error", err)
		}
	}
}

func filterMessages(messages []domain.RawMessage) []domain.RawMessage {
	kept := make([]domain.RawMessage, 0, len(messages))
	for _, m := range messages {
		if m.HasMedia() || textnorm.RuneLen(textnorm.Clean(m.Text)) >= minMessageLen {
			kept = append(kept, m)
		}
	}
	return kept
}
