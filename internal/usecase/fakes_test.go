package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"ChannelSync/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fetchCall struct {
	channel string
	full    bool
	afterID int64
	limit   int
}

type fakeSource struct {
	messages map[string][]domain.RawMessage
	fail     map[string]error
	calls    []fetchCall
}

func (f *fakeSource) FetchSince(_ context.Context, ch domain.Channel, afterID int64, limit int) ([]domain.RawMessage, error) {
	f.calls = append(f.calls, fetchCall{channel: ch.Key, afterID: afterID, limit: limit})
	if err := f.fail[ch.Key]; err != nil {
		return nil, err
	}
	var out []domain.RawMessage
	for _, m := range f.messages[ch.Key] {
		if m.ID > afterID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeSource) FetchAll(_ context.Context, ch domain.Channel, limit int) ([]domain.RawMessage, error) {
	f.calls = append(f.calls, fetchCall{channel: ch.Key, full: true, limit: limit})
	if err := f.fail[ch.Key]; err != nil {
		return nil, err
	}
	return f.messages[ch.Key], nil
}

type memStore struct {
	rows map[string]domain.Article
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]domain.Article{}}
}

func (m *memStore) ListByChannel(_ context.Context, channel string) ([]domain.Article, error) {
	var out []domain.Article
	for _, a := range m.rows {
		if a.Channel == channel {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ListSlugs(context.Context) ([]string, error) {
	var out []string
	for _, a := range m.rows {
		out = append(out, a.Slug)
	}
	return out, nil
}

func (m *memStore) Upsert(_ context.Context, a domain.Article) error {
	m.rows[a.ExternalID] = a
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

type fakeMedia struct {
	calls []string
	err   error
}

func (f *fakeMedia) Resolve(_ context.Context, externalID string, media []domain.Media) (domain.MediaRefs, error) {
	f.calls = append(f.calls, externalID)
	if f.err != nil {
		return domain.MediaRefs{}, f.err
	}
	return domain.MediaRefs{ImageURL: "https://cdn.example/" + externalID + ".jpg"}, nil
}

type memCursors struct {
	cursors map[string]domain.SyncCursor
}

func (m *memCursors) Load(_ context.Context, channel string) (domain.SyncCursor, error) {
	return m.cursors[channel], nil
}

func (m *memCursors) Save(_ context.Context, channel string, c domain.SyncCursor) error {
	m.cursors[channel] = c
	return nil
}

type recordingEvents struct {
	events []domain.ArticleEvent
}

func (r *recordingEvents) Publish(_ context.Context, ev domain.ArticleEvent) error {
	r.events = append(r.events, ev)
	return nil
}

type recordingNotifier struct {
	reports []string
	err     error
}

func (r *recordingNotifier) PublishReport(_ context.Context, report string) error {
	r.reports = append(r.reports, report)
	return r.err
}

type recordingMetrics struct {
	channels []string
	runs     []error
}

func (r *recordingMetrics) ObserveChannel(channel string, _, _ int, _ domain.SyncStats) {
	r.channels = append(r.channels, channel)
}

func (r *recordingMetrics) ObserveRun(_ time.Time, err error) {
	r.runs = append(r.runs, err)
}

type manualScheduler struct {
	mu  sync.Mutex
	job func(time.Time)
}

func (m *manualScheduler) Start(_ context.Context, job func(time.Time)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.job = job
	return nil
}

func (m *manualScheduler) Stop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.job = nil
	return nil
}

func (m *manualScheduler) fire(t time.Time) error {
	m.mu.Lock()
	job := m.job
	m.mu.Unlock()
	if job == nil {
		return errors.New("not started")
	}
	job(t)
	return nil
}
