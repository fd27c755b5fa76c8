package syncer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChannelSync/internal/domain"
)

type memStore struct {
	rows      map[string]domain.Article
	listErr   error
	slugErr   error
	failWrite map[string]bool
	writes    int
	deletes   []string
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]domain.Article{}, failWrite: map[string]bool{}}
}

func (m *memStore) ListByChannel(_ context.Context, channel string) ([]domain.Article, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Article
	for _, a := range m.rows {
		if a.Channel == channel {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ListSlugs(context.Context) ([]string, error) {
	if m.slugErr != nil {
		return nil, m.slugErr
	}
	var out []string
	for _, a := range m.rows {
		out = append(out, a.Slug)
	}
	return out, nil
}

func (m *memStore) Upsert(_ context.Context, a domain.Article) error {
	if m.failWrite[a.ExternalID] {
		return errors.New("write rejected")
	}
	m.writes++
	m.rows[a.ExternalID] = a
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.deletes = append(m.deletes, id)
	delete(m.rows, id)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func article(id, title string) domain.Article {
	return domain.Article{
		ExternalID:    id,
		Channel:       "en",
		Title:         title,
		Content:       title + " body",
		Category:      domain.CategoryMilitary,
		Countries:     []string{"Iran", "Yemen"},
		Organizations: []string{"IDF"},
		PublishedAt:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:        domain.StatusPublished,
	}
}

func run(t *testing.T, e *Engine, articles []domain.Article, full bool) Result {
	t.Helper()
	ctx := context.Background()
	return e.Apply(ctx, e.Snapshot(ctx, "en"), articles, full)
}

func TestFingerprintIgnoresListOrder(t *testing.T) {
	t.Parallel()

	a := article("chan/1", "Headline")
	b := a
	b.Countries = []string{"Yemen", "Iran"}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	b.Title = "Other headline"
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))

	c := a
	c.ImageURL = "https://cdn.example/a.jpg"
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
}

func TestSecondRunIsNoOp(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	e := New(store, quietLogger())
	batch := []domain.Article{article("chan/1", "First headline"), article("chan/2", "Second headline")}

	first := run(t, e, batch, false)
	assert.Equal(t, 2, first.Stats.Inserted)
	assert.Len(t, first.Changes, 2)

	second := run(t, e, batch, false)
	assert.Equal(t, domain.SyncStats{Total: 2, Skipped: 2}, second.Stats)
	assert.Empty(t, second.Changes)
	assert.Equal(t, 2, store.writes)
}

func TestUpdateKeepsSlug(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	e := New(store, quietLogger())

	run(t, e, []domain.Article{article("chan/1", "Original headline")}, false)
	original := store.rows["chan/1"].Slug
	require.Equal(t, "original-headline", original)

	res := run(t, e, []domain.Article{article("chan/1", "Rewritten headline")}, false)
	assert.Equal(t, 1, res.Stats.Updated)
	assert.Equal(t, original, store.rows["chan/1"].Slug)
	assert.Equal(t, "Rewritten headline", store.rows["chan/1"].Title)
	assert.Equal(t, domain.ChangeUpdated, res.Changes[0].Kind)
}

func TestInsertResolvesSlugCollision(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	other := article("other/9", "Same headline")
	other.Channel = "ar"
	other.Slug = "same-headline"
	store.rows[other.ExternalID] = other

	e := New(store, quietLogger())
	run(t, e, []domain.Article{article("chan/1", "Same headline"), article("chan/2", "Same headline")}, false)

	assert.Equal(t, "same-headline-2", store.rows["chan/1"].Slug)
	assert.Equal(t, "same-headline-3", store.rows["chan/2"].Slug)
}

func TestOrphansOnlyDeletedOnFullResync(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	e := New(store, quietLogger())
	run(t, e, []domain.Article{article("chan/1", "Kept headline"), article("chan/2", "Merged away")}, false)

	incremental := run(t, e, []domain.Article{article("chan/1", "Kept headline")}, false)
	assert.Zero(t, incremental.Stats.Deleted)
	assert.Contains(t, store.rows, "chan/2")

	full := run(t, e, []domain.Article{article("chan/1", "Kept headline")}, true)
	assert.Equal(t, 1, full.Stats.Deleted)
	assert.Equal(t, []string{"chan/2"}, store.deletes)
	assert.NotContains(t, store.rows, "chan/2")
	require.Len(t, full.Changes, 1)
	assert.Equal(t, domain.ChangeDeleted, full.Changes[0].Kind)
}

func TestWriteFailureIsCountedAndSkipped(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.failWrite["chan/1"] = true
	e := New(store, quietLogger())

	res := run(t, e, []domain.Article{article("chan/1", "Broken row"), article("chan/2", "Healthy row")}, true)

	assert.Equal(t, 1, res.Stats.Errors)
	assert.Equal(t, 1, res.Stats.Inserted)
	assert.Contains(t, store.rows, "chan/2")
	assert.Empty(t, store.deletes)
}

func TestDegradedSnapshotTreatsStoreAsEmpty(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	e := New(store, quietLogger())
	run(t, e, []domain.Article{article("chan/1", "Existing headline")}, false)

	store.listErr = errors.New("connection reset")
	snap := e.Snapshot(context.Background(), "en")
	assert.True(t, snap.Degraded)
	assert.Empty(t, snap.Existing)

	res := e.Apply(context.Background(), snap, []domain.Article{article("chan/1", "Existing headline")}, true)
	assert.Equal(t, 1, res.Stats.Inserted)
	assert.Zero(t, res.Stats.Deleted)
}

func TestSnapshotMedia(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	withMedia := article("chan/1", "Pictured headline")
	withMedia.ImageURL = "https://cdn.example/chan_1_photo.jpg"
	withMedia.Slug = "pictured-headline"
	store.rows[withMedia.ExternalID] = withMedia
	store.rows["chan/2"] = article("chan/2", "Plain headline")

	snap := New(store, quietLogger()).Snapshot(context.Background(), "en")

	refs, ok := snap.Media("chan/1")
	assert.True(t, ok)
	assert.Equal(t, withMedia.ImageURL, refs.ImageURL)

	_, ok = snap.Media("chan/2")
	assert.False(t, ok)
}
