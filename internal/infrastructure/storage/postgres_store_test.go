package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChannelSync/internal/domain"
)

func sampleArticle() domain.Article {
	return domain.Article{
		ExternalID:    "observer_5/10",
		Slug:          "border-talks-resume",
		Channel:       "en",
		Title:         "Border talks resume",
		Excerpt:       "Delegations met on Monday.",
		Content:       "Delegations met on Monday to discuss the border.",
		Category:      domain.CategoryPolitical,
		Countries:     []string{"Iran", "Iraq"},
		Organizations: nil,
		IsStructured:  true,
		SourceLink:    "https://t.me/observer_5/10",
		PublishedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:        domain.StatusPublished,
	}
}

func TestPostgresStoreListByChannel(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	published := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(articleColumns).
		AddRow("observer_5/10", "border-talks-resume", "en", "Border talks resume", "Delegations met.",
			"Delegations met on Monday.", "Political", []string{"Iran"}, []string{"UN"}, true,
			"https://cdn/x.jpg", "", "https://t.me/observer_5/10", published, "published")

	mock.ExpectQuery(`SELECT external_id, slug, .* FROM articles WHERE channel = \$1 ORDER BY published_at`).
		WithArgs("en").
		WillReturnRows(rows)

	store := NewPostgresStore(mock, "")
	articles, err := store.ListByChannel(context.Background(), "en")
	require.NoError(t, err)
	require.Len(t, articles, 1)

	got := articles[0]
	assert.Equal(t, "observer_5/10", got.ExternalID)
	assert.Equal(t, domain.CategoryPolitical, got.Category)
	assert.Equal(t, []string{"Iran"}, got.Countries)
	assert.Equal(t, []string{"UN"}, got.Organizations)
	assert.Equal(t, "https://cdn/x.jpg", got.ImageURL)
	assert.Equal(t, domain.StatusPublished, got.Status)
	assert.True(t, got.PublishedAt.Equal(published))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListByChannelQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM articles`).WithArgs("en").WillReturnError(errors.New("connection reset"))

	store := NewPostgresStore(mock, "")
	_, err = store.ListByChannel(context.Background(), "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListSlugs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT slug FROM news_articles`).
		WillReturnRows(pgxmock.NewRows([]string{"slug"}).AddRow("a").AddRow("b"))

	store := NewPostgresStore(mock, "news_articles")
	slugs, err := store.ListSlugs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, slugs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := sampleArticle()
	mock.ExpectExec(`INSERT INTO articles \(external_id,slug,.*\) VALUES \(\$1,\$2,.*\$15\) ON CONFLICT \(external_id\) DO UPDATE`).
		WithArgs(a.ExternalID, a.Slug, a.Channel, a.Title, a.Excerpt, a.Content, "Political",
			[]string{"Iran", "Iraq"}, []string{}, true, "", "", a.SourceLink, a.PublishedAt, "published").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewPostgresStore(mock, "")
	require.NoError(t, store.Upsert(context.Background(), a))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpsertDefaultsStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := sampleArticle()
	a.Status = ""
	mock.ExpectExec(`INSERT INTO articles`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "published").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewPostgresStore(mock, "")
	require.NoError(t, store.Upsert(context.Background(), a))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO articles`).WillReturnError(errors.New("unique violation"))

	store := NewPostgresStore(mock, "")
	err = store.Upsert(context.Background(), sampleArticle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "observer_5/10")
}

func TestPostgresStoreDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM articles WHERE external_id = \$1`).
		WithArgs("observer_5/10").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	store := NewPostgresStore(mock, "")
	require.NoError(t, store.Delete(context.Background(), "observer_5/10"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS articles`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	store := NewPostgresStore(mock, "")
	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
