package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/ports"
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "articles"

var articleColumns = []string{
	"external_id",
	"slug",
	"channel",
	"title",
	"excerpt",
	"content",
	"category",
	"countries",
	"organizations",
	"is_structured",
	"image_url",
	"video_url",
	"source_link",
	"published_at",
	"status",
}

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore persists articles into Postgres.
type PostgresStore struct {
	db    Querier
	table string
	psql  sq.StatementBuilderType
}

var _ ports.ArticleStore = (*PostgresStore)(nil)

// NewPostgresStore wires a pgx pool (or anything shaped like one).
func NewPostgresStore(db Querier, table string) *PostgresStore {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresStore{
		db:    db,
		table: table,
		psql:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the article table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    external_id   TEXT PRIMARY KEY,
    slug          TEXT NOT NULL UNIQUE,
    channel       TEXT NOT NULL,
    title         TEXT NOT NULL,
    excerpt       TEXT NOT NULL DEFAULT '',
    content       TEXT NOT NULL,
    category      TEXT NOT NULL,
    countries     TEXT[] NOT NULL DEFAULT '{}',
    organizations TEXT[] NOT NULL DEFAULT '{}',
    is_structured BOOLEAN NOT NULL DEFAULT FALSE,
    image_url     TEXT NOT NULL DEFAULT '',
    video_url     TEXT NOT NULL DEFAULT '',
    source_link   TEXT NOT NULL,
    published_at  TIMESTAMPTZ NOT NULL,
    status        TEXT NOT NULL DEFAULT 'published',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, s.table)

	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	return nil
}

// ListByChannel returns every stored article of one channel.
func (s *PostgresStore) ListByChannel(ctx context.Context, channel string) ([]domain.Article, error) {
	query, args, err := s.psql.
		Select(articleColumns...).
		From(s.table).
		Where(sq.Eq{"channel": channel}).
		OrderBy("published_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var result []domain.Article
	for rows.Next() {
		var (
			a           domain.Article
			category    string
			status      string
			publishedAt time.Time
		)
		if err := rows.Scan(
			&a.ExternalID,
			&a.Slug,
			&a.Channel,
			&a.Title,
			&a.Excerpt,
			&a.Content,
			&category,
			&a.Countries,
			&a.Organizations,
			&a.IsStructured,
			&a.ImageURL,
			&a.VideoURL,
			&a.SourceLink,
			&publishedAt,
			&status,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.Category = domain.Category(category)
		a.Status = domain.ArticleStatus(status)
		a.PublishedAt = publishedAt.UTC()
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// ListSlugs returns the slugs of all stored articles across channels.
func (s *PostgresStore) ListSlugs(ctx context.Context) ([]string, error) {
	query, args, err := s.psql.Select("slug").From(s.table).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build slug query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return slugs, nil
}

// Upsert inserts the article or overwrites the row with the same external id.
func (s *PostgresStore) Upsert(ctx context.Context, a domain.Article) error {
	status := a.Status
	if status == "" {
		status = domain.StatusPublished
	}

	query, args, err := s.psql.
		Insert(s.table).
		Columns(articleColumns...).
		Values(
			a.ExternalID,
			a.Slug,
			a.Channel,
			a.Title,
			a.Excerpt,
			a.Content,
			string(a.Category),
			nonNil(a.Countries),
			nonNil(a.Organizations),
			a.IsStructured,
			a.ImageURL,
			a.VideoURL,
			a.SourceLink,
			a.PublishedAt.UTC(),
			string(status),
		).
		Suffix(`ON CONFLICT (external_id) DO UPDATE
              SET slug = EXCLUDED.slug,
                  title = EXCLUDED.title,
                  excerpt = EXCLUDED.excerpt,
                  content = EXCLUDED.content,
                  category = EXCLUDED.category,
                  countries = EXCLUDED.countries,
                  organizations = EXCLUDED.organizations,
                  is_structured = EXCLUDED.is_structured,
                  image_url = EXCLUDED.image_url,
                  video_url = EXCLUDED.video_url,
                  source_link = EXCLUDED.source_link,
                  published_at = EXCLUDED.published_at,
                  status = EXCLUDED.status,
                  updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article %s: %w", a.ExternalID, err)
	}
	return nil
}

// Delete removes the article with the given external id. Missing rows are not an error.
func (s *PostgresStore) Delete(ctx context.Context, externalID string) error {
	query, args, err := s.psql.Delete(s.table).Where(sq.Eq{"external_id": externalID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete article %s: %w", externalID, err)
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
