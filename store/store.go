// Package store persists articles in Postgres. The UNIQUE constraint on
// fingerprint is the final arbiter for concurrent submissions: a SQLSTATE
// 23505 on insert is reported as the same DuplicateError callers get from an
// early duplicate check.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"articlevault/types"
)

// DuplicateError reports that an article with the same fingerprint already
// exists. It is informational, not a fault: the caller is told which stored
// article matched.
type DuplicateError struct {
	Fingerprint string
	Existing    *types.Article
}

func (e *DuplicateError) Error() string {
	if e.Existing != nil {
		return fmt.Sprintf("article already exists with id %d (fingerprint %s)", e.Existing.ID, shortFingerprint(e.Fingerprint))
	}
	return fmt.Sprintf("article already exists (fingerprint %s)", shortFingerprint(e.Fingerprint))
}

// PersistenceError wraps store failures other than duplicates. These are the
// only pipeline failures a caller should treat as retryable.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

func shortFingerprint(fp string) string {
	if len(fp) > 8 {
		return fp[:8]
	}
	return fp
}

// ArticleStore wraps a pgx connection pool.
type ArticleStore struct {
	pool *pgxpool.Pool
}

// New creates the store from an existing pool.
func New(pool *pgxpool.Pool) *ArticleStore {
	return &ArticleStore{pool: pool}
}

// Connect parses the DSN, opens a pool and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*ArticleStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &ArticleStore{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *ArticleStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS articles (
    id                  BIGSERIAL PRIMARY KEY,
    fingerprint         VARCHAR(64) NOT NULL UNIQUE,
    title               TEXT NOT NULL DEFAULT '',
    text                TEXT NOT NULL,
    summary             TEXT NOT NULL DEFAULT '',
    source              TEXT NOT NULL DEFAULT '',
    author              TEXT NOT NULL DEFAULT '',
    original_link       TEXT NOT NULL DEFAULT '',
    language            TEXT NOT NULL DEFAULT 'unknown',
    categories_auto     TEXT[] NOT NULL DEFAULT '{}',
    categories_user     TEXT[] NOT NULL DEFAULT '{}',
    categories_advanced JSONB,
    comments_count      INT NOT NULL DEFAULT 0,
    likes_count         INT NOT NULL DEFAULT 0,
    views_count         INT NOT NULL DEFAULT 0,
    submitter_id        BIGINT NOT NULL DEFAULT 0,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_articles_submitter ON articles (submitter_id);
`

// EnsureSchema creates the articles table and its indexes if missing.
func (s *ArticleStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return &PersistenceError{Op: "ensure schema", Err: err}
	}
	return nil
}

const articleColumns = `id, fingerprint, title, text, summary, source, author, original_link,
       language, categories_auto, categories_user, categories_advanced,
       comments_count, likes_count, views_count, submitter_id, created_at, updated_at`

// Insert persists a new article. On a fingerprint collision it returns a
// DuplicateError carrying the already-stored article.
func (s *ArticleStore) Insert(ctx context.Context, a *types.Article) (*types.Article, error) {
	advanced, err := marshalAdvanced(a.CategoriesAdvanced)
	if err != nil {
		return nil, &PersistenceError{Op: "encode advanced categories", Err: err}
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO articles
		    (fingerprint, title, text, summary, source, author, original_link,
		     language, categories_auto, categories_user, categories_advanced, submitter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		a.Fingerprint, a.Title, a.Text, a.Summary, a.Source, a.Author, a.OriginalLink,
		a.Language, emptyIfNil(a.CategoriesAuto), emptyIfNil(a.CategoriesUser), advanced, a.SubmitterID,
	)

	saved := *a
	if err := row.Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			existing, findErr := s.FindByFingerprint(ctx, a.Fingerprint)
			if findErr != nil {
				return nil, &DuplicateError{Fingerprint: a.Fingerprint}
			}
			return nil, &DuplicateError{Fingerprint: a.Fingerprint, Existing: existing}
		}
		return nil, &PersistenceError{Op: "insert article", Err: err}
	}
	return &saved, nil
}

// FindByFingerprint returns the article with the given fingerprint, or
// (nil, nil) when absent.
func (s *ArticleStore) FindByFingerprint(ctx context.Context, fp string) (*types.Article, error) {
	return s.findOne(ctx, "fingerprint = $1", fp)
}

// FindByID returns the article with the given id, or (nil, nil) when absent.
func (s *ArticleStore) FindByID(ctx context.Context, id int64) (*types.Article, error) {
	return s.findOne(ctx, "id = $1", id)
}

func (s *ArticleStore) findOne(ctx context.Context, where string, arg any) (*types.Article, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+articleColumns+" FROM articles WHERE "+where, arg)
	if err != nil {
		return nil, &PersistenceError{Op: "query article", Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, &PersistenceError{Op: "query article", Err: err}
		}
		return nil, nil
	}

	article, err := scanArticle(rows)
	if err != nil {
		return nil, &PersistenceError{Op: "scan article", Err: err}
	}
	return article, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Category    string
	SubmitterID int64
	Search      string
	Limit       int
	Offset      int
}

// List returns articles ordered newest-first, applying the filter.
func (s *ArticleStore) List(ctx context.Context, filter ListFilter) ([]*types.Article, error) {
	query, args := buildListQuery(filter)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "list articles", Err: err}
	}
	defer rows.Close()

	var articles []*types.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "scan article", Err: err}
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list articles", Err: err}
	}
	return articles, nil
}

// CounterUpdate carries the counters to overwrite; nil fields are untouched.
type CounterUpdate struct {
	Comments *int
	Likes    *int
	Views    *int
}

// UpdateCounters overwrites the provided counters and advances updated_at.
func (s *ArticleStore) UpdateCounters(ctx context.Context, id int64, upd CounterUpdate) error {
	query, args := buildCounterQuery(id, upd)
	if query == "" {
		return nil
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return &PersistenceError{Op: "update counters", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &PersistenceError{Op: "update counters", Err: fmt.Errorf("article %d not found", id)}
	}
	return nil
}

// AddUserCategory appends a user label unless it is already present.
func (s *ArticleStore) AddUserCategory(ctx context.Context, id int64, category string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE articles
		SET categories_user = array_append(categories_user, $1), updated_at = NOW()
		WHERE id = $2 AND NOT ($1 = ANY (categories_user))`,
		category, id)
	if err != nil {
		return &PersistenceError{Op: "add user category", Err: err}
	}
	if tag.RowsAffected() == 0 {
		// Either the article is missing or the label already exists; a
		// lookup disambiguates for the caller.
		existing, findErr := s.FindByID(ctx, id)
		if findErr != nil {
			return findErr
		}
		if existing == nil {
			return &PersistenceError{Op: "add user category", Err: fmt.Errorf("article %d not found", id)}
		}
	}
	return nil
}

// Stats summarizes stored articles.
type Stats struct {
	Total        int64            `json:"total_articles"`
	ByCategory   map[string]int64 `json:"by_category"`
	ByLanguage   map[string]int64 `json:"by_language"`
	WithAdvanced int64            `json:"with_advanced"`
}

// Stats aggregates article counts by automatic category and by language.
func (s *ArticleStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByCategory: map[string]int64{}, ByLanguage: map[string]int64{}}

	row := s.pool.QueryRow(ctx,
		"SELECT COUNT(*), COUNT(categories_advanced) FROM articles")
	if err := row.Scan(&stats.Total, &stats.WithAdvanced); err != nil {
		return nil, &PersistenceError{Op: "count articles", Err: err}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT category, COUNT(*)
		FROM articles, unnest(categories_auto) AS category
		GROUP BY category`)
	if err != nil {
		return nil, &PersistenceError{Op: "count categories", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, &PersistenceError{Op: "scan category count", Err: err}
		}
		stats.ByCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "count categories", Err: err}
	}

	langRows, err := s.pool.Query(ctx,
		"SELECT language, COUNT(*) FROM articles GROUP BY language")
	if err != nil {
		return nil, &PersistenceError{Op: "count languages", Err: err}
	}
	defer langRows.Close()
	for langRows.Next() {
		var language string
		var count int64
		if err := langRows.Scan(&language, &count); err != nil {
			return nil, &PersistenceError{Op: "scan language count", Err: err}
		}
		stats.ByLanguage[language] = count
	}
	if err := langRows.Err(); err != nil {
		return nil, &PersistenceError{Op: "count languages", Err: err}
	}

	return stats, nil
}

func marshalAdvanced(a *types.AdvancedCategories) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func emptyIfNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
