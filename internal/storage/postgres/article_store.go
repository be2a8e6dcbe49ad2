// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/citydesk/newspipe/internal/pipeline"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ArticleStoreConfig controls the Postgres connection pool.
type ArticleStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// ArticleStore writes completed article records into Postgres. Articles are
// append-only: a re-extraction inserts a new row rather than updating one.
type ArticleStore struct {
	pool  execCloser
	table string
}

// NewArticleStore creates a Postgres-backed ArticleStore using the config.
func NewArticleStore(ctx context.Context, cfg ArticleStoreConfig) (*ArticleStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "articles"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ArticleStore{pool: pool, table: table}, nil
}

// NewArticleStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewArticleStoreWithPool(pool execCloser, table string) (*ArticleStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "articles"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &ArticleStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *ArticleStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// StoreArticle inserts one article row.
func (s *ArticleStore) StoreArticle(ctx context.Context, article pipeline.Article) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("article store is not configured")
	}
	if article.ID == "" {
		return fmt.Errorf("article id is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	candidate_link_id,
	title,
	author,
	content,
	publish_date,
	status,
	extracted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, s.table)

	var publishDate any
	if !article.PublishDate.IsZero() {
		publishDate = article.PublishDate
	}
	if _, err := s.pool.Exec(ctx, query,
		article.ID,
		article.CandidateLinkID,
		article.Title,
		article.Author,
		article.Content,
		publishDate,
		string(article.Status),
		article.ExtractedAt,
	); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}
