// Package memory contains in-memory persistence implementations for tests
// and local development.
package memory

import (
	"context"
	"sync"

	"github.com/citydesk/newspipe/internal/pipeline"
)

// ArticleStore accumulates stored articles for inspection.
type ArticleStore struct {
	mu       sync.RWMutex
	articles []pipeline.Article
}

// NewArticleStore returns an empty store.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{}
}

// StoreArticle appends the article.
func (s *ArticleStore) StoreArticle(_ context.Context, article pipeline.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = append(s.articles, article)
	return nil
}

// Articles returns a copy of everything stored so far.
func (s *ArticleStore) Articles() []pipeline.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pipeline.Article, len(s.articles))
	copy(out, s.articles)
	return out
}
