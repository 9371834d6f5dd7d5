// Package search finds pages matching a text query. The engine picks a
// strategy once at construction: stores with a native full-text
// primitive rank by relevance, everything else falls back to a
// case-insensitive substring scan in stable page order.
package search

import (
	"context"

	"github.com/archivelab/vault/pkg/logger"
	"github.com/archivelab/vault/pkg/store"
)

const DefaultLimit = 50

// Hit is one matching page.
type Hit struct {
	ID            int64   `json:"id"`
	Score         float64 `json:"score"`
	DocumentID    int64   `json:"document_id"`
	PageID        int64   `json:"page_id"`
	DocumentTitle string  `json:"document_title"`
	PageNumber    int     `json:"page_number"`
	Snippet       string  `json:"snippet"`
}

// Filters narrows a search. Country restricts hits to pages linked to
// an entity resolved to that ISO code.
type Filters struct {
	Country string
}

type strategy interface {
	search(ctx context.Context, query string, filters Filters, limit int) ([]Hit, error)
}

// Engine answers search queries against a GraphStore.
type Engine struct {
	strategy strategy
}

// NewEngine builds an engine for s, probing it for native full-text
// support.
func NewEngine(s store.GraphStore) *Engine {
	if searcher, ok := s.(store.PageSearcher); ok {
		return &Engine{strategy: &nativeStrategy{searcher: searcher}}
	}
	return &Engine{strategy: &substringStrategy{store: s}}
}

// Search returns up to limit hits for query. Backend failures are
// logged and reported as an empty result, never as an error.
func (e *Engine) Search(ctx context.Context, query string, filters Filters, limit int) []Hit {
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	hits, err := e.strategy.search(ctx, query, filters, limit)
	if err != nil {
		logger.Warn("[Search] Backend failure, returning empty results", "query", query, "err", err)
		return nil
	}
	return hits
}
