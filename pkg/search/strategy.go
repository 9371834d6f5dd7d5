package search

import (
	"context"
	"strings"

	"github.com/archivelab/vault/pkg/store"
)

type nativeStrategy struct {
	searcher store.PageSearcher
}

func (n *nativeStrategy) search(ctx context.Context, query string, filters Filters, limit int) ([]Hit, error) {
	refs, err := n.searcher.SearchPageRefs(ctx, query, filters.Country, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(refs))
	for _, ref := range refs {
		hits = append(hits, Hit{
			ID:            ref.Page.ID,
			Score:         ref.Rank,
			DocumentID:    ref.Page.DocumentID,
			PageID:        ref.Page.ID,
			DocumentTitle: ref.DocumentFilename,
			PageNumber:    ref.Page.PageNum,
			Snippet:       Snippet(ref.Page.Text, query),
		})
	}
	return hits, nil
}

type substringStrategy struct {
	store store.GraphStore
}

func (s *substringStrategy) search(ctx context.Context, query string, filters Filters, limit int) ([]Hit, error) {
	refs, err := s.store.ListPageRefs(ctx, filters.Country)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var hits []Hit
	for _, ref := range refs {
		if !strings.Contains(strings.ToLower(ref.Page.Text), needle) {
			continue
		}
		hits = append(hits, Hit{
			ID:            ref.Page.ID,
			Score:         1,
			DocumentID:    ref.Page.DocumentID,
			PageID:        ref.Page.ID,
			DocumentTitle: ref.DocumentFilename,
			PageNumber:    ref.Page.PageNum,
			Snippet:       Snippet(ref.Page.Text, query),
		})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}
