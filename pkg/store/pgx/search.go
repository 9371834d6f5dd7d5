package pgx

import (
	"context"
	"strconv"
	"strings"

	"github.com/archivelab/vault/pkg/store"
)

// SearchPageRefs runs a Postgres full-text query over page text, ranked
// by ts_rank. It satisfies store.PageSearcher, so the search engine
// uses this path instead of substring scanning when the store is
// backed by Postgres.
func (s *GraphDBStore) SearchPageRefs(ctx context.Context, query, countryCode string, limit int) ([]store.ScoredPageRef, error) {
	if limit <= 0 {
		limit = 50
	}

	sql := `
		SELECT p.id, p.document_id, p.page_num, coalesce(p.text_content, ''), p.text_quality,
		       coalesce(p.media_type, ''), d.filename,
		       ts_rank(to_tsvector('english', coalesce(p.text_content, '')), plainto_tsquery('english', $1)) AS rank
		FROM pages p
		JOIN documents d ON d.id = p.document_id
		WHERE to_tsvector('english', coalesce(p.text_content, '')) @@ plainto_tsquery('english', $1)
	`
	args := []any{query}
	if countryCode != "" {
		sql += `
		AND EXISTS (
			SELECT 1 FROM page_entities pe
			JOIN entities e ON e.id = pe.entity_id
			WHERE pe.page_id = p.id AND e.country_code = $2
		)`
		args = append(args, strings.ToUpper(countryCode))
	}
	sql += `
		ORDER BY rank DESC, p.id
		LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []store.ScoredPageRef
	for rows.Next() {
		var hit store.ScoredPageRef
		err := rows.Scan(&hit.Page.ID, &hit.Page.DocumentID, &hit.Page.PageNum,
			&hit.Page.Text, &hit.Page.Quality, &hit.Page.MediaType,
			&hit.DocumentFilename, &hit.Rank)
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (s *GraphDBStore) ListPageRefs(ctx context.Context, countryCode string) ([]store.PageRef, error) {
	sql := `
		SELECT p.id, p.document_id, p.page_num, coalesce(p.text_content, ''), p.text_quality,
		       coalesce(p.media_type, ''), d.filename
		FROM pages p
		JOIN documents d ON d.id = p.document_id
	`
	var args []any
	if countryCode != "" {
		sql += `
		WHERE EXISTS (
			SELECT 1 FROM page_entities pe
			JOIN entities e ON e.id = pe.entity_id
			WHERE pe.page_id = p.id AND e.country_code = $1
		)`
		args = append(args, strings.ToUpper(countryCode))
	}
	sql += `
		ORDER BY p.id`

	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPageRefs(rows)
}
