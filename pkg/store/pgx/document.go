package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/store"
)

// CreateDocument inserts a document or, when the filename already
// exists, loads the existing row into doc.
func (s *GraphDBStore) CreateDocument(ctx context.Context, doc *common.Document) error {
	if doc.Analysis == "" {
		doc.Analysis = common.NotAnalyzed
	}

	err := s.conn.QueryRow(ctx, `
		INSERT INTO documents (filename, path, external_url, doc_type, dataset, analysis)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (filename) DO NOTHING
		RETURNING id, added_at
	`, doc.Filename, doc.Path, doc.ExternalURL, doc.DocType, doc.Dataset, string(doc.Analysis)).
		Scan(&doc.ID, &doc.AddedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgxv5.ErrNoRows) {
		return err
	}

	existing, err := s.GetDocumentByFilename(ctx, doc.Filename)
	if err != nil {
		return err
	}
	*doc = *existing
	return nil
}

func (s *GraphDBStore) GetDocument(ctx context.Context, id int64) (*common.Document, error) {
	return s.scanDocument(s.conn.QueryRow(ctx, `
		SELECT id, filename, path, coalesce(external_url, ''), doc_type, dataset,
		       analysis, coalesce(ai_summary, ''), added_at
		FROM documents
		WHERE id = $1
	`, id))
}

func (s *GraphDBStore) GetDocumentByFilename(ctx context.Context, filename string) (*common.Document, error) {
	return s.scanDocument(s.conn.QueryRow(ctx, `
		SELECT id, filename, path, coalesce(external_url, ''), doc_type, dataset,
		       analysis, coalesce(ai_summary, ''), added_at
		FROM documents
		WHERE filename = $1
	`, filename))
}

func (s *GraphDBStore) ListDocuments(ctx context.Context) ([]common.Document, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, filename, path, coalesce(external_url, ''), doc_type, dataset,
		       analysis, coalesce(ai_summary, ''), added_at
		FROM documents
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []common.Document
	for rows.Next() {
		var doc common.Document
		var analysis string
		err := rows.Scan(&doc.ID, &doc.Filename, &doc.Path, &doc.ExternalURL,
			&doc.DocType, &doc.Dataset, &analysis, &doc.AISummary, &doc.AddedAt)
		if err != nil {
			return nil, err
		}
		doc.Analysis = common.AnalysisState(analysis)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *GraphDBStore) MarkDocumentAnalyzed(ctx context.Context, id int64, summary string) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE documents SET analysis = $1, ai_summary = $2 WHERE id = $3
	`, string(common.Analyzed), summary, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GraphDBStore) scanDocument(row pgxv5.Row) (*common.Document, error) {
	var doc common.Document
	var analysis string
	err := row.Scan(&doc.ID, &doc.Filename, &doc.Path, &doc.ExternalURL,
		&doc.DocType, &doc.Dataset, &analysis, &doc.AISummary, &doc.AddedAt)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc.Analysis = common.AnalysisState(analysis)
	return &doc, nil
}
