package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/archivelab/vault/internal/util"
	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/store"
)

// CreatePage inserts a page, loading the existing row when the
// (document, page number) pair was already stored. Text goes through
// SanitizePostgresText first since extracted documents routinely carry
// NUL bytes that Postgres rejects.
func (s *GraphDBStore) CreatePage(ctx context.Context, page *common.Page) error {
	text := util.SanitizePostgresText(page.Text)

	err := s.conn.QueryRow(ctx, `
		INSERT INTO pages (document_id, page_num, text_content, text_quality, media_type)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id, page_num) DO NOTHING
		RETURNING id
	`, page.DocumentID, page.PageNum, text, page.Quality, page.MediaType).Scan(&page.ID)
	if err == nil {
		page.Text = text
		return nil
	}
	if !errors.Is(err, pgxv5.ErrNoRows) {
		return err
	}

	existing, err := s.GetPageByNumber(ctx, page.DocumentID, page.PageNum)
	if err != nil {
		return err
	}
	*page = *existing
	return nil
}

func (s *GraphDBStore) GetPage(ctx context.Context, id int64) (*common.Page, error) {
	return scanPage(s.conn.QueryRow(ctx, `
		SELECT id, document_id, page_num, coalesce(text_content, ''), text_quality, coalesce(media_type, '')
		FROM pages
		WHERE id = $1
	`, id))
}

func (s *GraphDBStore) GetPageByNumber(ctx context.Context, documentID int64, pageNum int) (*common.Page, error) {
	return scanPage(s.conn.QueryRow(ctx, `
		SELECT id, document_id, page_num, coalesce(text_content, ''), text_quality, coalesce(media_type, '')
		FROM pages
		WHERE document_id = $1 AND page_num = $2
	`, documentID, pageNum))
}

func (s *GraphDBStore) PagesForDocument(ctx context.Context, documentID int64) ([]common.Page, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, document_id, page_num, coalesce(text_content, ''), text_quality, coalesce(media_type, '')
		FROM pages
		WHERE document_id = $1
		ORDER BY page_num
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []common.Page
	for rows.Next() {
		var page common.Page
		err := rows.Scan(&page.ID, &page.DocumentID, &page.PageNum, &page.Text, &page.Quality, &page.MediaType)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

func scanPage(row pgxv5.Row) (*common.Page, error) {
	var page common.Page
	err := row.Scan(&page.ID, &page.DocumentID, &page.PageNum, &page.Text, &page.Quality, &page.MediaType)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}
