package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/archivelab/vault/internal/util"
	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/store"
)

// RecordCountryMention bumps the page and document counters for a
// country, each gated on a membership table insert. The
// country_documents and country_pages tables keep both counters exact
// under replays and concurrent workers; a page or document already on
// record leaves its counter untouched.
func (s *GraphDBStore) RecordCountryMention(ctx context.Context, countryCode string, documentID, pageID int64) error {
	return util.RetryErrWithContext(ctx, 3, func(ctx context.Context) error {
		return s.recordCountryMention(ctx, countryCode, documentID, pageID)
	})
}

func (s *GraphDBStore) recordCountryMention(ctx context.Context, countryCode string, documentID, pageID int64) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO country_stats (country_code, doc_count, page_count)
		VALUES ($1, 0, 0)
		ON CONFLICT (country_code) DO NOTHING
	`, countryCode)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO country_pages (country_code, page_id)
		VALUES ($1, $2)
		ON CONFLICT (country_code, page_id) DO NOTHING
	`, countryCode, pageID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE country_stats SET page_count = page_count + 1 WHERE country_code = $1
		`, countryCode)
		if err != nil {
			return err
		}
	}

	tag, err = tx.Exec(ctx, `
		INSERT INTO country_documents (country_code, document_id)
		VALUES ($1, $2)
		ON CONFLICT (country_code, document_id) DO NOTHING
	`, countryCode, documentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE country_stats SET doc_count = doc_count + 1 WHERE country_code = $1
		`, countryCode)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *GraphDBStore) RecordPersonCountryCoMention(ctx context.Context, personID int64, countryCode string) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO person_country_comentions (person_id, country_code, frequency)
		VALUES ($1, $2, 1)
		ON CONFLICT (person_id, country_code)
		DO UPDATE SET frequency = person_country_comentions.frequency + 1
	`, personID, countryCode)
	return err
}

func (s *GraphDBStore) CountryStats(ctx context.Context, countryCode string) (*common.CountryStats, error) {
	var stats common.CountryStats
	err := s.conn.QueryRow(ctx, `
		SELECT country_code, doc_count, page_count
		FROM country_stats
		WHERE country_code = $1
	`, countryCode).Scan(&stats.CountryCode, &stats.DocCount, &stats.PageCount)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *GraphDBStore) ListCountryStats(ctx context.Context) ([]common.CountryStats, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT country_code, doc_count, page_count
		FROM country_stats
		ORDER BY doc_count DESC, country_code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []common.CountryStats
	for rows.Next() {
		var stats common.CountryStats
		if err := rows.Scan(&stats.CountryCode, &stats.DocCount, &stats.PageCount); err != nil {
			return nil, err
		}
		all = append(all, stats)
	}
	return all, rows.Err()
}

func (s *GraphDBStore) TopEntitiesForCountry(ctx context.Context, countryCode string, limit int) ([]common.Entity, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.conn.Query(ctx, `
		SELECT e.id, e.name, e.type, coalesce(e.normalized_name, ''), coalesce(e.country_code, '')
		FROM entities e
		JOIN person_country_comentions pcc ON pcc.person_id = e.id
		WHERE pcc.country_code = $1
		ORDER BY pcc.frequency DESC, e.id
		LIMIT $2
	`, countryCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntities(rows)
}
