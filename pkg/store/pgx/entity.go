package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/archivelab/vault/internal/util"
	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/store"
)

const entitySelect = `
	SELECT id, name, type, coalesce(normalized_name, ''), coalesce(country_code, '')
	FROM entities
`

// GetOrCreateEntity returns the entity identified by (name, type),
// creating it on first mention. The insert races with concurrent
// workers processing pages that mention the same entity, so a lost
// race falls through to a re-read and the whole pair is retried.
func (s *GraphDBStore) GetOrCreateEntity(ctx context.Context, name string, entityType common.EntityType) (common.Entity, error) {
	return util.RetryWithContext(ctx, 3, func(ctx context.Context) (common.Entity, error) {
		entity := common.Entity{Name: name, Type: entityType}
		err := s.conn.QueryRow(ctx, `
			INSERT INTO entities (name, type)
			VALUES ($1, $2)
			ON CONFLICT (name, type) DO NOTHING
			RETURNING id
		`, name, string(entityType)).Scan(&entity.ID)
		if err == nil {
			return entity, nil
		}
		if !errors.Is(err, pgxv5.ErrNoRows) {
			return common.Entity{}, err
		}

		existing, err := scanEntity(s.conn.QueryRow(ctx,
			entitySelect+`WHERE name = $1 AND type = $2`, name, string(entityType)))
		if err != nil {
			return common.Entity{}, err
		}
		return *existing, nil
	})
}

func (s *GraphDBStore) SetEntityCountry(ctx context.Context, entityID int64, normalizedName, countryCode string) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE entities SET normalized_name = $1, country_code = $2 WHERE id = $3
	`, normalizedName, countryCode, entityID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GraphDBStore) LinkPageEntity(ctx context.Context, pageID, entityID int64) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO page_entities (page_id, entity_id, frequency)
		VALUES ($1, $2, 1)
		ON CONFLICT (page_id, entity_id)
		DO UPDATE SET frequency = page_entities.frequency + 1
	`, pageID, entityID)
	return err
}

func (s *GraphDBStore) GetEntity(ctx context.Context, id int64) (*common.Entity, error) {
	return scanEntity(s.conn.QueryRow(ctx, entitySelect+`WHERE id = $1`, id))
}

// GetEntityByName resolves a name to an entity regardless of type.
// PERSON wins over other types carrying the same name; ties beyond
// that break on the oldest row.
func (s *GraphDBStore) GetEntityByName(ctx context.Context, name string) (*common.Entity, error) {
	return scanEntity(s.conn.QueryRow(ctx, entitySelect+`
		WHERE name = $1
		ORDER BY (type = 'PERSON') DESC, id
		LIMIT 1
	`, name))
}

func (s *GraphDBStore) EntitiesForPage(ctx context.Context, pageID int64) ([]common.Entity, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT e.id, e.name, e.type, coalesce(e.normalized_name, ''), coalesce(e.country_code, '')
		FROM entities e
		JOIN page_entities pe ON pe.entity_id = e.id
		WHERE pe.page_id = $1
		ORDER BY e.id
	`, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntities(rows)
}

func (s *GraphDBStore) PagesForEntity(ctx context.Context, entityID int64, limit int) ([]store.PageRef, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.Query(ctx, `
		SELECT p.id, p.document_id, p.page_num, coalesce(p.text_content, ''), p.text_quality,
		       coalesce(p.media_type, ''), d.filename
		FROM pages p
		JOIN page_entities pe ON pe.page_id = p.id
		JOIN documents d ON d.id = p.document_id
		WHERE pe.entity_id = $1
		ORDER BY p.id
		LIMIT $2
	`, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPageRefs(rows)
}

func scanEntity(row pgxv5.Row) (*common.Entity, error) {
	var entity common.Entity
	var entityType string
	err := row.Scan(&entity.ID, &entity.Name, &entityType, &entity.NormalizedName, &entity.CountryCode)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	entity.Type = common.EntityType(entityType)
	return &entity, nil
}

func collectEntities(rows pgxv5.Rows) ([]common.Entity, error) {
	var entities []common.Entity
	for rows.Next() {
		var entity common.Entity
		var entityType string
		err := rows.Scan(&entity.ID, &entity.Name, &entityType, &entity.NormalizedName, &entity.CountryCode)
		if err != nil {
			return nil, err
		}
		entity.Type = common.EntityType(entityType)
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func collectPageRefs(rows pgxv5.Rows) ([]store.PageRef, error) {
	var refs []store.PageRef
	for rows.Next() {
		var ref store.PageRef
		err := rows.Scan(&ref.Page.ID, &ref.Page.DocumentID, &ref.Page.PageNum,
			&ref.Page.Text, &ref.Page.Quality, &ref.Page.MediaType, &ref.DocumentFilename)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
