package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/archivelab/vault/pkg/common"
)

// UpsertRelationship stores an edge unless the (source, target, type)
// triple already exists. The first write of a triple wins; replays and
// later lower-confidence extractions never overwrite it.
func (s *GraphDBStore) UpsertRelationship(ctx context.Context, rel common.Relationship) error {
	var evidence any
	if rel.EvidencePageID != 0 {
		evidence = rel.EvidencePageID
	}
	_, err := s.conn.Exec(ctx, `
		INSERT INTO relationships (source_id, target_id, rel_type, description, confidence, evidence_page_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_id, target_id, rel_type) DO NOTHING
	`, rel.SourceID, rel.TargetID, rel.Type, rel.Description, rel.Confidence, evidence)
	return err
}

func (s *GraphDBStore) RelationshipsForEntity(ctx context.Context, entityID int64) ([]common.Relationship, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, source_id, target_id, rel_type, coalesce(description, ''),
		       confidence, coalesce(evidence_page_id, 0)
		FROM relationships
		WHERE source_id = $1 OR target_id = $1
		ORDER BY id
	`, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRelationships(rows)
}

func (s *GraphDBStore) ListRelationships(ctx context.Context) ([]common.Relationship, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, source_id, target_id, rel_type, coalesce(description, ''),
		       confidence, coalesce(evidence_page_id, 0)
		FROM relationships
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRelationships(rows)
}

func collectRelationships(rows pgxv5.Rows) ([]common.Relationship, error) {
	var rels []common.Relationship
	for rows.Next() {
		var rel common.Relationship
		err := rows.Scan(&rel.ID, &rel.SourceID, &rel.TargetID, &rel.Type,
			&rel.Description, &rel.Confidence, &rel.EvidencePageID)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}
