// Package memory provides an in-memory GraphStore. It backs tests and
// single-process deployments that run without Postgres; writes follow
// the same idempotency rules as the pgx implementation.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/store"
)

type entityKey struct {
	name string
	typ  common.EntityType
}

type pageEntityKey struct {
	pageID   int64
	entityID int64
}

type relationshipKey struct {
	sourceID int64
	targetID int64
	relType  string
}

type personCountryKey struct {
	personID    int64
	countryCode string
}

// Store keeps the whole graph in maps guarded by a single RWMutex.
type Store struct {
	mu sync.RWMutex

	nextDocumentID     int64
	nextPageID         int64
	nextEntityID       int64
	nextRelationshipID int64

	documents map[int64]common.Document
	pages     map[int64]common.Page

	entities      map[int64]common.Entity
	entityByKey   map[entityKey]int64
	pageEntities  map[pageEntityKey]*common.PageEntity
	relationships map[relationshipKey]*common.Relationship

	countryStats map[string]*common.CountryStats
	// countryDocs and countryPages track which documents and pages
	// already counted toward a country's counters, so replays stay
	// idempotent.
	countryDocs   map[string]map[int64]struct{}
	countryPages  map[string]map[int64]struct{}
	personCountry map[personCountryKey]int
}

func New() *Store {
	return &Store{
		documents:     make(map[int64]common.Document),
		pages:         make(map[int64]common.Page),
		entities:      make(map[int64]common.Entity),
		entityByKey:   make(map[entityKey]int64),
		pageEntities:  make(map[pageEntityKey]*common.PageEntity),
		relationships: make(map[relationshipKey]*common.Relationship),
		countryStats:  make(map[string]*common.CountryStats),
		countryDocs:   make(map[string]map[int64]struct{}),
		countryPages:  make(map[string]map[int64]struct{}),
		personCountry: make(map[personCountryKey]int),
	}
}

func (s *Store) CreateDocument(ctx context.Context, doc *common.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.documents {
		if existing.Filename == doc.Filename {
			*doc = existing
			return nil
		}
	}

	s.nextDocumentID++
	doc.ID = s.nextDocumentID
	if doc.Analysis == "" {
		doc.Analysis = common.NotAnalyzed
	}
	if doc.AddedAt.IsZero() {
		doc.AddedAt = time.Now().UTC()
	}
	s.documents[doc.ID] = *doc
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id int64) (*common.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &doc, nil
}

func (s *Store) GetDocumentByFilename(ctx context.Context, filename string) (*common.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.documents {
		if doc.Filename == filename {
			d := doc
			return &d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListDocuments(ctx context.Context) ([]common.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]common.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *Store) MarkDocumentAnalyzed(ctx context.Context, id int64, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return store.ErrNotFound
	}
	doc.Analysis = common.Analyzed
	doc.AISummary = summary
	s.documents[id] = doc
	return nil
}

func (s *Store) CreatePage(ctx context.Context, page *common.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[page.DocumentID]; !ok {
		return store.ErrNotFound
	}
	for _, existing := range s.pages {
		if existing.DocumentID == page.DocumentID && existing.PageNum == page.PageNum {
			*page = existing
			return nil
		}
	}

	s.nextPageID++
	page.ID = s.nextPageID
	s.pages[page.ID] = *page
	return nil
}

func (s *Store) GetPage(ctx context.Context, id int64) (*common.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.pages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &page, nil
}

func (s *Store) GetPageByNumber(ctx context.Context, documentID int64, pageNum int) (*common.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, page := range s.pages {
		if page.DocumentID == documentID && page.PageNum == pageNum {
			p := page
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) PagesForDocument(ctx context.Context, documentID int64) ([]common.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pages []common.Page
	for _, page := range s.pages {
		if page.DocumentID == documentID {
			pages = append(pages, page)
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNum < pages[j].PageNum })
	return pages, nil
}

func (s *Store) GetOrCreateEntity(ctx context.Context, name string, entityType common.EntityType) (common.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entityKey{name: name, typ: entityType}
	if id, ok := s.entityByKey[key]; ok {
		return s.entities[id], nil
	}

	s.nextEntityID++
	entity := common.Entity{
		ID:   s.nextEntityID,
		Name: name,
		Type: entityType,
	}
	s.entities[entity.ID] = entity
	s.entityByKey[key] = entity.ID
	return entity, nil
}

func (s *Store) SetEntityCountry(ctx context.Context, entityID int64, normalizedName, countryCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.entities[entityID]
	if !ok {
		return store.ErrNotFound
	}
	entity.NormalizedName = normalizedName
	entity.CountryCode = countryCode
	s.entities[entityID] = entity
	return nil
}

func (s *Store) LinkPageEntity(ctx context.Context, pageID, entityID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pageEntityKey{pageID: pageID, entityID: entityID}
	if link, ok := s.pageEntities[key]; ok {
		link.Frequency++
		return nil
	}
	s.pageEntities[key] = &common.PageEntity{
		PageID:    pageID,
		EntityID:  entityID,
		Frequency: 1,
	}
	return nil
}

func (s *Store) UpsertRelationship(ctx context.Context, rel common.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := relationshipKey{sourceID: rel.SourceID, targetID: rel.TargetID, relType: rel.Type}
	if _, ok := s.relationships[key]; ok {
		return nil
	}

	s.nextRelationshipID++
	rel.ID = s.nextRelationshipID
	s.relationships[key] = &rel
	return nil
}

func (s *Store) RecordCountryMention(ctx context.Context, countryCode string, documentID, pageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.countryStats[countryCode]
	if !ok {
		stats = &common.CountryStats{CountryCode: countryCode}
		s.countryStats[countryCode] = stats
	}

	pages, ok := s.countryPages[countryCode]
	if !ok {
		pages = make(map[int64]struct{})
		s.countryPages[countryCode] = pages
	}
	if _, seen := pages[pageID]; !seen {
		pages[pageID] = struct{}{}
		stats.PageCount++
	}

	docs, ok := s.countryDocs[countryCode]
	if !ok {
		docs = make(map[int64]struct{})
		s.countryDocs[countryCode] = docs
	}
	if _, seen := docs[documentID]; !seen {
		docs[documentID] = struct{}{}
		stats.DocCount++
	}
	return nil
}

func (s *Store) RecordPersonCountryCoMention(ctx context.Context, personID int64, countryCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.personCountry[personCountryKey{personID: personID, countryCode: countryCode}]++
	return nil
}

func (s *Store) GetEntity(ctx context.Context, id int64) (*common.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &entity, nil
}

// GetEntityByName resolves a name to an entity regardless of type,
// preferring PERSON when the same name exists under several types.
func (s *Store) GetEntityByName(ctx context.Context, name string) (*common.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.entityByKey[entityKey{name: name, typ: common.EntityPerson}]; ok {
		entity := s.entities[id]
		return &entity, nil
	}
	var found *common.Entity
	for _, entity := range s.entities {
		if entity.Name != name {
			continue
		}
		if found == nil || entity.ID < found.ID {
			e := entity
			found = &e
		}
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}

func (s *Store) EntitiesForPage(ctx context.Context, pageID int64) ([]common.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entities []common.Entity
	for key, link := range s.pageEntities {
		if key.pageID != pageID {
			continue
		}
		entities = append(entities, s.entities[link.EntityID])
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
	return entities, nil
}

func (s *Store) PagesForEntity(ctx context.Context, entityID int64, limit int) ([]store.PageRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var refs []store.PageRef
	for key := range s.pageEntities {
		if key.entityID != entityID {
			continue
		}
		page := s.pages[key.pageID]
		refs = append(refs, store.PageRef{
			Page:             page,
			DocumentFilename: s.documents[page.DocumentID].Filename,
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Page.ID < refs[j].Page.ID })
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (s *Store) RelationshipsForEntity(ctx context.Context, entityID int64) ([]common.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rels []common.Relationship
	for _, rel := range s.relationships {
		if rel.SourceID == entityID || rel.TargetID == entityID {
			rels = append(rels, *rel)
		}
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].ID < rels[j].ID })
	return rels, nil
}

func (s *Store) ListRelationships(ctx context.Context) ([]common.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rels := make([]common.Relationship, 0, len(s.relationships))
	for _, rel := range s.relationships {
		rels = append(rels, *rel)
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].ID < rels[j].ID })
	return rels, nil
}

func (s *Store) CountryStats(ctx context.Context, countryCode string) (*common.CountryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.countryStats[countryCode]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *stats
	return &out, nil
}

func (s *Store) ListCountryStats(ctx context.Context) ([]common.CountryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]common.CountryStats, 0, len(s.countryStats))
	for _, stats := range s.countryStats {
		all = append(all, *stats)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DocCount != all[j].DocCount {
			return all[i].DocCount > all[j].DocCount
		}
		return all[i].CountryCode < all[j].CountryCode
	})
	return all, nil
}

func (s *Store) TopEntitiesForCountry(ctx context.Context, countryCode string, limit int) ([]common.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type ranked struct {
		entity common.Entity
		freq   int
	}
	var rankedEntities []ranked
	for key, freq := range s.personCountry {
		if key.countryCode != countryCode {
			continue
		}
		rankedEntities = append(rankedEntities, ranked{entity: s.entities[key.personID], freq: freq})
	}
	sort.Slice(rankedEntities, func(i, j int) bool {
		if rankedEntities[i].freq != rankedEntities[j].freq {
			return rankedEntities[i].freq > rankedEntities[j].freq
		}
		return rankedEntities[i].entity.ID < rankedEntities[j].entity.ID
	})
	if limit > 0 && len(rankedEntities) > limit {
		rankedEntities = rankedEntities[:limit]
	}

	entities := make([]common.Entity, len(rankedEntities))
	for i, r := range rankedEntities {
		entities[i] = r.entity
	}
	return entities, nil
}

func (s *Store) ListPageRefs(ctx context.Context, countryCode string) ([]store.PageRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var allowed map[int64]struct{}
	if countryCode != "" {
		allowed = make(map[int64]struct{})
		code := strings.ToUpper(countryCode)
		for key := range s.pageEntities {
			entity := s.entities[key.entityID]
			if entity.CountryCode == code {
				allowed[key.pageID] = struct{}{}
			}
		}
	}

	var refs []store.PageRef
	for _, page := range s.pages {
		if allowed != nil {
			if _, ok := allowed[page.ID]; !ok {
				continue
			}
		}
		refs = append(refs, store.PageRef{
			Page:             page,
			DocumentFilename: s.documents[page.DocumentID].Filename,
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Page.ID < refs[j].Page.ID })
	return refs, nil
}
