package store

import (
	"context"
	"errors"

	"github.com/archivelab/vault/pkg/common"
)

// ErrNotFound is returned by lookup methods when no row matches.
var ErrNotFound = errors.New("store: not found")

// PageRef pairs a page with the filename of its parent document. Read
// paths that render search hits or evidence excerpts need both without
// a second round trip.
type PageRef struct {
	Page             common.Page
	DocumentFilename string
}

// ScoredPageRef is a PageRef with a backend-assigned relevance rank.
type ScoredPageRef struct {
	PageRef
	Rank float64
}

// GraphStore defines the interface for persisting and querying the
// document entity graph. Implementations must make every write
// idempotent: replaying the same page through the ingestion pipeline
// may call each method again with identical arguments.
type GraphStore interface {
	// Documents and pages.
	CreateDocument(ctx context.Context, doc *common.Document) error
	GetDocument(ctx context.Context, id int64) (*common.Document, error)
	GetDocumentByFilename(ctx context.Context, filename string) (*common.Document, error)
	ListDocuments(ctx context.Context) ([]common.Document, error)
	MarkDocumentAnalyzed(ctx context.Context, id int64, summary string) error
	CreatePage(ctx context.Context, page *common.Page) error
	GetPage(ctx context.Context, id int64) (*common.Page, error)
	GetPageByNumber(ctx context.Context, documentID int64, pageNum int) (*common.Page, error)
	PagesForDocument(ctx context.Context, documentID int64) ([]common.Page, error)

	// Entity graph writes.
	GetOrCreateEntity(ctx context.Context, name string, entityType common.EntityType) (common.Entity, error)
	SetEntityCountry(ctx context.Context, entityID int64, normalizedName, countryCode string) error
	LinkPageEntity(ctx context.Context, pageID, entityID int64) error
	UpsertRelationship(ctx context.Context, rel common.Relationship) error
	RecordCountryMention(ctx context.Context, countryCode string, documentID, pageID int64) error
	RecordPersonCountryCoMention(ctx context.Context, personID int64, countryCode string) error

	// Entity graph reads.
	GetEntity(ctx context.Context, id int64) (*common.Entity, error)
	GetEntityByName(ctx context.Context, name string) (*common.Entity, error)
	EntitiesForPage(ctx context.Context, pageID int64) ([]common.Entity, error)
	PagesForEntity(ctx context.Context, entityID int64, limit int) ([]PageRef, error)
	RelationshipsForEntity(ctx context.Context, entityID int64) ([]common.Relationship, error)
	ListRelationships(ctx context.Context) ([]common.Relationship, error)
	CountryStats(ctx context.Context, countryCode string) (*common.CountryStats, error)
	ListCountryStats(ctx context.Context) ([]common.CountryStats, error)
	TopEntitiesForCountry(ctx context.Context, countryCode string, limit int) ([]common.Entity, error)

	// ListPageRefs returns every page joined with its document
	// filename, ordered by page ID. When countryCode is non-empty only
	// pages mentioning an entity resolved to that country are
	// returned. The substring search strategy scans this listing.
	ListPageRefs(ctx context.Context, countryCode string) ([]PageRef, error)
}

// PageSearcher is implemented by stores whose backend has a native
// full-text primitive. The search engine probes for it and falls back
// to substring scanning over ListPageRefs when it is absent.
type PageSearcher interface {
	SearchPageRefs(ctx context.Context, query, countryCode string, limit int) ([]ScoredPageRef, error)
}
