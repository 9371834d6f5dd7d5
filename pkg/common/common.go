package common

import "time"

// EntityType classifies a named entity. The set mirrors the labels produced
// by the extraction models.
type EntityType string

const (
	EntityPerson EntityType = "PERSON"
	EntityOrg    EntityType = "ORG"
	EntityGPE    EntityType = "GPE"
	EntityLoc    EntityType = "LOC"
)

// EntityTypes lists all recognized entity types.
var EntityTypes = []EntityType{EntityPerson, EntityOrg, EntityGPE, EntityLoc}

// AnalysisState tracks whether a document has been through AI analysis.
type AnalysisState string

const (
	NotAnalyzed AnalysisState = "NOT_ANALYZED"
	Analyzed    AnalysisState = "ANALYZED"
)

// Document identifies a single source artifact. AI fields are mutated once
// per analysis pass; re-analysis is explicit, never automatic.
type Document struct {
	ID          int64         `json:"id"`
	Filename    string        `json:"filename"`
	Path        string        `json:"path"`
	ExternalURL string        `json:"external_url,omitempty"`
	DocType     string        `json:"doc_type"`
	Dataset     string        `json:"dataset"`
	Analysis    AnalysisState `json:"analysis"`
	AISummary   string        `json:"ai_summary,omitempty"`
	AddedAt     time.Time     `json:"added_at"`
}

// Page is one unit of extracted text owned by a Document. Text is stored
// PII-masked; deleting the document deletes its pages.
type Page struct {
	ID         int64   `json:"id"`
	DocumentID int64   `json:"document_id"`
	PageNum    int     `json:"page_num"`
	Text       string  `json:"text"`
	Quality    float64 `json:"quality"`
	MediaType  string  `json:"media_type"`
}

// Entity is a named thing of a fixed type. The (Name, Type) pair is the
// identity key for deduplication; entities are created lazily on first
// mention and never renamed.
type Entity struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Type           EntityType `json:"type"`
	NormalizedName string     `json:"normalized_name,omitempty"`
	CountryCode    string     `json:"country_code,omitempty"`
}

// PageEntity links a page to an entity it mentions. Repeated mentions
// increment Frequency rather than creating duplicate links.
type PageEntity struct {
	ID       int64 `json:"id"`
	PageID   int64 `json:"page_id"`
	EntityID int64 `json:"entity_id"`
	// Frequency counts distinct extraction passes that saw the mention.
	Frequency int `json:"frequency"`
}

// Relationship is a directed, typed edge between two entities, unique per
// (SourceID, TargetID, Type). Confidence is ~1.0 for curated facts and ~0.8
// for AI-derived ones.
type Relationship struct {
	ID          int64   `json:"id"`
	SourceID    int64   `json:"source_id"`
	TargetID    int64   `json:"target_id"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	// EvidencePageID points at the page the edge was derived from, 0 if unknown.
	EvidencePageID int64 `json:"evidence_page_id,omitempty"`
}

// CountryStats aggregates document and page counters per country code.
// DocCount counts distinct documents mentioning the country, PageCount
// counts qualifying pages.
type CountryStats struct {
	CountryCode string `json:"country_code"`
	DocCount    int    `json:"doc_count"`
	PageCount   int    `json:"page_count"`
}

// PersonCountryCoMention counts how often a person entity co-occurs with a
// country on the same page.
type PersonCountryCoMention struct {
	PersonID    int64  `json:"person_id"`
	CountryCode string `json:"country_code"`
	Frequency   int    `json:"frequency"`
}

// Connection is the flattened, name-level view of a relationship exposed to
// callers that do not hold entity IDs.
type Connection struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}
