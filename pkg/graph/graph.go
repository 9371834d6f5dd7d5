// Package graph runs the ingestion pipeline: page text is masked,
// scored, persisted, and mined for entities and relationships that land
// in the graph store. One page is the unit of commitment; a failed
// entity or relationship never aborts the rest of its page.
package graph

import (
	"fmt"

	"github.com/archivelab/vault/pkg/ai"
	"github.com/archivelab/vault/pkg/extract"
	"github.com/archivelab/vault/pkg/store"
)

// DefaultConcurrency bounds parallel document jobs.
const DefaultConcurrency = 4

// aiConfidence is assigned to AI-derived relationships; curated edges
// carry 1.0.
const aiConfidence = 0.8

// Extractor is the local extraction path. *extract.NERExtractor
// satisfies it; a nil Extractor disables the path.
type Extractor interface {
	Extract(text string) (extract.Mentions, error)
}

// Pipeline ingests documents into a GraphStore. Provider and extractor
// are fixed at construction; either may be absent and the pipeline
// degrades to the paths that remain.
type Pipeline struct {
	store       store.GraphStore
	provider    ai.Provider
	extractor   Extractor
	useAI       bool
	concurrency int
}

// PipelineParams configures NewPipeline. Store is required; Provider
// defaults to the no-op provider and Extractor to none.
type PipelineParams struct {
	Store       store.GraphStore
	Provider    ai.Provider
	Extractor   Extractor
	Concurrency int
}

func NewPipeline(params PipelineParams) (*Pipeline, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("graph: store is required")
	}
	provider := params.Provider
	if provider == nil {
		provider = ai.NewNoop()
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	_, noop := provider.(*ai.Noop)
	return &Pipeline{
		store:       params.Store,
		provider:    provider,
		extractor:   params.Extractor,
		useAI:       !noop,
		concurrency: concurrency,
	}, nil
}

// Report tallies one ingestion run. Failed lists items that were
// logged and skipped; everything counted was committed.
type Report struct {
	DocumentID      int64
	Pages           int
	Entities        int
	Relationships   int
	CountryMentions int
	Skipped         bool
	Failed          []string
}

func (r *Report) merge(other Report) {
	r.Pages += other.Pages
	r.Entities += other.Entities
	r.Relationships += other.Relationships
	r.CountryMentions += other.CountryMentions
	r.Failed = append(r.Failed, other.Failed...)
}

func (r *Report) fail(format string, args ...any) {
	r.Failed = append(r.Failed, fmt.Sprintf(format, args...))
}
