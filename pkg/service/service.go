// Package service is the operation surface of the archive: search,
// entity and country lookups, narration and document analysis. It
// composes the store, search engine, pipeline and narrative
// synthesizer behind one façade the worker and any future transport
// share.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/archivelab/vault/pkg/ai"
	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/countries"
	"github.com/archivelab/vault/pkg/graph"
	"github.com/archivelab/vault/pkg/logger"
	"github.com/archivelab/vault/pkg/narrative"
	"github.com/archivelab/vault/pkg/search"
	"github.com/archivelab/vault/pkg/store"
)

const (
	entityPageLimit     = 25
	topEntityLimit      = 10
	countryExcerptLimit = 5
)

// Service wires the archive components together.
type Service struct {
	store    store.GraphStore
	provider ai.Provider
	engine   *search.Engine
	synth    *narrative.Synthesizer
	pipeline *graph.Pipeline
}

// ServiceParams configures NewService. Store is required; Provider
// defaults to the no-op provider; Extractor enables the local NER path.
type ServiceParams struct {
	Store       store.GraphStore
	Provider    ai.Provider
	Extractor   graph.Extractor
	Concurrency int
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("service: store is required")
	}
	provider := params.Provider
	if provider == nil {
		provider = ai.NewNoop()
	}

	pipeline, err := graph.NewPipeline(graph.PipelineParams{
		Store:       params.Store,
		Provider:    provider,
		Extractor:   params.Extractor,
		Concurrency: params.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		store:    params.Store,
		provider: provider,
		engine:   search.NewEngine(params.Store),
		synth:    narrative.NewSynthesizer(params.Store, provider),
		pipeline: pipeline,
	}, nil
}

// Pipeline exposes the ingestion pipeline for the queue worker.
func (s *Service) Pipeline() *graph.Pipeline {
	return s.pipeline
}

// Search returns matching pages; backend failures surface as an empty
// list, never an error.
func (s *Service) Search(ctx context.Context, query string, filters search.Filters, limit int) []search.Hit {
	return s.engine.Search(ctx, query, filters, limit)
}

// EntityDetails is the full read view of one entity.
type EntityDetails struct {
	Entity        common.Entity         `json:"entity"`
	Pages         []store.PageRef       `json:"pages"`
	Relationships []common.Relationship `json:"relationships"`
}

// GetEntity resolves a name to its entity with pages and
// relationships. Unknown names return store.ErrNotFound.
func (s *Service) GetEntity(ctx context.Context, name string) (*EntityDetails, error) {
	entity, err := s.store.GetEntityByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}

	pages, err := s.store.PagesForEntity(ctx, entity.ID, entityPageLimit)
	if err != nil {
		return nil, err
	}
	rels, err := s.store.RelationshipsForEntity(ctx, entity.ID)
	if err != nil {
		return nil, err
	}

	return &EntityDetails{Entity: *entity, Pages: pages, Relationships: rels}, nil
}

// CountryDetails aggregates everything known about one country code.
type CountryDetails struct {
	Info        countries.Info      `json:"info"`
	Stats       common.CountryStats `json:"stats"`
	TopEntities []common.Entity     `json:"top_entities"`
	AISummary   string              `json:"ai_summary,omitempty"`
}

// GetCountryDetails returns stats, registry metadata and top people
// for a country. Countries never mentioned yield zero counters rather
// than an error; the AI summary is best-effort.
func (s *Service) GetCountryDetails(ctx context.Context, code string) (*CountryDetails, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("service: country code is empty")
	}

	details := &CountryDetails{
		Info:  countries.GetInfo(code),
		Stats: common.CountryStats{CountryCode: code},
	}

	stats, err := s.store.CountryStats(ctx, code)
	if err == nil {
		details.Stats = *stats
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	top, err := s.store.TopEntitiesForCountry(ctx, code, topEntityLimit)
	if err != nil {
		return nil, err
	}
	details.TopEntities = top

	details.AISummary = s.summarizeCountry(ctx, code)
	return details, nil
}

// CountryListing pairs registry metadata with the archive's counters
// for one country.
type CountryListing struct {
	Info  countries.Info      `json:"info"`
	Stats common.CountryStats `json:"stats"`
}

// ListCountries returns every registry country with its counters, in
// code order, so map views render unmentioned countries at zero.
// Mentioned codes outside the registry are appended after.
func (s *Service) ListCountries(ctx context.Context) ([]CountryListing, error) {
	stats, err := s.store.ListCountryStats(ctx)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]common.CountryStats, len(stats))
	for _, st := range stats {
		byCode[st.CountryCode] = st
	}

	codes := countries.AllCodes()
	sort.Strings(codes)
	listings := make([]CountryListing, 0, len(codes)+len(byCode))
	for _, code := range codes {
		listing := CountryListing{
			Info:  countries.GetInfo(code),
			Stats: common.CountryStats{CountryCode: code},
		}
		if st, ok := byCode[code]; ok {
			listing.Stats = st
			delete(byCode, code)
		}
		listings = append(listings, listing)
	}

	extra := make([]string, 0, len(byCode))
	for code := range byCode {
		extra = append(extra, code)
	}
	sort.Strings(extra)
	for _, code := range extra {
		listings = append(listings, CountryListing{Info: countries.GetInfo(code), Stats: byCode[code]})
	}
	return listings, nil
}

func (s *Service) summarizeCountry(ctx context.Context, code string) string {
	refs, err := s.store.ListPageRefs(ctx, code)
	if err != nil || len(refs) == 0 {
		return ""
	}
	if len(refs) > countryExcerptLimit {
		refs = refs[:countryExcerptLimit]
	}

	excerpts := make([]string, 0, len(refs))
	for _, ref := range refs {
		excerpts = append(excerpts, ref.Page.Text)
	}

	summary, err := s.provider.Summarize(ctx, code, excerpts)
	if err != nil {
		if !errors.Is(err, ai.ErrUnavailable) {
			logger.Warn("[Service] Country summary failed", "country", code, "err", err)
		}
		return ""
	}
	return strings.TrimSpace(summary)
}

// GetConnections returns every stored relationship edge.
func (s *Service) GetConnections(ctx context.Context) ([]common.Relationship, error) {
	return s.store.ListRelationships(ctx)
}

// DiscoverConnections asks the provider for connections of an entity
// based on the pages that mention it. Provider absence or failure
// yields an empty list; discovered edges are not persisted, curation
// stays with the caller.
func (s *Service) DiscoverConnections(ctx context.Context, entityName string) ([]ai.Connection, error) {
	entity, err := s.store.GetEntityByName(ctx, strings.TrimSpace(entityName))
	if err != nil {
		return nil, err
	}

	refs, err := s.store.PagesForEntity(ctx, entity.ID, countryExcerptLimit)
	if err != nil {
		return nil, err
	}
	snippets := make([]string, 0, len(refs))
	for _, ref := range refs {
		snippets = append(snippets, ref.Page.Text)
	}

	connections, err := s.provider.FindConnections(ctx, entity.Name, snippets)
	if err != nil {
		if !errors.Is(err, ai.ErrUnavailable) {
			logger.Warn("[Service] Connection discovery failed", "entity", entity.Name, "err", err)
		}
		return nil, nil
	}
	return connections, nil
}

// Narrate produces the templated narrative for an entity.
func (s *Service) Narrate(ctx context.Context, entityID int64) (string, error) {
	return s.synth.Narrate(ctx, entityID)
}

// NarrateFreeform produces an AI-generated narrative over seed terms.
func (s *Service) NarrateFreeform(ctx context.Context, seedTerms []string, contextText string) string {
	return s.synth.NarrateFreeform(ctx, seedTerms, contextText)
}
