package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/archivelab/vault/pkg/ai"
	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/extract"
	"github.com/archivelab/vault/pkg/store/memory"
)

type fakeProvider struct {
	analyses map[string]*ai.Analysis
	err      error
	calls    int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Analyze(ctx context.Context, text string) (*ai.Analysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for key, analysis := range f.analyses {
		if strings.Contains(text, key) {
			return analysis, nil
		}
	}
	return &ai.Analysis{}, nil
}

func (f *fakeProvider) GenerateNarrative(ctx context.Context, entities []string, contextText string) (string, error) {
	return "", ai.ErrUnavailable
}

func (f *fakeProvider) FindConnections(ctx context.Context, entityName string, snippets []string) ([]ai.Connection, error) {
	return nil, ai.ErrUnavailable
}

func (f *fakeProvider) Summarize(ctx context.Context, countryCode string, excerpts []string) (string, error) {
	return "", ai.ErrUnavailable
}

type fakeExtractor struct {
	mentions map[string]extract.Mentions
	err      error
}

func (f *fakeExtractor) Extract(text string) (extract.Mentions, error) {
	if f.err != nil {
		return extract.NewMentions(), f.err
	}
	for key, mentions := range f.mentions {
		if strings.Contains(text, key) {
			return mentions, nil
		}
	}
	return extract.NewMentions(), nil
}

func TestProcessDocumentTwoPageAnalysis(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	provider := &fakeProvider{analyses: map[string]*ai.Analysis{
		"page one": {
			People:    []string{"John Doe"},
			Locations: []string{"France"},
		},
		"page two": {
			People:    []string{"John Doe"},
			Locations: []string{"France"},
		},
	}}

	pipeline, err := NewPipeline(PipelineParams{Store: s, Provider: provider})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	doc := common.Document{Filename: "trip.pdf", Path: "/trip.pdf", DocType: "pdf"}
	report, err := pipeline.ProcessDocument(ctx, doc, []string{
		"page one mentions a trip",
		"page two mentions the same trip",
	})
	if err != nil {
		t.Fatalf("ProcessDocument failed: %v", err)
	}
	if report.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", report.Pages)
	}
	if len(report.Failed) != 0 {
		t.Fatalf("expected no failures, got %v", report.Failed)
	}

	person, err := s.GetEntityByName(ctx, "John Doe")
	if err != nil {
		t.Fatalf("expected person entity: %v", err)
	}
	if person.Type != common.EntityPerson {
		t.Fatalf("expected PERSON, got %s", person.Type)
	}

	france, err := s.GetEntityByName(ctx, "France")
	if err != nil {
		t.Fatalf("expected location entity: %v", err)
	}
	if france.CountryCode != "FR" {
		t.Fatalf("expected FR country code, got %q", france.CountryCode)
	}

	// Same entity on both pages yields two page links, one entity row.
	pages, err := s.PagesForEntity(ctx, person.ID, 10)
	if err != nil {
		t.Fatalf("PagesForEntity failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 page links, got %d", len(pages))
	}

	stats, err := s.CountryStats(ctx, "FR")
	if err != nil {
		t.Fatalf("CountryStats failed: %v", err)
	}
	if stats.DocCount != 1 || stats.PageCount != 2 {
		t.Fatalf("expected doc_count 1 page_count 2, got %d and %d", stats.DocCount, stats.PageCount)
	}

	// Person/country co-mentions rank John for FR.
	top, err := s.TopEntitiesForCountry(ctx, "FR", 5)
	if err != nil {
		t.Fatalf("TopEntitiesForCountry failed: %v", err)
	}
	if len(top) != 1 || top[0].ID != person.ID {
		t.Fatalf("expected John ranked for FR, got %+v", top)
	}
}

func TestProcessDocumentSkipsIngested(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	provider := &fakeProvider{analyses: map[string]*ai.Analysis{}}

	pipeline, err := NewPipeline(PipelineParams{Store: s, Provider: provider})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	doc := common.Document{Filename: "once.pdf", Path: "/once.pdf"}
	pages := []string{"only page"}
	if _, err := pipeline.ProcessDocument(ctx, doc, pages); err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	callsAfterFirst := provider.calls

	report, err := pipeline.ProcessDocument(ctx, doc, pages)
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}
	if !report.Skipped {
		t.Fatalf("expected second run to skip, got %+v", report)
	}
	if provider.calls != callsAfterFirst {
		t.Fatalf("expected no provider calls on replay, got %d extra", provider.calls-callsAfterFirst)
	}
}

func TestProcessPageReplayKeepsCountryCounts(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	extractor := &fakeExtractor{mentions: map[string]extract.Mentions{
		"Paris": func() extract.Mentions {
			m := extract.NewMentions()
			m.Add(common.EntityGPE, "France")
			m.Add(common.EntityGPE, "FRANCE")
			return m
		}(),
	}}

	pipeline, err := NewPipeline(PipelineParams{Store: s, Extractor: extractor})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	doc := common.Document{Filename: "paris.pdf", Path: "/paris.pdf"}
	if err := s.CreateDocument(ctx, &doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	// Two same-country mentions on one page, processed twice over, as a
	// re-analysis pass would do.
	for i := 0; i < 2; i++ {
		if _, err := pipeline.ProcessPage(ctx, &doc, 1, "Paris in spring"); err != nil {
			t.Fatalf("ProcessPage failed: %v", err)
		}
	}

	stats, err := s.CountryStats(ctx, "FR")
	if err != nil {
		t.Fatalf("CountryStats failed: %v", err)
	}
	if stats.DocCount != 1 || stats.PageCount != 1 {
		t.Fatalf("expected doc_count 1 page_count 1, got %d and %d", stats.DocCount, stats.PageCount)
	}
}

func TestProcessPageMasksBeforePersist(t *testing.T) {
	ctx := t.Context()
	s := memory.New()

	pipeline, err := NewPipeline(PipelineParams{Store: s})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	doc := common.Document{Filename: "pii.pdf", Path: "/pii.pdf"}
	if err := s.CreateDocument(ctx, &doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if _, err := pipeline.ProcessPage(ctx, &doc, 1, "Contact john@doe.com or 555-123-4567"); err != nil {
		t.Fatalf("ProcessPage failed: %v", err)
	}

	page, err := s.GetPageByNumber(ctx, doc.ID, 1)
	if err != nil {
		t.Fatalf("GetPageByNumber failed: %v", err)
	}
	if page.Text != "Contact [EMAIL] or [PHONE]" {
		t.Fatalf("expected masked text, got %q", page.Text)
	}
	if page.Quality <= 0 {
		t.Fatalf("expected positive quality score, got %f", page.Quality)
	}
}

func TestProcessPageContinuesPastAIFailure(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	provider := &fakeProvider{err: errors.New("model overloaded")}
	extractor := &fakeExtractor{mentions: map[string]extract.Mentions{
		"witness": func() extract.Mentions {
			m := extract.NewMentions()
			m.Add(common.EntityPerson, "Jane Roe")
			return m
		}(),
	}}

	pipeline, err := NewPipeline(PipelineParams{Store: s, Provider: provider, Extractor: extractor})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	doc := common.Document{Filename: "partial.pdf", Path: "/partial.pdf"}
	if err := s.CreateDocument(ctx, &doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	report, err := pipeline.ProcessPage(ctx, &doc, 1, "the witness testified")
	if err != nil {
		t.Fatalf("ProcessPage failed: %v", err)
	}

	// Local mentions persist even though the AI pass broke.
	if report.Entities != 1 {
		t.Fatalf("expected 1 entity, got %d", report.Entities)
	}
	if len(report.Failed) == 0 {
		t.Fatalf("expected AI failure to be reported")
	}
	if _, err := s.GetEntityByName(ctx, "Jane Roe"); err != nil {
		t.Fatalf("expected local entity persisted: %v", err)
	}
}

func TestProcessPageRelationships(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	provider := &fakeProvider{analyses: map[string]*ai.Analysis{
		"meeting": {
			People: []string{"Alice", "Bob"},
			Relationships: []ai.RelationshipFact{
				{Source: "Alice", Target: "Bob", Type: "business partner", Description: "met at the summit"},
				{Source: "Alice", Target: "Alice", Type: "self"},
			},
		},
	}}

	pipeline, err := NewPipeline(PipelineParams{Store: s, Provider: provider})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	doc := common.Document{Filename: "summit.pdf", Path: "/summit.pdf"}
	if err := s.CreateDocument(ctx, &doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	report, err := pipeline.ProcessPage(ctx, &doc, 1, "notes from the meeting")
	if err != nil {
		t.Fatalf("ProcessPage failed: %v", err)
	}
	if report.Relationships != 1 {
		t.Fatalf("expected 1 relationship, got %d", report.Relationships)
	}

	alice, err := s.GetEntityByName(ctx, "Alice")
	if err != nil {
		t.Fatalf("expected Alice entity: %v", err)
	}
	rels, err := s.RelationshipsForEntity(ctx, alice.ID)
	if err != nil {
		t.Fatalf("RelationshipsForEntity failed: %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(rels))
	}
	rel := rels[0]
	if rel.Type != "BUSINESS_PARTNER" {
		t.Fatalf("expected normalized type, got %q", rel.Type)
	}
	if rel.Confidence != 0.8 {
		t.Fatalf("expected AI confidence 0.8, got %f", rel.Confidence)
	}
	if rel.EvidencePageID == 0 {
		t.Fatalf("expected evidence page recorded")
	}
}

func TestProcessPageRelationshipPrefersPersonEndpoint(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	provider := &fakeProvider{analyses: map[string]*ai.Analysis{
		"filing": {
			People:        []string{"Alice", "Sterling"},
			Organizations: []string{"Sterling"},
			Relationships: []ai.RelationshipFact{
				{Source: "Alice", Target: "Sterling", Type: "associate"},
			},
		},
	}}

	pipeline, err := NewPipeline(PipelineParams{Store: s, Provider: provider})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	doc := common.Document{Filename: "filing.pdf", Path: "/filing.pdf"}
	if err := s.CreateDocument(ctx, &doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if _, err := pipeline.ProcessPage(ctx, &doc, 1, "the filing names both"); err != nil {
		t.Fatalf("ProcessPage failed: %v", err)
	}

	// The company and the person share a name; the edge must land on
	// the person, not whichever mention was stored last.
	alice, err := s.GetEntityByName(ctx, "Alice")
	if err != nil {
		t.Fatalf("expected Alice entity: %v", err)
	}
	sterling, err := s.GetOrCreateEntity(ctx, "Sterling", common.EntityPerson)
	if err != nil {
		t.Fatalf("expected Sterling person: %v", err)
	}
	rels, err := s.RelationshipsForEntity(ctx, alice.ID)
	if err != nil {
		t.Fatalf("RelationshipsForEntity failed: %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(rels))
	}
	if rels[0].TargetID != sterling.ID {
		t.Fatalf("expected person endpoint %d, got %d", sterling.ID, rels[0].TargetID)
	}
}
