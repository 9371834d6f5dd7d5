package service

import (
	"context"
	"errors"
	"testing"

	"github.com/archivelab/vault/pkg/ai"
	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/countries"
	"github.com/archivelab/vault/pkg/search"
	"github.com/archivelab/vault/pkg/store"
	"github.com/archivelab/vault/pkg/store/memory"
)

type analyzeProvider struct {
	ai.Noop
	analysis *ai.Analysis
	calls    int
}

func (p *analyzeProvider) Analyze(ctx context.Context, text string) (*ai.Analysis, error) {
	p.calls++
	if p.analysis == nil {
		return nil, errors.New("no analysis configured")
	}
	return p.analysis, nil
}

func newTestService(t *testing.T, s store.GraphStore, provider ai.Provider) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Store: s, Provider: provider})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func seedDocument(t *testing.T, s store.GraphStore, filename string, pages ...string) common.Document {
	t.Helper()
	ctx := t.Context()
	doc := common.Document{Filename: filename, Path: "/" + filename}
	if err := s.CreateDocument(t.Context(), &doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	for i, text := range pages {
		page := common.Page{DocumentID: doc.ID, PageNum: i + 1, Text: text}
		if err := s.CreatePage(ctx, &page); err != nil {
			t.Fatalf("CreatePage failed: %v", err)
		}
	}
	return doc
}

func TestAnalyzeDocumentCaching(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	provider := &analyzeProvider{analysis: &ai.Analysis{
		People:  []string{"John Doe"},
		Summary: "A deposition about travel.",
	}}
	svc := newTestService(t, s, provider)

	doc := seedDocument(t, s, "depo.pdf", "the witness testified about travel")

	first, err := svc.AnalyzeDocument(ctx, doc.ID, false)
	if err != nil {
		t.Fatalf("AnalyzeDocument failed: %v", err)
	}
	if first.Cached {
		t.Fatalf("expected fresh analysis")
	}
	if first.Summary != "A deposition about travel." {
		t.Fatalf("unexpected summary %q", first.Summary)
	}
	if first.Entities == 0 {
		t.Fatalf("expected extracted entities")
	}

	stored, err := s.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if stored.Analysis != common.Analyzed {
		t.Fatalf("expected document marked analyzed, got %s", stored.Analysis)
	}

	callsAfterFirst := provider.calls
	second, err := svc.AnalyzeDocument(ctx, doc.ID, false)
	if err != nil {
		t.Fatalf("AnalyzeDocument failed: %v", err)
	}
	if !second.Cached || second.Summary != first.Summary {
		t.Fatalf("expected cached summary, got %+v", second)
	}
	if provider.calls != callsAfterFirst {
		t.Fatalf("expected no provider calls on cached read")
	}

	forced, err := svc.AnalyzeDocument(ctx, doc.ID, true)
	if err != nil {
		t.Fatalf("forced AnalyzeDocument failed: %v", err)
	}
	if forced.Cached {
		t.Fatalf("expected force to re-analyze")
	}
	if provider.calls == callsAfterFirst {
		t.Fatalf("expected provider calls on forced re-analysis")
	}
}

func TestAnalyzeDocumentWithoutProvider(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	svc := newTestService(t, s, nil)

	doc := seedDocument(t, s, "plain.pdf", "some page text")
	result, err := svc.AnalyzeDocument(ctx, doc.ID, false)
	if err != nil {
		t.Fatalf("AnalyzeDocument failed: %v", err)
	}
	if result.Cached || result.Summary != "" {
		t.Fatalf("expected empty uncached result, got %+v", result)
	}

	// Without a provider the document stays re-analyzable.
	stored, err := s.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if stored.Analysis != common.NotAnalyzed {
		t.Fatalf("expected document to stay NOT_ANALYZED, got %s", stored.Analysis)
	}
}

func TestAnalyzeDocumentUnknown(t *testing.T) {
	svc := newTestService(t, memory.New(), nil)
	if _, err := svc.AnalyzeDocument(t.Context(), 99, false); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetEntity(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	svc := newTestService(t, s, nil)

	doc := seedDocument(t, s, "a.pdf", "page text")
	page, _ := s.GetPageByNumber(ctx, doc.ID, 1)
	alice, _ := s.GetOrCreateEntity(ctx, "Alice", common.EntityPerson)
	bob, _ := s.GetOrCreateEntity(ctx, "Bob", common.EntityPerson)
	_ = s.LinkPageEntity(ctx, page.ID, alice.ID)
	_ = s.UpsertRelationship(ctx, common.Relationship{SourceID: alice.ID, TargetID: bob.ID, Type: "ASSOCIATE", Confidence: 1.0})

	details, err := svc.GetEntity(ctx, " Alice ")
	if err != nil {
		t.Fatalf("GetEntity failed: %v", err)
	}
	if details.Entity.ID != alice.ID {
		t.Fatalf("expected Alice, got %+v", details.Entity)
	}
	if len(details.Pages) != 1 || details.Pages[0].DocumentFilename != "a.pdf" {
		t.Fatalf("expected one page ref, got %+v", details.Pages)
	}
	if len(details.Relationships) != 1 {
		t.Fatalf("expected one relationship, got %d", len(details.Relationships))
	}

	if _, err := svc.GetEntity(ctx, "Nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetCountryDetails(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	svc := newTestService(t, s, nil)

	doc := seedDocument(t, s, "fr.pdf", "paris text")
	page, err := s.GetPageByNumber(ctx, doc.ID, 1)
	if err != nil {
		t.Fatalf("GetPageByNumber failed: %v", err)
	}
	if err := s.RecordCountryMention(ctx, "FR", doc.ID, page.ID); err != nil {
		t.Fatalf("RecordCountryMention failed: %v", err)
	}
	person, _ := s.GetOrCreateEntity(ctx, "Jean", common.EntityPerson)
	_ = s.RecordPersonCountryCoMention(ctx, person.ID, "FR")

	details, err := svc.GetCountryDetails(ctx, "fr")
	if err != nil {
		t.Fatalf("GetCountryDetails failed: %v", err)
	}
	if details.Stats.DocCount != 1 || details.Stats.PageCount != 1 {
		t.Fatalf("unexpected stats %+v", details.Stats)
	}
	if details.Info.Name != "FRANCE" {
		t.Fatalf("expected registry info for FR, got %+v", details.Info)
	}
	if len(details.TopEntities) != 1 || details.TopEntities[0].ID != person.ID {
		t.Fatalf("expected Jean as top entity, got %+v", details.TopEntities)
	}

	// Never-mentioned country yields zero counters, not an error.
	empty, err := svc.GetCountryDetails(ctx, "JP")
	if err != nil {
		t.Fatalf("GetCountryDetails failed: %v", err)
	}
	if empty.Stats.DocCount != 0 || empty.Stats.PageCount != 0 {
		t.Fatalf("expected zero stats, got %+v", empty.Stats)
	}
}

func TestListCountries(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	svc := newTestService(t, s, nil)

	doc := seedDocument(t, s, "fr.pdf", "paris text")
	page, err := s.GetPageByNumber(ctx, doc.ID, 1)
	if err != nil {
		t.Fatalf("GetPageByNumber failed: %v", err)
	}
	if err := s.RecordCountryMention(ctx, "FR", doc.ID, page.ID); err != nil {
		t.Fatalf("RecordCountryMention failed: %v", err)
	}

	listings, err := svc.ListCountries(ctx)
	if err != nil {
		t.Fatalf("ListCountries failed: %v", err)
	}
	if len(listings) != len(countries.AllCodes()) {
		t.Fatalf("expected every registry country, got %d of %d", len(listings), len(countries.AllCodes()))
	}

	byCode := make(map[string]CountryListing, len(listings))
	for i, listing := range listings {
		if i > 0 && listings[i-1].Stats.CountryCode > listing.Stats.CountryCode {
			t.Fatalf("expected code order, got %q before %q", listings[i-1].Stats.CountryCode, listing.Stats.CountryCode)
		}
		byCode[listing.Stats.CountryCode] = listing
	}

	fr, ok := byCode["FR"]
	if !ok {
		t.Fatalf("expected FR listing")
	}
	if fr.Stats.DocCount != 1 || fr.Stats.PageCount != 1 {
		t.Fatalf("unexpected FR stats %+v", fr.Stats)
	}
	if fr.Info.Name != "FRANCE" {
		t.Fatalf("expected registry info for FR, got %+v", fr.Info)
	}

	// Never-mentioned countries still list, at zero.
	jp, ok := byCode["JP"]
	if !ok {
		t.Fatalf("expected JP listing")
	}
	if jp.Stats.DocCount != 0 || jp.Stats.PageCount != 0 {
		t.Fatalf("expected zero stats for JP, got %+v", jp.Stats)
	}
}

func TestSearchPassthrough(t *testing.T) {
	s := memory.New()
	svc := newTestService(t, s, nil)

	seedDocument(t, s, "log.pdf", "the flight logs were produced")
	hits := svc.Search(t.Context(), "flight logs", search.Filters{}, 10)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
}

type connectionsProvider struct {
	ai.Noop
	connections []ai.Connection
}

func (p *connectionsProvider) FindConnections(ctx context.Context, entityName string, snippets []string) ([]ai.Connection, error) {
	return p.connections, nil
}

func TestDiscoverConnections(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	provider := &connectionsProvider{connections: []ai.Connection{
		{Target: "Bob", Type: "associate", Description: "appears on the same page"},
	}}
	svc := newTestService(t, s, provider)

	doc := seedDocument(t, s, "a.pdf", "alice and bob met")
	page, _ := s.GetPageByNumber(ctx, doc.ID, 1)
	alice, _ := s.GetOrCreateEntity(ctx, "Alice", common.EntityPerson)
	_ = s.LinkPageEntity(ctx, page.ID, alice.ID)

	connections, err := svc.DiscoverConnections(ctx, "Alice")
	if err != nil {
		t.Fatalf("DiscoverConnections failed: %v", err)
	}
	if len(connections) != 1 || connections[0].Target != "Bob" {
		t.Fatalf("unexpected connections %+v", connections)
	}

	// No provider degrades to an empty list, not an error.
	plain := newTestService(t, s, nil)
	connections, err = plain.DiscoverConnections(ctx, "Alice")
	if err != nil {
		t.Fatalf("DiscoverConnections failed: %v", err)
	}
	if len(connections) != 0 {
		t.Fatalf("expected no connections without provider, got %+v", connections)
	}
}

func TestGetConnections(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	svc := newTestService(t, s, nil)

	a, _ := s.GetOrCreateEntity(ctx, "A", common.EntityPerson)
	b, _ := s.GetOrCreateEntity(ctx, "B", common.EntityPerson)
	_ = s.UpsertRelationship(ctx, common.Relationship{SourceID: a.ID, TargetID: b.ID, Type: "ASSOCIATE", Confidence: 1.0})

	rels, err := svc.GetConnections(ctx)
	if err != nil {
		t.Fatalf("GetConnections failed: %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(rels))
	}
}
