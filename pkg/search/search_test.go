package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/store"
	"github.com/archivelab/vault/pkg/store/memory"
)

func seedCorpus(t *testing.T) *memory.Store {
	t.Helper()
	ctx := t.Context()
	s := memory.New()

	doc := common.Document{Filename: "deposition.pdf", Path: "/deposition.pdf"}
	if err := s.CreateDocument(ctx, &doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	pages := []string{
		"The witness reviewed the flight logs from the private jet.",
		"Unrelated testimony about bank accounts.",
		"Further discussion of travel, flight logs were mentioned again.",
	}
	for i, text := range pages {
		page := common.Page{DocumentID: doc.ID, PageNum: i + 1, Text: text}
		if err := s.CreatePage(ctx, &page); err != nil {
			t.Fatalf("CreatePage failed: %v", err)
		}
	}
	return s
}

func TestSearchSubstring(t *testing.T) {
	engine := NewEngine(seedCorpus(t))

	hits := engine.Search(t.Context(), "flight logs", Filters{}, 10)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	// Fallback order is stable by page ID.
	if hits[0].PageNumber != 1 || hits[1].PageNumber != 3 {
		t.Fatalf("expected pages 1 and 3 in order, got %d and %d", hits[0].PageNumber, hits[1].PageNumber)
	}
	for _, hit := range hits {
		if !strings.Contains(strings.ToLower(hit.Snippet), "flight logs") {
			t.Fatalf("expected snippet to contain query, got %q", hit.Snippet)
		}
		if hit.DocumentTitle != "deposition.pdf" {
			t.Fatalf("expected document title, got %q", hit.DocumentTitle)
		}
	}

	if hits := engine.Search(t.Context(), "FLIGHT LOGS", Filters{}, 10); len(hits) != 2 {
		t.Fatalf("expected case-insensitive match, got %d hits", len(hits))
	}
	if hits := engine.Search(t.Context(), "flight logs", Filters{}, 1); len(hits) != 1 {
		t.Fatalf("expected limit to apply, got %d hits", len(hits))
	}
	if hits := engine.Search(t.Context(), "submarine", Filters{}, 10); len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
	if hits := engine.Search(t.Context(), "", Filters{}, 10); hits != nil {
		t.Fatalf("expected nil for empty query, got %v", hits)
	}
}

func TestSearchCountryFilter(t *testing.T) {
	ctx := t.Context()
	s := seedCorpus(t)

	france, err := s.GetOrCreateEntity(ctx, "France", common.EntityGPE)
	if err != nil {
		t.Fatalf("GetOrCreateEntity failed: %v", err)
	}
	if err := s.SetEntityCountry(ctx, france.ID, "France", "FR"); err != nil {
		t.Fatalf("SetEntityCountry failed: %v", err)
	}
	page, err := s.GetPageByNumber(ctx, 1, 3)
	if err != nil {
		t.Fatalf("GetPageByNumber failed: %v", err)
	}
	if err := s.LinkPageEntity(ctx, page.ID, france.ID); err != nil {
		t.Fatalf("LinkPageEntity failed: %v", err)
	}

	engine := NewEngine(s)
	hits := engine.Search(ctx, "flight logs", Filters{Country: "FR"}, 10)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit with country filter, got %d", len(hits))
	}
	if hits[0].PageNumber != 3 {
		t.Fatalf("expected page 3, got %d", hits[0].PageNumber)
	}
}

type failingStore struct {
	*memory.Store
}

func (f *failingStore) ListPageRefs(ctx context.Context, countryCode string) ([]store.PageRef, error) {
	return nil, errors.New("backend down")
}

func TestSearchBackendFailureReturnsEmpty(t *testing.T) {
	engine := NewEngine(&failingStore{Store: memory.New()})

	hits := engine.Search(t.Context(), "anything", Filters{}, 10)
	if len(hits) != 0 {
		t.Fatalf("expected empty results on backend failure, got %d hits", len(hits))
	}
}

func TestSnippetWindow(t *testing.T) {
	long := strings.Repeat("a", 200) + " flight logs " + strings.Repeat("b", 200)
	snippet := Snippet(long, "flight logs")

	if !strings.Contains(snippet, "flight logs") {
		t.Fatalf("expected snippet to contain match, got %q", snippet)
	}
	if !strings.HasPrefix(snippet, "…") || !strings.HasSuffix(snippet, "…") {
		t.Fatalf("expected ellipses on both ends, got %q", snippet)
	}

	short := "flight logs at the start"
	if got := Snippet(short, "flight logs"); got != short {
		t.Fatalf("expected untruncated snippet, got %q", got)
	}

	// No literal occurrence falls back to a prefix.
	if got := Snippet("some page text", "absent"); got != "some page text" {
		t.Fatalf("expected prefix fallback, got %q", got)
	}
	if got := Snippet("", "anything"); got != "" {
		t.Fatalf("expected empty snippet for empty text, got %q", got)
	}
}

func TestSnippetMultibyteText(t *testing.T) {
	// Ⱥ (U+023A) grows from 2 to 3 bytes when lowercased, İ (U+0130)
	// shrinks from 2 bytes to 1. Either way the snippet must stay on
	// rune boundaries of the original text.
	cases := []struct {
		name string
		text string
	}{
		{"grows when folded", strings.Repeat("Ⱥ", 200) + "flight logs"},
		{"shrinks when folded", strings.Repeat("İ", 200) + "flight logs " + strings.Repeat("İ", 200)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snippet := Snippet(tc.text, "flight logs")
			if !utf8.ValidString(snippet) {
				t.Fatalf("expected valid UTF-8 snippet, got %q", snippet)
			}
			if !strings.Contains(snippet, "flight logs") {
				t.Fatalf("expected snippet to contain match, got %q", snippet)
			}
		})
	}

	// Prefix fallback on multibyte text must not cut mid-rune either.
	prefix := Snippet(strings.Repeat("é", 300), "absent")
	if !utf8.ValidString(prefix) {
		t.Fatalf("expected valid UTF-8 prefix, got %q", prefix)
	}
	if got := utf8.RuneCountInString(strings.TrimSuffix(prefix, "…")); got != snippetBefore+snippetAfter {
		t.Fatalf("expected %d-rune prefix, got %d", snippetBefore+snippetAfter, got)
	}
}
