package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/archivelab/vault/pkg/ai"
	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/store/memory"
)

func TestNarrateNoRelationships(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	entity, err := s.GetOrCreateEntity(ctx, "Loner", common.EntityPerson)
	if err != nil {
		t.Fatalf("GetOrCreateEntity failed: %v", err)
	}

	text, err := NewSynthesizer(s, nil).Narrate(ctx, entity.ID)
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if text != "No established links were found in the archive for this entity." {
		t.Fatalf("expected verbatim sentinel, got %q", text)
	}
}

func TestNarrateTemplated(t *testing.T) {
	ctx := t.Context()
	s := memory.New()

	alice, _ := s.GetOrCreateEntity(ctx, "Alice", common.EntityPerson)
	bob, _ := s.GetOrCreateEntity(ctx, "Bob", common.EntityPerson)
	acme, _ := s.GetOrCreateEntity(ctx, "Acme", common.EntityOrg)

	rels := []common.Relationship{
		{SourceID: alice.ID, TargetID: bob.ID, Type: "BUSINESS_PARTNER", Confidence: 0.8},
		{SourceID: acme.ID, TargetID: alice.ID, Type: "EMPLOYER", Confidence: 1.0},
	}
	for _, rel := range rels {
		if err := s.UpsertRelationship(ctx, rel); err != nil {
			t.Fatalf("UpsertRelationship failed: %v", err)
		}
	}

	synth := NewSynthesizer(s, nil)
	text, err := synth.Narrate(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}

	for _, want := range []string{"Alice", "Bob (business partner)", "Acme (employer)", "2 documented connections"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected narrative to contain %q, got %q", want, text)
		}
	}

	// Deterministic: same graph, same text.
	again, err := synth.Narrate(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if text != again {
		t.Fatalf("expected deterministic narrative, got %q then %q", text, again)
	}
}

func TestNarrateUnknownEntity(t *testing.T) {
	if _, err := NewSynthesizer(memory.New(), nil).Narrate(t.Context(), 42); err == nil {
		t.Fatalf("expected error for unknown entity")
	}
}

type narrativeProvider struct {
	ai.Noop
	text string
	err  error
}

func (p *narrativeProvider) GenerateNarrative(ctx context.Context, entities []string, contextText string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.text, nil
}

func TestNarrateFreeform(t *testing.T) {
	ctx := t.Context()
	s := memory.New()

	got := NewSynthesizer(s, &narrativeProvider{text: "  A short generated story. "}).
		NarrateFreeform(ctx, []string{"Alice"}, "context")
	if got != "A short generated story." {
		t.Fatalf("expected trimmed provider text, got %q", got)
	}

	got = NewSynthesizer(s, nil).NarrateFreeform(ctx, []string{"Alice"}, "")
	if got != InsufficientSentinel {
		t.Fatalf("expected sentinel without provider, got %q", got)
	}

	got = NewSynthesizer(s, &narrativeProvider{err: errors.New("boom")}).
		NarrateFreeform(ctx, []string{"Alice"}, "")
	if got != InsufficientSentinel {
		t.Fatalf("expected sentinel on provider failure, got %q", got)
	}
}
