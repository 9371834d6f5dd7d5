// Package narrative turns the relationship graph around an entity into
// short prose. The primary mode is a deterministic template over
// stored edges; the freeform mode delegates to the AI provider and
// degrades to a fixed sentinel when no provider is configured.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/archivelab/vault/pkg/ai"
	"github.com/archivelab/vault/pkg/logger"
	"github.com/archivelab/vault/pkg/store"
)

const (
	// NoLinksSentinel is returned verbatim for entities without any
	// stored relationships.
	NoLinksSentinel = "No established links were found in the archive for this entity."

	// InsufficientSentinel is returned when freeform generation has no
	// provider or the provider fails.
	InsufficientSentinel = "There is not enough material in the archive to generate a narrative."

	closingStatement = "All connections are drawn from documents held in the archive."
)

// Synthesizer builds narratives from the graph store.
type Synthesizer struct {
	store    store.GraphStore
	provider ai.Provider
}

func NewSynthesizer(s store.GraphStore, provider ai.Provider) *Synthesizer {
	if provider == nil {
		provider = ai.NewNoop()
	}
	return &Synthesizer{store: s, provider: provider}
}

// Narrate produces the templated paragraph for an entity. The output
// is fully determined by the stored graph: same edges, same text.
func (s *Synthesizer) Narrate(ctx context.Context, entityID int64) (string, error) {
	entity, err := s.store.GetEntity(ctx, entityID)
	if err != nil {
		return "", err
	}

	rels, err := s.store.RelationshipsForEntity(ctx, entityID)
	if err != nil {
		return "", err
	}
	if len(rels) == 0 {
		return NoLinksSentinel, nil
	}

	links := make([]string, 0, len(rels))
	for _, rel := range rels {
		otherID := rel.TargetID
		if otherID == entityID {
			otherID = rel.SourceID
		}
		other, err := s.store.GetEntity(ctx, otherID)
		if err != nil {
			logger.Warn("[Narrative] Missing relationship endpoint", "entity", otherID, "err", err)
			continue
		}
		links = append(links, fmt.Sprintf("%s (%s)", other.Name, humanizeType(rel.Type)))
	}
	if len(links) == 0 {
		return NoLinksSentinel, nil
	}

	count := "connection"
	if len(links) > 1 {
		count = "connections"
	}
	return fmt.Sprintf("%s has %d documented %s in the archive: %s. %s",
		entity.Name, len(links), count, strings.Join(links, "; "), closingStatement), nil
}

// NarrateFreeform asks the AI provider for a short generated paragraph
// about the seed terms. Provider absence or failure yields the
// insufficient-narrative sentinel, never an empty string.
func (s *Synthesizer) NarrateFreeform(ctx context.Context, seedTerms []string, contextText string) string {
	text, err := s.provider.GenerateNarrative(ctx, seedTerms, contextText)
	if err != nil {
		if !errors.Is(err, ai.ErrUnavailable) {
			logger.Warn("[Narrative] Freeform generation failed", "provider", s.provider.Name(), "err", err)
		}
		return InsufficientSentinel
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return InsufficientSentinel
	}
	return text
}

func humanizeType(relType string) string {
	return strings.ToLower(strings.ReplaceAll(relType, "_", " "))
}
