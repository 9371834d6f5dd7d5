package extract

import (
	"context"
	"strings"
	"time"

	"github.com/archivelab/vault/pkg/ai"
	"github.com/archivelab/vault/pkg/common"
	"github.com/archivelab/vault/pkg/logger"
)

// DefaultAITimeout bounds one provider analysis call.
const DefaultAITimeout = 60 * time.Second

// FromAnalysis buckets a provider analysis into typed mentions. Locations
// land under GPE; the country normalizer decides later which of them carry
// a country code.
func FromAnalysis(analysis *ai.Analysis) Mentions {
	mentions := NewMentions()
	if analysis == nil {
		return mentions
	}
	for _, name := range analysis.People {
		mentions.Add(common.EntityPerson, name)
	}
	for _, name := range analysis.Organizations {
		mentions.Add(common.EntityOrg, name)
	}
	for _, name := range analysis.Locations {
		mentions.Add(common.EntityGPE, name)
	}
	return mentions
}

// AnalyzeText runs the AI-provider extraction path. Provider failure,
// malformed responses and empty input all yield a well-formed Result; the
// Failed flag marks degraded passes.
func AnalyzeText(ctx context.Context, provider ai.Provider, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Mentions: NewMentions()}
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultAITimeout)
	defer cancel()

	analysis, err := provider.Analyze(ctx, text)
	if err != nil {
		logger.Warn("[Extract] AI analysis failed", "provider", provider.Name(), "err", err)
		return FailedResult()
	}

	result := Result{
		Mentions: FromAnalysis(analysis),
		Summary:  strings.TrimSpace(analysis.Summary),
	}
	for _, fact := range analysis.Relationships {
		source := strings.TrimSpace(fact.Source)
		target := strings.TrimSpace(fact.Target)
		if source == "" || target == "" || source == target {
			continue
		}
		result.Relationships = append(result.Relationships, RelationshipFact{
			Source:      source,
			Target:      target,
			Type:        normalizeRelationType(fact.Type),
			Description: strings.TrimSpace(fact.Description),
		})
	}
	return result
}

// normalizeRelationType uppercases and squashes relationship types so the
// (source, target, type) uniqueness key is stable across provider runs.
func normalizeRelationType(relationType string) string {
	relationType = strings.TrimSpace(relationType)
	if relationType == "" {
		return "ASSOCIATE"
	}
	relationType = strings.ToUpper(relationType)
	return strings.Join(strings.Fields(relationType), "_")
}
