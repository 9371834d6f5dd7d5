package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/archivelab/vault/pkg/ai"
)

// Analyze extracts entities, relationships and a summary from a document
// excerpt.
func (p *Provider) Analyze(ctx context.Context, text string) (*ai.Analysis, error) {
	prompt := fmt.Sprintf(ai.AnalyzePrompt, ai.AnalyzeInput(text))

	var result ai.Analysis
	err := p.generateWithFormat(
		ctx,
		"analyze_document",
		"Extract entities, relationships and a summary from a document excerpt.",
		prompt,
		&result,
		ai.WithSystemPrompts(ai.AnalyzeSystemPrompt),
		ai.WithTemperature(0.3),
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateNarrative writes a short narrative about the given entities.
func (p *Provider) GenerateNarrative(ctx context.Context, entities []string, contextText string) (string, error) {
	prompt := fmt.Sprintf(ai.NarrativePrompt, ai.NarrativeEntities(entities), contextText)

	result, err := p.generate(
		ctx,
		prompt,
		ai.WithSystemPrompts(ai.NarrativeSystemPrompt),
		ai.WithTemperature(0.7),
		ai.WithMaxTokens(200),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

// FindConnections discovers relationships involving entityName across the
// supplied document snippets.
func (p *Provider) FindConnections(ctx context.Context, entityName string, snippets []string) ([]ai.Connection, error) {
	prompt := fmt.Sprintf(ai.ConnectionsPrompt, entityName, ai.JoinSnippets(snippets))

	var result struct {
		Connections []ai.Connection `json:"connections" jsonschema_description:"Connections discovered for the entity"`
	}
	err := p.generateWithFormat(
		ctx,
		"find_connections",
		"Discover relationships involving one entity across document excerpts.",
		prompt,
		&result,
		ai.WithSystemPrompts(ai.ConnectionsSystemPrompt),
		ai.WithTemperature(0.3),
	)
	if err != nil {
		return nil, err
	}
	return result.Connections, nil
}

// Summarize produces a short country-level summary from document excerpts.
func (p *Provider) Summarize(ctx context.Context, countryCode string, excerpts []string) (string, error) {
	prompt := fmt.Sprintf(ai.SummarizePrompt, countryCode, ai.JoinExcerpts(excerpts))

	result, err := p.generate(
		ctx,
		prompt,
		ai.WithSystemPrompts(ai.SummarizeSystemPrompt),
		ai.WithTemperature(0.6),
		ai.WithMaxTokens(150),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}
