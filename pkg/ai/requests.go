package ai

import "strings"

// Input budgets, in tokens, applied before submission. Long pages are cut to
// a bounded prefix for cost control.
const (
	AnalyzeInputBudget     = 4000
	ConnectionsInputBudget = 6000
	SummarizeInputBudget   = 2000

	maxNarrativeEntities = 10
	maxSnippets          = 5
)

// AnalyzeInput bounds a document excerpt for the analyze call.
func AnalyzeInput(text string) string {
	return TruncateTokens(text, AnalyzeInputBudget)
}

// NarrativeEntities caps and joins the entity list for narrative prompts.
func NarrativeEntities(entities []string) string {
	if len(entities) > maxNarrativeEntities {
		entities = entities[:maxNarrativeEntities]
	}
	return strings.Join(entities, ", ")
}

// JoinSnippets caps and joins document snippets for connection discovery,
// bounded to the connections token budget.
func JoinSnippets(snippets []string) string {
	if len(snippets) > maxSnippets {
		snippets = snippets[:maxSnippets]
	}
	joined := strings.Join(snippets, "\n\n---\n\n")
	return TruncateTokens(joined, ConnectionsInputBudget)
}

// JoinExcerpts caps and joins document previews for country summaries.
func JoinExcerpts(excerpts []string) string {
	if len(excerpts) > maxSnippets {
		excerpts = excerpts[:maxSnippets]
	}
	joined := strings.Join(excerpts, "\n\n")
	return TruncateTokens(joined, SummarizeInputBudget)
}
