package ai

import "context"

// Noop is the Provider used when no backend is configured. Every call
// reports ErrUnavailable so callers fall through to their degraded paths.
type Noop struct{}

// NewNoop creates the no-provider Provider.
func NewNoop() *Noop {
	return &Noop{}
}

// Name identifies the provider.
func (n *Noop) Name() string {
	return "none"
}

// Analyze always reports ErrUnavailable.
func (n *Noop) Analyze(ctx context.Context, text string) (*Analysis, error) {
	return nil, ErrUnavailable
}

// GenerateNarrative always reports ErrUnavailable.
func (n *Noop) GenerateNarrative(ctx context.Context, entities []string, contextText string) (string, error) {
	return "", ErrUnavailable
}

// FindConnections always reports ErrUnavailable.
func (n *Noop) FindConnections(ctx context.Context, entityName string, snippets []string) ([]Connection, error) {
	return nil, ErrUnavailable
}

// Summarize always reports ErrUnavailable.
func (n *Noop) Summarize(ctx context.Context, countryCode string, excerpts []string) (string, error) {
	return "", ErrUnavailable
}
