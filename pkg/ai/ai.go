// Package ai defines the provider abstraction for language-model assisted
// analysis. One Provider implementation exists per backend (OpenAI, Grok,
// Ollama) and is chosen once during process initialization; the Noop
// implementation stands in when no provider is configured, so callers never
// branch on availability.
package ai

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by the Noop provider and by implementations
// whose backend cannot be reached. Callers degrade to their documented
// fallback behavior instead of propagating it.
var ErrUnavailable = errors.New("ai provider not available")

// RelationshipFact is a single relationship claim extracted from a document.
type RelationshipFact struct {
	Source      string `json:"source" jsonschema_description:"Name of the source entity"`
	Target      string `json:"target" jsonschema_description:"Name of the target entity"`
	Type        string `json:"type" jsonschema_description:"Relationship type, e.g. associate, business partner, co-passenger"`
	Description string `json:"description" jsonschema_description:"Brief description of the connection evidence"`
}

// Analysis is the structured result of analyzing a document excerpt.
type Analysis struct {
	People        []string           `json:"people" jsonschema_description:"People mentioned, names only"`
	Organizations []string           `json:"organizations" jsonschema_description:"Organizations mentioned"`
	Locations     []string           `json:"locations" jsonschema_description:"Locations and countries mentioned"`
	Relationships []RelationshipFact `json:"relationships" jsonschema_description:"Key relationships between entities"`
	Summary       string             `json:"summary" jsonschema_description:"Brief two to three sentence summary"`
}

// Connection is a discovered relationship involving a queried entity.
type Connection struct {
	Target      string `json:"target" jsonschema_description:"Name of the connected person or organization"`
	Type        string `json:"type" jsonschema_description:"Relationship type"`
	Description string `json:"description" jsonschema_description:"Evidence description"`
}

// GenerateOptions holds configuration for provider requests.
type GenerateOptions struct {
	Model         string
	SystemPrompts []string
	Temperature   float64
	MaxTokens     int
}

// GenerateOption is a functional option for configuring provider requests.
type GenerateOption func(*GenerateOptions)

// WithModel sets the model to use for a request.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts sets the system prompts prepended to a request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature sets the sampling temperature. Lower values make outputs
// more deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens caps the response length.
func WithMaxTokens(tokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = tokens
	}
}

// Provider is the capability interface for language-model analysis. All
// methods are synchronous and must be bounded by the caller's context
// deadline; a failed call yields an error, never a panic.
type Provider interface {
	// Name identifies the backing provider for logging.
	Name() string

	// Analyze extracts entities, relationships and a summary from a
	// document excerpt. Input is truncated to a token budget upstream.
	Analyze(ctx context.Context, text string) (*Analysis, error)

	// GenerateNarrative writes a short factual narrative about the given
	// entities, optionally grounded in context text.
	GenerateNarrative(ctx context.Context, entities []string, contextText string) (string, error)

	// FindConnections discovers relationships involving entityName across
	// the supplied document snippets.
	FindConnections(ctx context.Context, entityName string, snippets []string) ([]Connection, error)

	// Summarize produces a short country-level summary from document
	// excerpts.
	Summarize(ctx context.Context, countryCode string, excerpts []string) (string, error)
}
