// Package openai implements the ai.Provider interface against any
// OpenAI-compatible chat completion API. Grok is the same wire protocol on
// a different base URL, so a single client serves both.
package openai

import (
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/archivelab/vault/pkg/ai"
)

// GrokBaseURL is the OpenAI-compatible endpoint served by x.ai.
const GrokBaseURL = "https://api.x.ai/v1"

// Provider is an ai.Provider backed by an OpenAI-compatible chat API.
type Provider struct {
	name           string
	analysisModel  string
	narrativeModel string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	client *openai.Client
}

// NewProviderParams configures an OpenAI-compatible provider.
//
// AnalysisModel is used for structured extraction calls, NarrativeModel for
// free-text generation; the analysis model stands in when only one is set.
// BaseURL may be empty for the default OpenAI endpoint.
type NewProviderParams struct {
	Name           string
	AnalysisModel  string
	NarrativeModel string
	BaseURL        string
	APIKey         string
}

// NewProvider creates a Provider talking to the configured endpoint.
func NewProvider(params NewProviderParams) *Provider {
	if params.NarrativeModel == "" {
		params.NarrativeModel = params.AnalysisModel
	}
	name := params.Name
	if name == "" {
		name = "openai"
	}

	return &Provider{
		name:           name,
		analysisModel:  params.AnalysisModel,
		narrativeModel: params.NarrativeModel,
		client:         newClient(params.BaseURL, params.APIKey),
	}
}

// NewGrokProvider creates a Provider against the x.ai endpoint.
func NewGrokProvider(apiKey string, model string) *Provider {
	return NewProvider(NewProviderParams{
		Name:          "grok",
		AnalysisModel: model,
		BaseURL:       GrokBaseURL,
		APIKey:        apiKey,
	})
}

// Name identifies the provider.
func (p *Provider) Name() string {
	return p.name
}

// Metrics returns accumulated usage across calls.
func (p *Provider) Metrics() ai.ModelMetrics {
	p.metricsLock.Lock()
	defer p.metricsLock.Unlock()
	return p.metrics
}

func (p *Provider) addMetrics(sample ai.ModelMetrics) {
	p.metricsLock.Lock()
	defer p.metricsLock.Unlock()
	p.metrics.Add(sample)
}

func newClient(baseURL string, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)
	return &client
}
