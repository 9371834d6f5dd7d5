// Package ollama implements the ai.Provider interface against a locally
// hosted Ollama server.
package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/ollama/ollama/api"

	"github.com/archivelab/vault/pkg/ai"
)

// Provider is an ai.Provider backed by an Ollama server.
type Provider struct {
	analysisModel  string
	narrativeModel string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	client *api.Client
}

// NewProviderParams configures an Ollama provider. BaseURL may be empty for
// the default local endpoint; APIKey is attached as a bearer token when set,
// for proxied deployments.
type NewProviderParams struct {
	AnalysisModel  string
	NarrativeModel string
	BaseURL        string
	APIKey         string
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewProvider creates a Provider against the configured Ollama server.
func NewProvider(params NewProviderParams) (*Provider, error) {
	var (
		u   *url.URL
		err error
	)
	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := http.DefaultClient
	if params.APIKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{
					"Authorization": "Bearer " + params.APIKey,
				},
				rt: http.DefaultTransport,
			},
		}
	}

	if params.NarrativeModel == "" {
		params.NarrativeModel = params.AnalysisModel
	}

	return &Provider{
		analysisModel:  params.AnalysisModel,
		narrativeModel: params.NarrativeModel,
		client:         api.NewClient(u, httpClient),
	}, nil
}

// Name identifies the provider.
func (p *Provider) Name() string {
	return "ollama"
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
