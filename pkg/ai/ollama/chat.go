package ollama

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/archivelab/vault/pkg/ai"
)

// generate sends a single-turn prompt and returns assistant text.
func (p *Provider) generate(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	if p.client == nil {
		return "", ai.ErrUnavailable
	}

	options := ai.GenerateOptions{
		Model:       p.narrativeModel,
		Temperature: 0.7,
	}
	for _, o := range opts {
		o(&options)
	}

	req := p.buildRequest(prompt, options)

	final, err := p.collect(ctx, req)
	if err != nil {
		return "", err
	}
	return final.Message.Content, nil
}

// generateWithFormat enforces a JSON schema via Ollama's format parameter
// and unmarshals the response into out.
func (p *Provider) generateWithFormat(
	ctx context.Context,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	if p.client == nil {
		return ai.ErrUnavailable
	}

	options := ai.GenerateOptions{
		Model:       p.analysisModel,
		Temperature: 0.3,
	}
	for _, o := range opts {
		o(&options)
	}

	schemaObj := ai.GenerateSchema(out)
	formatBytes, err := json.Marshal(schemaObj)
	if err != nil {
		return err
	}

	req := p.buildRequest(prompt, options)
	req.Format = json.RawMessage(formatBytes)

	final, err := p.collect(ctx, req)
	if err != nil {
		return err
	}
	return ai.UnmarshalFlexible(final.Message.Content, out)
}

func (p *Provider) buildRequest(prompt string, options ai.GenerateOptions) *api.ChatRequest {
	stream := false
	msgs := make([]api.Message, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, api.Message{Role: "system", Content: sp})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: prompt})

	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": options.Temperature},
	}
	if options.MaxTokens > 0 {
		req.Options["num_predict"] = options.MaxTokens
	}
	return req
}

func (p *Provider) collect(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	var final api.ChatResponse
	if err := p.client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return nil, err
	}

	p.addMetrics(ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	})

	final.Message.Content = strings.TrimSpace(final.Message.Content)
	return &final, nil
}
