package provider

import (
	"context"

	"github.com/openai/openai-go/v2"
)

const DefaultModel = "gpt-4o-mini"

// Provider defines the minimal interface for LLM completion.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Validate() error
}

// Request is one completion call: the two prompt roles plus sampling
// temperature.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

// OpenAIProvider implements Provider using the official openai-go client.
type OpenAIProvider struct {
	apiKey  string
	model   string
	baseURL string

	Client openai.Client
}

type OpenAIProviderOption func(*OpenAIProvider)

func WithAPIKey(apiKey string) OpenAIProviderOption {
	return func(p *OpenAIProvider) {
		p.apiKey = apiKey
	}
}

func WithModel(model string) OpenAIProviderOption {
	return func(p *OpenAIProvider) {
		p.model = model
	}
}

// WithBaseURL points the client at an alternate API base, e.g. a proxy or
// a compatible non-OpenAI endpoint.
func WithBaseURL(baseURL string) OpenAIProviderOption {
	return func(p *OpenAIProvider) {
		p.baseURL = baseURL
	}
}
