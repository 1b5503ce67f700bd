package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

func NewOpenAIProvider(opts ...OpenAIProviderOption) (*OpenAIProvider, error) {
	p := &OpenAIProvider{model: DefaultModel}
	for _, opt := range opts {
		opt(p)
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(p.apiKey)}
	if p.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(strings.TrimRight(p.baseURL, "/")+"/v1/"))
	}
	p.Client = openai.NewClient(clientOpts...)

	return p, nil
}

func (p *OpenAIProvider) Validate() error {
	if p.apiKey == "" {
		return fmt.Errorf("api key not set")
	}
	return nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))
	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(p.model),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	chat, err := p.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion")
	}
	s := strings.TrimSpace(chat.Choices[0].Message.Content)
	if s == "" {
		return "", fmt.Errorf("no message content")
	}
	return s, nil
}
