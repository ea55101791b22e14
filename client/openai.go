package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIChatCompletions captures the subset of the OpenAI SDK used by
// OpenAIProvider.
type OpenAIChatCompletions interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIProvider implements Provider over the OpenAI Chat Completions API.
type OpenAIProvider struct {
	chat  OpenAIChatCompletions
	model string
}

// NewOpenAIProvider builds a Provider from an already-configured OpenAI
// chat completions client.
func NewOpenAIProvider(chat OpenAIChatCompletions, model string) (*OpenAIProvider, error) {
	if chat == nil {
		return nil, errors.New("client: openai chat completions client is required")
	}
	if model == "" {
		return nil, errors.New("client: openai model identifier is required")
	}
	return &OpenAIProvider{chat: chat, model: model}, nil
}

// NewOpenAIProviderFromAPIKey constructs a Provider using the default
// OpenAI HTTP client configuration.
func NewOpenAIProviderFromAPIKey(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("client: openai api key is required")
	}
	oc := openai.NewClient(option.WithAPIKey(apiKey))
	return NewOpenAIProvider(oc.Chat.Completions, model)
}

// Complete issues a single Chat Completions request.
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userText))

	resp, err := p.chat.New(ctx, openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("client: openai chat.completions.new: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
