package client

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicMessages captures the subset of the Anthropic SDK used by
// AnthropicProvider, so callers can pass either a real
// *sdk.MessageService or a test double, mirroring goa-ai's
// MessagesClient narrow-interface pattern.
type AnthropicMessages interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// AnthropicProvider implements Provider over the Anthropic Messages API.
type AnthropicProvider struct {
	msg       AnthropicMessages
	model     string
	maxTokens int64
}

// NewAnthropicProvider builds a Provider from an already-configured
// Anthropic messages client.
func NewAnthropicProvider(msg AnthropicMessages, model string, maxTokens int64) (*AnthropicProvider, error) {
	if msg == nil {
		return nil, errors.New("client: anthropic messages client is required")
	}
	if model == "" {
		return nil, errors.New("client: anthropic model identifier is required")
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicProvider{msg: msg, model: model, maxTokens: maxTokens}, nil
}

// NewAnthropicProviderFromAPIKey constructs a Provider using the
// default Anthropic HTTP client configuration.
func NewAnthropicProviderFromAPIKey(apiKey, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, errors.New("client: anthropic api key is required")
	}
	sc := sdk.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicProvider(&sc.Messages, model, 0)
}

// Complete issues a single non-streaming Messages.New call.
func (p *AnthropicProvider) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	params := sdk.MessageNewParams{
		MaxTokens: p.maxTokens,
		Model:     sdk.Model(p.model),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(userText)),
		},
	}
	if systemPrompt != "" {
		params.System = []sdk.TextBlockParam{{Text: systemPrompt}}
	}
	msg, err := p.msg.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("client: anthropic messages.new: %w", err)
	}
	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out, nil
}
