package client

import (
	"context"
	"fmt"

	"github.com/kestrelfmt/agon"
)

// Client wraps a Provider and transparently AGON-encodes large context
// payloads before they reach the model, so callers never hand-roll the
// encode-then-prepend-hint dance themselves.
type Client struct {
	provider Provider
	opts     agon.Options
}

// New builds a Client around provider. opts configures how context data
// passed to SendWithContext is encoded; the zero value runs the adaptive
// selector (spec §4.6) with default settings.
func New(provider Provider, opts agon.Options) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("client: provider is required")
	}
	return &Client{provider: provider, opts: opts}, nil
}

// SendWithContext encodes contextData with agon.Encode and completes it
// against the wrapped provider: the system prompt is agon.Hint()
// followed by instructions (when non-empty), and the user text is the
// encoded payload as returned by EncodingResult.WithHeader.
func (c *Client) SendWithContext(ctx context.Context, instructions string, contextData any) (string, error) {
	v, err := agon.FromAny(contextData)
	if err != nil {
		return "", err
	}

	result, err := agon.Encode(ctx, v, c.opts)
	if err != nil {
		return "", err
	}

	systemPrompt := agon.Hint()
	if instructions != "" {
		systemPrompt += "\n\n" + instructions
	}

	userText := result.WithHeader()
	return c.provider.Complete(ctx, systemPrompt, userText)
}
