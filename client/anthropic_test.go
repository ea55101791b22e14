package client

import (
	"context"
	"errors"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnthropicMessages struct {
	lastParams sdk.MessageNewParams
	resp       *sdk.Message
	err        error
}

func (s *stubAnthropicMessages) New(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	s.lastParams = body
	return s.resp, s.err
}

func TestAnthropicProviderCompleteConcatenatesTextBlocks(t *testing.T) {
	stub := &stubAnthropicMessages{resp: &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "hello "},
			{Type: "text", Text: "world"},
		},
	}}
	p, err := NewAnthropicProvider(stub, "claude-3.5-sonnet", 0)
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "be terse", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
	assert.Len(t, stub.lastParams.System, 1)
	assert.Equal(t, "be terse", stub.lastParams.System[0].Text)
}

func TestAnthropicProviderCompleteSkipsNonTextBlocks(t *testing.T) {
	stub := &stubAnthropicMessages{resp: &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "tool_use"},
			{Type: "text", Text: "ok"},
		},
	}}
	p, err := NewAnthropicProvider(stub, "claude-3.5-sonnet", 0)
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestAnthropicProviderCompletePropagatesError(t *testing.T) {
	stub := &stubAnthropicMessages{err: errors.New("boom")}
	p, err := NewAnthropicProvider(stub, "claude-3.5-sonnet", 0)
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "", "hi")
	assert.Error(t, err)
}

func TestNewAnthropicProviderRequiresClientAndModel(t *testing.T) {
	_, err := NewAnthropicProvider(nil, "claude-3.5-sonnet", 0)
	assert.Error(t, err)

	_, err = NewAnthropicProvider(&stubAnthropicMessages{}, "", 0)
	assert.Error(t, err)
}

func TestNewAnthropicProviderDefaultsMaxTokens(t *testing.T) {
	p, err := NewAnthropicProvider(&stubAnthropicMessages{}, "claude-3.5-sonnet", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4096, p.maxTokens)
}
