package client

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOpenAIChatCompletions struct {
	lastParams openai.ChatCompletionNewParams
	resp       *openai.ChatCompletion
	err        error
}

func (s *stubOpenAIChatCompletions) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	s.lastParams = body
	return s.resp, s.err
}

func TestOpenAIProviderCompleteReturnsFirstChoice(t *testing.T) {
	stub := &stubOpenAIChatCompletions{resp: &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "hi there"}},
		},
	}}
	p, err := NewOpenAIProvider(stub, "gpt-4o")
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "system", "ping")
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
	assert.Len(t, stub.lastParams.Messages, 2)
}

func TestOpenAIProviderCompleteOmitsSystemMessageWhenEmpty(t *testing.T) {
	stub := &stubOpenAIChatCompletions{resp: &openai.ChatCompletion{}}
	p, err := NewOpenAIProvider(stub, "gpt-4o")
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "", "ping")
	require.NoError(t, err)
	assert.Len(t, stub.lastParams.Messages, 1)
}

func TestOpenAIProviderCompleteReturnsEmptyWithNoChoices(t *testing.T) {
	stub := &stubOpenAIChatCompletions{resp: &openai.ChatCompletion{}}
	p, err := NewOpenAIProvider(stub, "gpt-4o")
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "", "ping")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestOpenAIProviderCompletePropagatesError(t *testing.T) {
	stub := &stubOpenAIChatCompletions{err: errors.New("boom")}
	p, err := NewOpenAIProvider(stub, "gpt-4o")
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "", "ping")
	assert.Error(t, err)
}

func TestNewOpenAIProviderRequiresClientAndModel(t *testing.T) {
	_, err := NewOpenAIProvider(nil, "gpt-4o")
	assert.Error(t, err)

	_, err = NewOpenAIProvider(&stubOpenAIChatCompletions{}, "")
	assert.Error(t, err)
}
