package client

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBedrockRuntime struct {
	lastInput *bedrockruntime.ConverseInput
	resp      *bedrockruntime.ConverseOutput
	err       error
}

func (s *stubBedrockRuntime) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	s.lastInput = params
	return s.resp, s.err
}

func TestBedrockProviderCompleteConcatenatesTextBlocks(t *testing.T) {
	stub := &stubBedrockRuntime{resp: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: "hello "},
					&brtypes.ContentBlockMemberText{Value: "world"},
				},
			},
		},
	}}
	p, err := NewBedrockProvider(stub, "anthropic.claude-3-5-sonnet")
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "be terse", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
	require.Len(t, stub.lastInput.System, 1)
}

func TestBedrockProviderCompleteReturnsEmptyForNonMessageOutput(t *testing.T) {
	stub := &stubBedrockRuntime{resp: &bedrockruntime.ConverseOutput{}}
	p, err := NewBedrockProvider(stub, "anthropic.claude-3-5-sonnet")
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestBedrockProviderCompletePropagatesError(t *testing.T) {
	stub := &stubBedrockRuntime{err: errors.New("boom")}
	p, err := NewBedrockProvider(stub, "anthropic.claude-3-5-sonnet")
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "", "hi")
	assert.Error(t, err)
}

func TestNewBedrockProviderRequiresClientAndModel(t *testing.T) {
	_, err := NewBedrockProvider(nil, "anthropic.claude-3-5-sonnet")
	assert.Error(t, err)

	_, err = NewBedrockProvider(&stubBedrockRuntime{}, "")
	assert.Error(t, err)
}
