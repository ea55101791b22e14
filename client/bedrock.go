package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockRuntime captures the subset of the Bedrock Runtime SDK used by
// BedrockProvider.
type BedrockRuntime interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockProvider implements Provider over the Bedrock Converse API.
type BedrockProvider struct {
	rt      BedrockRuntime
	modelID string
}

// NewBedrockProvider builds a Provider from an already-configured
// Bedrock Runtime client.
func NewBedrockProvider(rt BedrockRuntime, modelID string) (*BedrockProvider, error) {
	if rt == nil {
		return nil, errors.New("client: bedrock runtime client is required")
	}
	if modelID == "" {
		return nil, errors.New("client: bedrock model id is required")
	}
	return &BedrockProvider{rt: rt, modelID: modelID}, nil
}

// Complete issues a single Converse call.
func (p *BedrockProvider) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: &p.modelID,
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: userText},
				},
			},
		},
	}
	if systemPrompt != "" {
		input.System = []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: systemPrompt},
		}
	}

	out, err := p.rt.Converse(ctx, input)
	if err != nil {
		return "", fmt.Errorf("client: bedrock converse: %w", err)
	}

	msgOutput, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", nil
	}
	var text string
	for _, block := range msgOutput.Value.Content {
		if tb, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text += tb.Value
		}
	}
	return text, nil
}
