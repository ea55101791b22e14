package client

import (
	"context"
	"errors"
	"testing"

	"github.com/kestrelfmt/agon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	lastSystem string
	lastUser   string
	resp       string
	err        error
}

func (s *stubProvider) Complete(_ context.Context, systemPrompt, userText string) (string, error) {
	s.lastSystem = systemPrompt
	s.lastUser = userText
	return s.resp, s.err
}

func TestSendWithContextEncodesAndPrependsHint(t *testing.T) {
	stub := &stubProvider{resp: "ok"}
	cl, err := New(stub, agon.Options{})
	require.NoError(t, err)

	out, err := cl.SendWithContext(context.Background(), "answer the question", map[string]any{
		"rows": []any{
			map[string]any{"id": 1, "name": "Alice"},
			map[string]any{"id": 2, "name": "Bob"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Contains(t, stub.lastSystem, "AGON")
	assert.Contains(t, stub.lastSystem, "answer the question")
	assert.NotEmpty(t, stub.lastUser)
}

func TestSendWithContextOmitsInstructionsWhenEmpty(t *testing.T) {
	stub := &stubProvider{resp: "ok"}
	cl, err := New(stub, agon.Options{})
	require.NoError(t, err)

	_, err = cl.SendWithContext(context.Background(), "", map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, agon.Hint(), stub.lastSystem)
}

func TestSendWithContextPropagatesProviderError(t *testing.T) {
	stub := &stubProvider{err: errors.New("boom")}
	cl, err := New(stub, agon.Options{})
	require.NoError(t, err)

	_, err = cl.SendWithContext(context.Background(), "", map[string]any{"a": 1})
	assert.Error(t, err)
}

func TestNewRequiresProvider(t *testing.T) {
	_, err := New(nil, agon.Options{})
	assert.Error(t, err)
}
