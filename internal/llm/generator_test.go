package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-report/report-assistant/internal/model"
)

type fakeClient struct {
	content string
	err     error
	last    *CompletionRequest
	block   bool
}

func (f *fakeClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	f.last = req
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &CompletionResponse{Content: f.content, Model: "fake-1", TokensIn: 10, TokensOut: 5}, nil
}

func (f *fakeClient) Name() string { return "fake" }

func TestGeneratorUnavailable(t *testing.T) {
	var nilGen *Generator
	assert.False(t, nilGen.Available())

	g := NewGenerator(nil, GeneratorConfig{}, nil)
	assert.False(t, g.Available())

	_, err := g.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = g.Summarize(context.Background(), "text")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGeneratorComplete(t *testing.T) {
	client := &fakeClient{content: "  Hello! How can I help?  "}
	g := NewGenerator(client, GeneratorConfig{Model: "m-1"}, nil)
	require.True(t, g.Available())

	reply, err := g.Complete(context.Background(), []model.ConversationTurn{
		{Role: model.RoleSystem, Content: "ignored"},
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "hello"},
		{Role: model.RoleUser, Content: "good morning"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", reply)

	require.NotNil(t, client.last)
	assert.Equal(t, "m-1", client.last.Model)
	assert.Equal(t, replySystemPrompt, client.last.System)
	require.Len(t, client.last.Messages, 3)
	assert.Equal(t, "user", client.last.Messages[0].Role)
}

func TestGeneratorSummarize(t *testing.T) {
	client := &fakeClient{content: "Dead street lamp at Block C"}
	g := NewGenerator(client, GeneratorConfig{}, nil)

	title, err := g.Summarize(context.Background(), "the lamp is dead at block C")
	require.NoError(t, err)
	assert.Equal(t, "Dead street lamp at Block C", title)
	assert.Equal(t, titleSystemPrompt, client.last.System)
	assert.Equal(t, "the lamp is dead at block C", client.last.Messages[0].Content)
}

func TestGeneratorErrors(t *testing.T) {
	g := NewGenerator(&fakeClient{err: errors.New("rate limited")}, GeneratorConfig{}, nil)
	_, err := g.Complete(context.Background(), []model.ConversationTurn{{Role: model.RoleUser, Content: "hi"}})
	assert.EqualError(t, err, "rate limited")

	g = NewGenerator(&fakeClient{content: "   "}, GeneratorConfig{}, nil)
	_, err = g.Summarize(context.Background(), "x")
	assert.Error(t, err)
}

func TestGeneratorTimeout(t *testing.T) {
	g := NewGenerator(&fakeClient{block: true}, GeneratorConfig{Timeout: 10 * time.Millisecond}, nil)
	_, err := g.Summarize(context.Background(), "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAnthropicMessages(t *testing.T) {
	msgs := anthropicMessages("be brief", []ChatMessage{
		{Role: "assistant", Content: "Hi, how can I help?"},
		{Role: "system", Content: "x"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	})
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "be brief\n\nhello", msgs[0].Content)

	assert.Empty(t, anthropicMessages("", []ChatMessage{{Role: "assistant", Content: "hi"}}))
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(ProviderAnthropic, "")
	assert.Error(t, err)
	_, err = NewClient("mystery", "key")
	assert.Error(t, err)

	c, err := NewClient(ProviderOpenAI, "sk-test")
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())
}
