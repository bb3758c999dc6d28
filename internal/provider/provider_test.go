package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"lexi-backend/internal/config"
	"lexi-backend/internal/model"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	reply    string
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	f.received = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

func TestStubReturnsFixedAnswer(t *testing.T) {
	p := NewStubProvider(0)

	answer, err := p.AnswerQuery(context.Background(), "anything at all")
	require.NoError(t, err)

	assert.Equal(t, StubAnswer, answer.Answer)
	require.Len(t, answer.Citations, 1)
	c := answer.Citations[0]
	assert.Equal(t, "Dani_Devi_v_Pritam_Singh.pdf", c.Source)
	require.NotNil(t, c.Paragraph)
	assert.Equal(t, 7, *c.Paragraph)
}

func TestStubIgnoresQuery(t *testing.T) {
	p := NewStubProvider(0)
	a, _ := p.AnswerQuery(context.Background(), "one")
	b, _ := p.AnswerQuery(context.Background(), "two")
	assert.Equal(t, a, b)
}

func TestStubHonoursDelayAndCancellation(t *testing.T) {
	p := NewStubProvider(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.AnswerQuery(ctx, "q")
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   bool
		wantText  string
		wantCites int
	}{
		{
			name:      "plain json",
			content:   `{"answer":"Yes.","citations":[{"text":"t","source":"a.pdf","link":"https://x","paragraph":3}]}`,
			wantText:  "Yes.",
			wantCites: 1,
		},
		{
			name:      "fenced json",
			content:   "```json\n{\"answer\": \"No.\"}\n```",
			wantText:  "No.",
			wantCites: 0,
		},
		{
			name:    "no json",
			content: "I cannot help with that",
			wantErr: true,
		},
		{
			name:    "empty answer",
			content: `{"answer":"  ","citations":[]}`,
			wantErr: true,
		},
		{
			name:    "broken json",
			content: `{"answer": "x", "citations": [}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, err := ParseAnswer(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrProviderFailure)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, answer.Answer)
			assert.Len(t, answer.Citations, tt.wantCites)
			assert.NotNil(t, answer.Citations)
		})
	}
}

func TestModelProviderSendsSystemAndUserMessages(t *testing.T) {
	fake := &fakeChatModel{reply: `{"answer":"ok","citations":[]}`}
	p := NewModelProvider("fake", fake, "")

	answer, err := p.AnswerQuery(context.Background(), "is this a question?")
	require.NoError(t, err)
	assert.Equal(t, "ok", answer.Answer)

	require.Len(t, fake.received, 2)
	assert.Equal(t, schema.System, fake.received[0].Role)
	assert.Equal(t, DefaultSystemPrompt, fake.received[0].Content)
	assert.Equal(t, schema.User, fake.received[1].Role)
	assert.Equal(t, "is this a question?", fake.received[1].Content)
}

func TestModelProviderWrapsModelErrors(t *testing.T) {
	p := NewModelProvider("fake", &fakeChatModel{err: errors.New("connection reset")}, "custom")

	_, err := p.AnswerQuery(context.Background(), "q")
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFuncAdapter(t *testing.T) {
	var p AnswerProvider = Func(func(ctx context.Context, query string) (*model.Answer, error) {
		return &model.Answer{Answer: query}, nil
	})
	a, err := p.AnswerQuery(context.Background(), "echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", a.Answer)
}

func TestRedactJSON(t *testing.T) {
	in := `{"model":"m","api_key":"sk-123","messages":[],"token": "abc"}`
	out := RedactJSON(in)

	assert.NotContains(t, out, "sk-123")
	assert.NotContains(t, out, "abc")
	assert.Contains(t, out, `"model":"m"`)
}

func TestFactory(t *testing.T) {
	cfg := &config.Config{}

	cfg.Provider.Type = "stub"
	p, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &StubProvider{}, p)

	cfg.Provider.Type = "openai"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err, "missing api key")

	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.Model = "gpt-4o-mini"
	p, err = New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &ModelProvider{}, p)

	cfg.Provider.Type = "qwen"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err, "missing api key")

	cfg.Provider.Type = "gemini"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
