package provider

import (
	"context"
	"encoding/json"
	"strings"

	"lexi-backend/internal/model"
	"lexi-backend/pkg/logger"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
)

const DefaultSystemPrompt = `You are Lexi, a legal research assistant.
Answer the user's legal question concisely and cite the judgments you rely on.
Reply with a single JSON object and nothing else:
{"answer": "<answer text>", "citations": [{"text": "<verbatim excerpt>", "source": "<document file name>", "link": "<document URL>", "paragraph": <paragraph number or omit>}]}`

// ModelProvider answers queries with any eino chat model. The model is asked
// for a JSON object carrying the answer and its citations.
type ModelProvider struct {
	chatModel    einoModel.ChatModel
	systemPrompt string
	name         string
}

func NewModelProvider(name string, chatModel einoModel.ChatModel, systemPrompt string) *ModelProvider {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &ModelProvider{
		chatModel:    chatModel,
		systemPrompt: systemPrompt,
		name:         name,
	}
}

func (p *ModelProvider) AnswerQuery(ctx context.Context, query string) (*model.Answer, error) {
	messages := []*schema.Message{
		schema.SystemMessage(p.systemPrompt),
		schema.UserMessage(query),
	}

	reply, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		logger.WithFields(logrus.Fields{"provider": p.name}).Warnf("model call failed: %v", err)
		return nil, wrapFailure(err)
	}
	if reply == nil {
		return nil, failure("%s returned no message", p.name)
	}

	answer, err := ParseAnswer(reply.Content)
	if err != nil {
		logger.WithFields(logrus.Fields{"provider": p.name}).Warnf("unparseable model reply: %v", err)
		return nil, err
	}
	return answer, nil
}

// ParseAnswer extracts the JSON answer object from a model reply, tolerating
// markdown code fences and prose around it.
func ParseAnswer(content string) (*model.Answer, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, failure("reply holds no JSON object")
	}

	var answer model.Answer
	if err := json.Unmarshal([]byte(content[start:end+1]), &answer); err != nil {
		return nil, failure("decode reply: %v", err)
	}

	answer.Answer = strings.TrimSpace(answer.Answer)
	if answer.Answer == "" {
		return nil, failure("reply has an empty answer")
	}
	if answer.Citations == nil {
		answer.Citations = []model.Citation{}
	}
	return &answer, nil
}
