// Package llm wraps the chat-completion provider behind a small adapter.
package llm

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/redactchat/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Model wraps a langchaingo chat model. Safe for concurrent use.
type Model struct {
	llm       llms.Model
	modelName string
}

// NewModel creates the OpenAI-backed completion client.
func NewModel(apiKey, modelName string) (*Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}

	m, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}

	return &Model{llm: m, modelName: modelName}, nil
}

// Model returns the configured model name.
func (m *Model) Model() string {
	return m.modelName
}

// Complete sends the full ordered conversation history and returns the
// assistant reply. Transport failures and empty responses are errors;
// the caller treats either as fatal to the turn.
func (m *Model) Complete(ctx context.Context, history []models.Message) (models.Message, error) {
	content := make([]llms.MessageContent, 0, len(history))
	for _, msg := range history {
		role := llms.ChatMessageTypeHuman
		if msg.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}

	resp, err := m.llm.GenerateContent(ctx, content)
	if err != nil {
		return models.Message{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Message{}, fmt.Errorf("chat completion: no response choices")
	}

	return models.Message{Role: models.RoleAssistant, Content: resp.Choices[0].Content}, nil
}
