package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tailored-agentic-units/taskloop/core/config"
	"github.com/tailored-agentic-units/taskloop/core/protocol"
)

type anthropicAgent struct {
	base
	client anthropic.Client
}

func newAnthropic(cfg *config.AgentConfig) *anthropicAgent {
	var options []option.RequestOption
	if cfg.Provider.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.Provider.BaseURL))
	}
	if cfg.Provider.APIKey != "" {
		options = append(options, option.WithAPIKey(cfg.Provider.APIKey))
	}
	options = append(options, option.WithMaxRetries(0))

	return &anthropicAgent{
		base:   newBase(cfg),
		client: anthropic.NewClient(options...),
	}
}

func (a *anthropicAgent) Chat(ctx context.Context, messages []protocol.Message) (string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	system, turns := toAnthropicMessages(messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages:  turns,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if t, ok := a.temperature(); ok {
		params.Temperature = anthropic.Float(t)
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var content strings.Builder
	for _, block := range message.Content {
		content.WriteString(block.Text)
	}
	if content.Len() == 0 {
		return "", fmt.Errorf("anthropic messages: %w", ErrEmptyResponse)
	}
	return content.String(), nil
}

// toAnthropicMessages lifts system messages into the separate system prompt
// the Messages API expects.
func toAnthropicMessages(messages []protocol.Message) (string, []anthropic.MessageParam) {
	var system []string
	turns := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case protocol.RoleSystem:
			system = append(system, m.Content)
		case protocol.RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return strings.Join(system, "\n\n"), turns
}
