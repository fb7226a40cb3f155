package agent

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/tailored-agentic-units/taskloop/core/config"
	"github.com/tailored-agentic-units/taskloop/core/protocol"
)

// openAIAgent talks to any OpenAI-compatible chat completions endpoint.
type openAIAgent struct {
	base
	client openai.Client
}

func newOpenAI(cfg *config.AgentConfig) *openAIAgent {
	var options []option.RequestOption
	if cfg.Provider.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.Provider.BaseURL))
	}
	if cfg.Provider.APIKey != "" {
		options = append(options, option.WithAPIKey(cfg.Provider.APIKey))
	}
	options = append(options, option.WithMaxRetries(0))

	return &openAIAgent{
		base:   newBase(cfg),
		client: openai.NewClient(options...),
	}
}

func (a *openAIAgent) Chat(ctx context.Context, messages []protocol.Message) (string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:     a.model,
		Messages:  toOpenAIMessages(messages),
		MaxTokens: openai.Int(int64(a.maxTokens)),
	}
	if t, ok := a.temperature(); ok {
		params.Temperature = openai.Float(t)
	}

	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: %w", ErrEmptyResponse)
	}
	return completion.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []protocol.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case protocol.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case protocol.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
