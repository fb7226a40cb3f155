package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/tailored-agentic-units/taskloop/core/config"
	"github.com/tailored-agentic-units/taskloop/core/protocol"
)

// geminiAgent creates its client on first use; genai.NewClient validates
// credentials eagerly and construction must not fail for an unused agent.
type geminiAgent struct {
	base
	apiKey  string
	baseURL string

	mu     sync.Mutex
	client *genai.Client
}

func newGemini(cfg *config.AgentConfig) *geminiAgent {
	return &geminiAgent{
		base:    newBase(cfg),
		apiKey:  cfg.Provider.APIKey,
		baseURL: cfg.Provider.BaseURL,
	}
}

func (a *geminiAgent) getClient(ctx context.Context) (*genai.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  a.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if a.baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: a.baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	a.client = client
	return client, nil
}

func (a *geminiAgent) Chat(ctx context.Context, messages []protocol.Message) (string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	client, err := a.getClient(ctx)
	if err != nil {
		return "", err
	}

	system, contents := toGeminiContents(messages)
	genConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(a.maxTokens),
	}
	if system != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if t, ok := a.temperature(); ok {
		t32 := float32(t)
		genConfig.Temperature = &t32
	}

	result, err := client.Models.GenerateContent(ctx, a.model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	var content strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Thought {
				continue
			}
			content.WriteString(part.Text)
		}
	}
	if content.Len() == 0 {
		return "", fmt.Errorf("gemini generate content: %w", ErrEmptyResponse)
	}
	return content.String(), nil
}

// toGeminiContents maps assistant turns to the "model" role and lifts system
// messages into the system instruction.
func toGeminiContents(messages []protocol.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := string(genai.RoleUser)
		switch m.Role {
		case protocol.RoleSystem:
			system = append(system, m.Content)
			continue
		case protocol.RoleAssistant:
			role = string(genai.RoleModel)
		}
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: m.Content}},
			Role:  role,
		})
	}
	return strings.Join(system, "\n\n"), contents
}
