// Package agent provides model completion clients behind a single
// conversational interface. Each provider wraps its vendor SDK and reduces a
// response to plain text.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/taskloop/core/config"
	"github.com/tailored-agentic-units/taskloop/core/protocol"
)

const defaultMaxTokens = 4096

// Agent sends a message sequence to a model and returns the reply text.
// Transport failures are returned as errors and are safe to retry.
type Agent interface {
	ID() string
	Chat(ctx context.Context, messages []protocol.Message) (string, error)
}

// New creates an agent for the provider named in cfg.
func New(cfg *config.AgentConfig) (Agent, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("%w: provider not configured", ErrUnknownProvider)
	}
	if cfg.Model == nil || cfg.Model.Name == "" {
		return nil, fmt.Errorf("agent %q: model name is required", cfg.Name)
	}

	switch strings.ToLower(cfg.Provider.Name) {
	case "openai", "ollama", "qwen", "fastgpt":
		return newOpenAI(cfg), nil
	case "anthropic", "claude":
		return newAnthropic(cfg), nil
	case "gemini", "google":
		return newGemini(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider.Name)
	}
}

type base struct {
	id        string
	model     string
	maxTokens int
	timeout   time.Duration
	cfg       config.AgentConfig
}

func newBase(cfg *config.AgentConfig) base {
	maxTokens := cfg.Model.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return base{
		id:        uuid.Must(uuid.NewV7()).String(),
		model:     cfg.Model.Name,
		maxTokens: maxTokens,
		timeout:   cfg.Timeout.Std(),
		cfg:       *cfg,
	}
}

func (b *base) ID() string { return b.id }

func (b *base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b *base) temperature() (float64, bool) {
	if b.cfg.Model.Temperature == nil {
		return 0, false
	}
	return *b.cfg.Model.Temperature, true
}
