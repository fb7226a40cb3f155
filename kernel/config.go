package kernel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/taskloop/core/config"
	"github.com/tailored-agentic-units/taskloop/session"
)

const (
	defaultMaxTurns        = 15
	defaultRetryBackoff    = 3 * time.Second
	defaultModelTimeout    = 120 * time.Second
	defaultDispatchTimeout = 15 * time.Minute
	defaultRepeatThreshold = 2
	defaultNudgeAfter      = 5
	defaultQueryMinTurn    = 3
)

// CapabilitiesConfig selects the built-in capabilities and their working
// directory.
type CapabilitiesConfig struct {
	// Enabled lists built-in capability names; empty enables all of them.
	Enabled   []string `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Workspace string   `json:"workspace,omitempty" yaml:"workspace,omitempty"`
}

// CompletionConfig tunes the phrase-based completion policy. Empty lists
// keep the built-in defaults.
type CompletionConfig struct {
	Phrases       []string `json:"phrases,omitempty" yaml:"phrases,omitempty"`
	QueryKeywords []string `json:"query_keywords,omitempty" yaml:"query_keywords,omitempty"`
	AnswerMarkers []string `json:"answer_markers,omitempty" yaml:"answer_markers,omitempty"`
	// QueryMinTurn is the first turn on which the query heuristic may fire.
	QueryMinTurn int `json:"query_min_turn,omitempty" yaml:"query_min_turn,omitempty"`
}

// Config holds initialization parameters for the kernel and its subsystems.
type Config struct {
	Agent        config.AgentConfig            `json:"agent" yaml:"agent"`
	Agents       map[string]config.AgentConfig `json:"agents,omitempty" yaml:"agents,omitempty"`
	Session      session.Config                `json:"session" yaml:"session"`
	Capabilities CapabilitiesConfig            `json:"capabilities" yaml:"capabilities"`
	Completion   CompletionConfig              `json:"completion" yaml:"completion"`

	MaxTurns     int    `json:"max_turns,omitempty" yaml:"max_turns,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	Planning     *bool  `json:"planning,omitempty" yaml:"planning,omitempty"`

	RetryBackoff    config.Duration `json:"retry_backoff,omitempty" yaml:"retry_backoff,omitempty"`
	ModelRetryLimit int             `json:"model_retry_limit,omitempty" yaml:"model_retry_limit,omitempty"`
	ModelTimeout    config.Duration `json:"model_timeout,omitempty" yaml:"model_timeout,omitempty"`
	DispatchTimeout config.Duration `json:"dispatch_timeout,omitempty" yaml:"dispatch_timeout,omitempty"`

	RepeatThreshold int `json:"repeat_threshold,omitempty" yaml:"repeat_threshold,omitempty"`
	NudgeAfter      int `json:"nudge_after,omitempty" yaml:"nudge_after,omitempty"`

	Observer string `json:"observer,omitempty" yaml:"observer,omitempty"`
}

// DefaultConfig returns a Config with defaults for every subsystem.
func DefaultConfig() Config {
	planning := true
	return Config{
		Agent:           config.DefaultAgentConfig(),
		Session:         session.DefaultConfig(),
		Capabilities:    CapabilitiesConfig{Workspace: "."},
		Completion:      CompletionConfig{QueryMinTurn: defaultQueryMinTurn},
		MaxTurns:        defaultMaxTurns,
		Planning:        &planning,
		RetryBackoff:    config.Duration(defaultRetryBackoff),
		ModelTimeout:    config.Duration(defaultModelTimeout),
		DispatchTimeout: config.Duration(defaultDispatchTimeout),
		RepeatThreshold: defaultRepeatThreshold,
		NudgeAfter:      defaultNudgeAfter,
		Observer:        "slog",
	}
}

// PlanningEnabled reports whether the planning phase runs before execution.
func (c *Config) PlanningEnabled() bool {
	return c.Planning == nil || *c.Planning
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Session.Merge(&source.Session)

	if len(source.Agents) > 0 {
		c.Agents = source.Agents
	}
	if len(source.Capabilities.Enabled) > 0 {
		c.Capabilities.Enabled = source.Capabilities.Enabled
	}
	if source.Capabilities.Workspace != "" {
		c.Capabilities.Workspace = source.Capabilities.Workspace
	}

	if len(source.Completion.Phrases) > 0 {
		c.Completion.Phrases = source.Completion.Phrases
	}
	if len(source.Completion.QueryKeywords) > 0 {
		c.Completion.QueryKeywords = source.Completion.QueryKeywords
	}
	if len(source.Completion.AnswerMarkers) > 0 {
		c.Completion.AnswerMarkers = source.Completion.AnswerMarkers
	}
	if source.Completion.QueryMinTurn > 0 {
		c.Completion.QueryMinTurn = source.Completion.QueryMinTurn
	}

	if source.MaxTurns > 0 {
		c.MaxTurns = source.MaxTurns
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.Planning != nil {
		planning := *source.Planning
		c.Planning = &planning
	}
	if source.RetryBackoff > 0 {
		c.RetryBackoff = source.RetryBackoff
	}
	if source.ModelRetryLimit > 0 {
		c.ModelRetryLimit = source.ModelRetryLimit
	}
	if source.ModelTimeout > 0 {
		c.ModelTimeout = source.ModelTimeout
	}
	if source.DispatchTimeout > 0 {
		c.DispatchTimeout = source.DispatchTimeout
	}
	if source.RepeatThreshold > 0 {
		c.RepeatThreshold = source.RepeatThreshold
	}
	if source.NudgeAfter > 0 {
		c.NudgeAfter = source.NudgeAfter
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a JSON or YAML config file (chosen by extension), merges
// it with defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
