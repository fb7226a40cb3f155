// Package config holds the configuration types shared across subsystems.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads and writes as a Go duration string
// ("3s", "2m") in both JSON and YAML. Bare JSON numbers are read as seconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.set(raw)
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return d.set(raw)
}

func (d *Duration) set(raw any) error {
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}

// ProviderConfig identifies the completion service an agent talks to.
type ProviderConfig struct {
	Name    string `json:"name" yaml:"name"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// ModelConfig selects the model and its generation options.
type ModelConfig struct {
	Name        string   `json:"name" yaml:"name"`
	MaxTokens   int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// AgentConfig configures one model-backed agent.
type AgentConfig struct {
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Provider *ProviderConfig `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model    *ModelConfig    `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout  Duration        `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultAgentConfig returns an OpenAI-compatible agent pointed at a local
// Ollama endpoint, which needs no credentials.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Name: "default",
		Provider: &ProviderConfig{
			Name:    "openai",
			BaseURL: "http://127.0.0.1:11434/v1",
		},
		Model: &ModelConfig{
			Name:      "qwen3:8b",
			MaxTokens: 4096,
		},
		Timeout: Duration(120 * time.Second),
	}
}

// Merge applies non-zero values from source into c.
func (c *AgentConfig) Merge(source *AgentConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}

	if source.Provider != nil {
		if c.Provider == nil {
			c.Provider = &ProviderConfig{}
		}
		if source.Provider.Name != "" {
			c.Provider.Name = source.Provider.Name
		}
		if source.Provider.BaseURL != "" {
			c.Provider.BaseURL = source.Provider.BaseURL
		}
		if source.Provider.APIKey != "" {
			c.Provider.APIKey = source.Provider.APIKey
		}
	}

	if source.Model != nil {
		if c.Model == nil {
			c.Model = &ModelConfig{}
		}
		if source.Model.Name != "" {
			c.Model.Name = source.Model.Name
		}
		if source.Model.MaxTokens > 0 {
			c.Model.MaxTokens = source.Model.MaxTokens
		}
		if source.Model.Temperature != nil {
			t := *source.Model.Temperature
			c.Model.Temperature = &t
		}
	}
}
