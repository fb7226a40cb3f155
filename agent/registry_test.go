package agent_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/taskloop/agent"
	"github.com/tailored-agentic-units/taskloop/core/config"
)

func ollamaConfig(modelName string) config.AgentConfig {
	return config.AgentConfig{
		Provider: &config.ProviderConfig{
			Name:    "ollama",
			BaseURL: "http://localhost:11434/v1",
		},
		Model: &config.ModelConfig{
			Name: modelName,
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := agent.NewRegistry()

	if err := r.Register("planner", ollamaConfig("qwen3:8b")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	a, err := r.Get("planner")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a.ID() == "" {
		t.Error("agent has empty ID")
	}

	a2, err := r.Get("planner")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if a.ID() != a2.ID() {
		t.Errorf("cached agent ID mismatch: got %q and %q", a.ID(), a2.ID())
	}
}

func TestRegistry_Has(t *testing.T) {
	r := agent.NewRegistry()
	r.Register("planner", ollamaConfig("qwen3:8b"))

	if !r.Has("planner") {
		t.Error("Has(planner) = false, want true")
	}
	if r.Has("executor") {
		t.Error("Has(executor) = true, want false")
	}
}

func TestRegistry_RegisterEmptyName(t *testing.T) {
	r := agent.NewRegistry()

	err := r.Register("", config.AgentConfig{})
	if !errors.Is(err, agent.ErrEmptyAgentName) {
		t.Errorf("got %v, want ErrEmptyAgentName", err)
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := agent.NewRegistry()

	if err := r.Register("planner", ollamaConfig("qwen3:8b")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err := r.Register("planner", ollamaConfig("qwen3:8b"))
	if !errors.Is(err, agent.ErrAgentExists) {
		t.Errorf("got %v, want ErrAgentExists", err)
	}
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := agent.NewRegistry()

	_, err := r.Get("nonexistent")
	if !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("got %v, want ErrAgentNotFound", err)
	}
}

func TestRegistry_GetUnknownProvider(t *testing.T) {
	r := agent.NewRegistry()

	cfg := ollamaConfig("qwen3:8b")
	cfg.Provider.Name = "carrier-pigeon"
	r.Register("bad", cfg)

	_, err := r.Get("bad")
	if !errors.Is(err, agent.ErrUnknownProvider) {
		t.Errorf("got %v, want ErrUnknownProvider", err)
	}
}

func TestRegistry_Replace(t *testing.T) {
	r := agent.NewRegistry()

	if err := r.Register("planner", ollamaConfig("qwen3:8b")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	a1, err := r.Get("planner")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if err := r.Replace("planner", ollamaConfig("qwen3:14b")); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	a2, err := r.Get("planner")
	if err != nil {
		t.Fatalf("Get after Replace failed: %v", err)
	}
	if a1.ID() == a2.ID() {
		t.Error("expected new agent instance after Replace, got same ID")
	}

	infos := r.List()
	if len(infos) != 1 || infos[0].Model != "qwen3:14b" {
		t.Errorf("List after Replace = %+v, want model qwen3:14b", infos)
	}
}

func TestRegistry_ReplaceEmptyName(t *testing.T) {
	r := agent.NewRegistry()

	err := r.Replace("", config.AgentConfig{})
	if !errors.Is(err, agent.ErrEmptyAgentName) {
		t.Errorf("got %v, want ErrEmptyAgentName", err)
	}
}

func TestRegistry_ReplaceNotFound(t *testing.T) {
	r := agent.NewRegistry()

	err := r.Replace("nonexistent", config.AgentConfig{})
	if !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("got %v, want ErrAgentNotFound", err)
	}
}

func TestRegistry_List(t *testing.T) {
	r := agent.NewRegistry()

	r.Register("planner", ollamaConfig("qwen3:8b"))
	r.Register("executor", ollamaConfig("qwen3:14b"))

	infos := r.List()
	if len(infos) != 2 {
		t.Fatalf("got %d entries, want 2", len(infos))
	}

	if infos[0].Name != "executor" {
		t.Errorf("got first name %q, want %q", infos[0].Name, "executor")
	}
	if infos[1].Name != "planner" {
		t.Errorf("got second name %q, want %q", infos[1].Name, "planner")
	}
	if infos[1].Provider != "ollama" || infos[1].Model != "qwen3:8b" {
		t.Errorf("got %+v, want ollama/qwen3:8b", infos[1])
	}
}

func TestRegistry_ListEmpty(t *testing.T) {
	r := agent.NewRegistry()

	if infos := r.List(); len(infos) != 0 {
		t.Errorf("got %d entries, want 0", len(infos))
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := agent.NewRegistry()

	r.Register("planner", ollamaConfig("qwen3:8b"))
	r.Get("planner")

	if err := r.Unregister("planner"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}

	_, err := r.Get("planner")
	if !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("got %v, want ErrAgentNotFound after Unregister", err)
	}

	if infos := r.List(); len(infos) != 0 {
		t.Errorf("got %d entries after Unregister, want 0", len(infos))
	}
}

func TestRegistry_UnregisterNotFound(t *testing.T) {
	r := agent.NewRegistry()

	err := r.Unregister("nonexistent")
	if !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("got %v, want ErrAgentNotFound", err)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := agent.NewRegistry()

	for i := range 10 {
		name := string(rune('a' + i))
		r.Register(name, ollamaConfig("model-"+name))
	}

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			r.List()
		})
		wg.Go(func() {
			r.Has("a")
		})
		wg.Go(func() {
			r.Get("b")
		})
	}
	wg.Wait()
}
