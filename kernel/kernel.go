// Package kernel implements the orchestrator: a bounded decide-act-observe
// loop that drives a model through capability calls until the task is done,
// checkpointing the session after every turn so an interrupted or exhausted
// run can be resumed where it stopped.
//
// The kernel initializes from configuration via New. Functional options
// replace any subsystem, which is how tests inject scripted agents and
// in-memory stores.
//
//	k, err := kernel.New(&cfg)
//	result, err := k.Start(ctx, "list the files in the working directory")
package kernel

import (
	"context"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/taskloop/agent"
	"github.com/tailored-agentic-units/taskloop/observability"
	"github.com/tailored-agentic-units/taskloop/session"
	"github.com/tailored-agentic-units/taskloop/tools"
	"github.com/tailored-agentic-units/taskloop/tools/builtin"
)

// plannerAgent is the registry name of the optional dedicated planner.
const plannerAgent = "planner"

// State is the terminal state of a run.
type State string

const (
	StateCompleted State = "completed"
	StateExhausted State = "exhausted"
)

// Result holds the outcome of a Start or Resume invocation.
type Result struct {
	SessionID  string
	State      State
	Response   string           // Final reply, or the finish summary.
	Turns      int              // Turns executed by this invocation.
	Dispatches []DispatchRecord // Capability calls made by this invocation.
}

// DispatchRecord describes one capability call.
type DispatchRecord struct {
	Turn       int
	Requested  string
	Resolved   string
	Args       map[string]any
	Kind       tools.ResultKind
	Content    string
	Suppressed bool // Output withheld from the transcript by the repeat guard.
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Option configures a Kernel before config-driven initialization fills in
// whatever the options left unset.
type Option func(*Kernel)

// WithAgent overrides the config-created agent.
func WithAgent(a agent.Agent) Option {
	return func(k *Kernel) { k.agent = a }
}

// WithPlanner sets the agent used for the planning phase.
func WithPlanner(a agent.Agent) Option {
	return func(k *Kernel) { k.planner = a }
}

// WithAgents overrides the config-created agent registry.
func WithAgents(r *agent.Registry) Option {
	return func(k *Kernel) { k.agents = r }
}

// WithStore overrides the config-created session store. The kernel does not
// close an injected store.
func WithStore(s session.Store) Option {
	return func(k *Kernel) { k.store = s }
}

// WithRegistry overrides the config-created capability registry.
func WithRegistry(r *tools.Registry) Option {
	return func(k *Kernel) { k.tools = r }
}

// WithObserver overrides the config-selected observer.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// WithCompletionPolicy overrides the phrase-based completion policy.
func WithCompletionPolicy(p CompletionPolicy) Option {
	return func(k *Kernel) { k.policy = p }
}

// WithSleep overrides the backoff wait between model retries.
func WithSleep(fn SleepFunc) Option {
	return func(k *Kernel) { k.sleep = fn }
}

// Kernel runs task sessions.
type Kernel struct {
	agent     agent.Agent
	planner   agent.Agent
	agents    *agent.Registry
	store     session.Store
	ownsStore bool
	tools     *tools.Registry
	workspace *builtin.Workspace
	observer  observability.Observer
	policy    CompletionPolicy
	sleep     SleepFunc

	maxTurns        int
	systemPrompt    string
	planning        bool
	retryBackoff    time.Duration
	modelRetryLimit int
	modelTimeout    time.Duration
	dispatchTimeout time.Duration
	repeatThreshold int
	nudgeAfter      int
}

// New creates a Kernel from configuration. Options are applied first;
// subsystems they did not provide are created from cfg.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	k := &Kernel{
		maxTurns:        cfg.MaxTurns,
		systemPrompt:    cfg.SystemPrompt,
		planning:        cfg.PlanningEnabled(),
		retryBackoff:    cfg.RetryBackoff.Std(),
		modelRetryLimit: cfg.ModelRetryLimit,
		modelTimeout:    cfg.ModelTimeout.Std(),
		dispatchTimeout: cfg.DispatchTimeout.Std(),
		repeatThreshold: cfg.RepeatThreshold,
		nudgeAfter:      cfg.NudgeAfter,
	}
	if k.maxTurns <= 0 {
		k.maxTurns = defaultMaxTurns
	}
	if k.modelTimeout <= 0 {
		k.modelTimeout = defaultModelTimeout
	}
	if k.dispatchTimeout <= 0 {
		k.dispatchTimeout = defaultDispatchTimeout
	}
	if k.repeatThreshold <= 0 {
		k.repeatThreshold = defaultRepeatThreshold
	}
	if k.nudgeAfter <= 0 {
		k.nudgeAfter = defaultNudgeAfter
	}

	for _, opt := range opts {
		opt(k)
	}

	if k.agent == nil {
		a, err := agent.New(&cfg.Agent)
		if err != nil {
			return nil, fmt.Errorf("failed to create agent: %w", err)
		}
		k.agent = a
	}

	if k.agents == nil {
		k.agents = agent.NewRegistry()
		for name, agentCfg := range cfg.Agents {
			if err := k.agents.Register(name, agentCfg); err != nil {
				return nil, fmt.Errorf("failed to register agent %q: %w", name, err)
			}
		}
	}

	if k.tools == nil {
		ws, err := builtin.NewWorkspace(cfg.Capabilities.Workspace)
		if err != nil {
			return nil, fmt.Errorf("failed to open workspace: %w", err)
		}
		caps, err := builtin.Named(ws, cfg.Capabilities.Enabled...)
		if err != nil {
			return nil, fmt.Errorf("failed to load capabilities: %w", err)
		}
		reg, err := tools.NewRegistry(caps...)
		if err != nil {
			return nil, fmt.Errorf("failed to build capability registry: %w", err)
		}
		k.tools = reg
		k.workspace = ws
	}

	if k.observer == nil {
		name := cfg.Observer
		if name == "" {
			name = "slog"
		}
		obs, err := observability.GetObserver(name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		k.observer = obs
	}

	if k.policy == nil {
		k.policy = NewPhrasePolicy(&cfg.Completion)
	}

	if k.sleep == nil {
		k.sleep = sleepContext
	}

	if k.store == nil {
		store, err := session.NewStore(&cfg.Session)
		if err != nil {
			return nil, fmt.Errorf("failed to create session store: %w", err)
		}
		k.store = store
		k.ownsStore = true
	}

	return k, nil
}

// Agents returns the kernel's agent registry.
func (k *Kernel) Agents() *agent.Registry { return k.agents }

// Tools returns the kernel's capability registry.
func (k *Kernel) Tools() *tools.Registry { return k.tools }

// Workspace returns the working directory of the config-created built-in
// capabilities, or nil when the registry was injected.
func (k *Kernel) Workspace() *builtin.Workspace { return k.workspace }

// Store returns the kernel's session store.
func (k *Kernel) Store() session.Store { return k.store }

// Close releases the session store if the kernel created it.
func (k *Kernel) Close() error {
	if k.ownsStore {
		return k.store.Close()
	}
	return nil
}

// Pending lists running sessions, most recently updated first.
func (k *Kernel) Pending(ctx context.Context) ([]session.Summary, error) {
	return k.store.ListRunning(ctx)
}

func (k *Kernel) emit(ctx context.Context, typ observability.EventType, level observability.Level, source string, data map[string]any) {
	k.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}
