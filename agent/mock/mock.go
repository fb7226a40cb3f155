// Package mock provides a scripted agent for tests.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
)

// ErrExhausted is returned once a scripted agent has no replies left.
var ErrExhausted = errors.New("mock agent script exhausted")

// Step is one scripted reply. A non-nil Err is returned instead of Reply.
type Step struct {
	Reply string
	Err   error
}

// Agent replays a fixed script of replies and records every message
// sequence it receives.
type Agent struct {
	id string

	mu    sync.Mutex
	steps []Step
	calls [][]protocol.Message
}

// New creates an agent that answers with replies in order.
func New(id string, replies ...string) *Agent {
	steps := make([]Step, len(replies))
	for i, r := range replies {
		steps[i] = Step{Reply: r}
	}
	return &Agent{id: id, steps: steps}
}

// NewScripted creates an agent from explicit steps, mixing replies and errors.
func NewScripted(id string, steps ...Step) *Agent {
	return &Agent{id: id, steps: append([]Step(nil), steps...)}
}

// Fail returns a step that produces err.
func Fail(err error) Step { return Step{Err: err} }

// Reply returns a step that produces text.
func Reply(text string) Step { return Step{Reply: text} }

func (a *Agent) ID() string { return a.id }

func (a *Agent) Chat(ctx context.Context, messages []protocol.Message) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, append([]protocol.Message(nil), messages...))

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(a.steps) == 0 {
		return "", ErrExhausted
	}

	step := a.steps[0]
	a.steps = a.steps[1:]
	if step.Err != nil {
		return "", step.Err
	}
	return step.Reply, nil
}

// Calls returns a copy of every message sequence received, in order.
func (a *Agent) Calls() [][]protocol.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]protocol.Message(nil), a.calls...)
}

// Remaining reports how many scripted steps have not been consumed.
func (a *Agent) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.steps)
}
