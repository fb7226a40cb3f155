package kernel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
	"github.com/tailored-agentic-units/taskloop/core/response"
	"github.com/tailored-agentic-units/taskloop/observability"
	"github.com/tailored-agentic-units/taskloop/session"
	"github.com/tailored-agentic-units/taskloop/tools"
)

// Start creates a session for task, plans it, persists the first
// checkpoint, and runs the turn loop. Failing to persist the new session is
// the only error returned before the loop starts.
func (k *Kernel) Start(ctx context.Context, task string) (*Result, error) {
	if strings.TrimSpace(task) == "" {
		return nil, ErrEmptyTask
	}

	sess := session.New(task)
	k.emit(ctx, EventRunStart, observability.LevelInfo, "kernel.Start", map[string]any{
		"session_id":   sess.ID,
		"task":         task,
		"max_turns":    k.maxTurns,
		"capabilities": k.tools.Len(),
	})

	if k.planning {
		sess.Plan = k.plan(ctx, sess)
	} else {
		sess.Plan = defaultPlan(task)
	}
	sess.Append(protocol.NewMessage(protocol.RoleUser, kickoffMessage(task, sess.Plan)))

	if err := k.store.Save(context.WithoutCancel(ctx), sess); err != nil {
		k.emit(ctx, EventError, observability.LevelError, "kernel.Start", map[string]any{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return k.execute(ctx, sess, "kernel.Start")
}

// Resume reloads a running session and continues the turn loop from its
// persisted progress. The model sees the system preamble followed by the
// persisted transcript, exactly as before the interruption.
func (k *Kernel) Resume(ctx context.Context, id string) (*Result, error) {
	sess, err := k.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.Status == session.StatusDone {
		return nil, fmt.Errorf("%w: %s", ErrSessionDone, id)
	}

	k.emit(ctx, EventRunStart, observability.LevelInfo, "kernel.Resume", map[string]any{
		"session_id": sess.ID,
		"task":       sess.Task,
		"progress":   sess.Progress,
		"max_turns":  k.maxTurns,
	})

	return k.execute(ctx, sess, "kernel.Resume")
}

func (k *Kernel) plan(ctx context.Context, sess *session.Session) []string {
	planner := k.planner
	if planner == nil && k.agents.Has(plannerAgent) {
		a, err := k.agents.Get(plannerAgent)
		if err != nil {
			k.emit(ctx, EventError, observability.LevelWarning, "kernel.plan", map[string]any{
				"session_id": sess.ID,
				"error":      err.Error(),
			})
		} else {
			planner = a
		}
	}
	if planner == nil {
		planner = k.agent
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.modelTimeout)
	defer cancel()

	reply, err := planner.Chat(callCtx, []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, plannerSystemPrompt),
		protocol.NewMessage(protocol.RoleUser, fmt.Sprintf(plannerPrompt, sess.Task)),
	})

	steps := response.ParsePlan(reply)
	fallback := err != nil || len(steps) == 0
	if fallback {
		steps = defaultPlan(sess.Task)
	}

	data := map[string]any{
		"session_id": sess.ID,
		"steps":      len(steps),
		"fallback":   fallback,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	k.emit(ctx, EventPlan, observability.LevelInfo, "kernel.plan", data)

	return steps
}

// loop carries the per-run state of the turn loop. The repeat guard and
// silence streak are not persisted: a resumed run starts them fresh.
type loop struct {
	k      *Kernel
	sess   *session.Session
	source string
	result *Result

	lastAction string
	repeats    int
	silent     int
}

func (k *Kernel) execute(ctx context.Context, sess *session.Session, source string) (*Result, error) {
	l := &loop{
		k:      k,
		sess:   sess,
		source: source,
		result: &Result{SessionID: sess.ID, State: StateExhausted},
	}

	for range k.maxTurns {
		if err := ctx.Err(); err != nil {
			return l.result, err
		}

		done, err := l.turn(ctx)
		if err != nil {
			return l.result, err
		}
		if done {
			return l.result, nil
		}
	}

	k.emit(ctx, EventExhausted, observability.LevelWarning, source, map[string]any{
		"session_id": sess.ID,
		"turns":      l.result.Turns,
		"progress":   sess.Progress,
	})
	return l.result, nil
}

// turn runs one model-call, interpret, dispatch, checkpoint cycle and
// reports whether the session completed.
func (l *loop) turn(ctx context.Context) (bool, error) {
	k := l.k
	turn := l.sess.Progress + 1

	k.emit(ctx, EventTurnStart, observability.LevelVerbose, l.source, map[string]any{
		"session_id": l.sess.ID,
		"turn":       turn,
	})

	reply, err := l.complete(ctx, turn)
	if err != nil {
		return false, err
	}

	l.sess.Append(protocol.NewMessage(protocol.RoleAssistant, reply))
	l.sess.Progress = turn
	l.result.Turns++
	l.result.Response = reply

	action, ok := response.ParseAction(reply)
	switch {
	case ok && action.IsFinish():
		if summary := action.Summary(); summary != "" {
			l.result.Response = summary
		}
		return true, l.finish(ctx, turn, "finish_action")

	case ok:
		l.silent = 0
		l.dispatch(ctx, turn, action)

	default:
		if k.policy.Complete(l.sess.Task, reply, turn) {
			return true, l.finish(ctx, turn, "completion_phrase")
		}
		l.nudge(ctx, turn)
	}

	return false, l.checkpoint(ctx, turn)
}

// complete calls the model, retrying transport failures after a fixed
// backoff. A failed attempt is a no-op: it consumes no turn and leaves the
// transcript untouched.
func (l *loop) complete(ctx context.Context, turn int) (string, error) {
	k := l.k
	for attempt := 1; ; attempt++ {
		messages := make([]protocol.Message, 0, len(l.sess.Transcript)+1)
		messages = append(messages, protocol.NewMessage(protocol.RoleSystem, renderSystemPrompt(k.systemPrompt, k.tools.Describe())))
		messages = append(messages, l.sess.Transcript...)

		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.modelTimeout)
		reply, err := k.agent.Chat(callCtx, messages)
		cancel()
		if err == nil {
			return reply, nil
		}

		k.emit(ctx, EventModelRetry, observability.LevelWarning, l.source, map[string]any{
			"session_id": l.sess.ID,
			"turn":       turn,
			"attempt":    attempt,
			"error":      err.Error(),
		})

		if k.modelRetryLimit > 0 && attempt >= k.modelRetryLimit {
			return "", fmt.Errorf("%w after %d attempts: %v", ErrModelUnavailable, attempt, err)
		}
		if err := k.sleep(ctx, k.retryBackoff); err != nil {
			return "", err
		}
	}
}

func (l *loop) dispatch(ctx context.Context, turn int, action protocol.Action) {
	k := l.k

	k.emit(ctx, EventAction, observability.LevelInfo, l.source, map[string]any{
		"session_id": l.sess.ID,
		"turn":       turn,
		"action":     action.Name,
		"thought":    action.Thought,
	})

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.dispatchTimeout)
	res := k.tools.Dispatch(callCtx, action.Name, action.Args)
	cancel()

	record := DispatchRecord{
		Turn:      turn,
		Requested: action.Name,
		Resolved:  res.Resolved,
		Args:      action.Args,
		Kind:      res.Kind,
		Content:   res.Content,
	}

	level := observability.LevelInfo
	if res.IsError() {
		level = observability.LevelWarning
	}
	k.emit(ctx, EventDispatch, level, l.source, map[string]any{
		"session_id": l.sess.ID,
		"turn":       turn,
		"requested":  action.Name,
		"resolved":   res.Resolved,
		"kind":       res.Kind.String(),
		"length":     len(res.Content),
	})

	if res.Kind == tools.NotFound {
		l.lastAction, l.repeats = "", 0
	} else if res.Resolved == l.lastAction {
		l.repeats++
		if l.repeats >= k.repeatThreshold {
			record.Suppressed = true
			l.result.Dispatches = append(l.result.Dispatches, record)
			l.sess.Append(protocol.NewMessage(protocol.RoleUser, fmt.Sprintf(repeatCorrection, res.Resolved)))
			l.lastAction, l.repeats = "", 0

			k.emit(ctx, EventGuardRepeat, observability.LevelWarning, l.source, map[string]any{
				"session_id": l.sess.ID,
				"turn":       turn,
				"capability": res.Resolved,
			})
			return
		}
	} else {
		l.lastAction, l.repeats = res.Resolved, 0
	}

	name := res.Resolved
	if name == "" {
		name = action.Name
	}
	l.sess.Append(protocol.NewMessage(protocol.RoleUser, feedbackMessage(name, res.Content)))
	l.result.Dispatches = append(l.result.Dispatches, record)
}

// nudge asks a silent model for a structured action, escalating to an
// explicit request to declare completion once the run is past nudgeAfter.
func (l *loop) nudge(ctx context.Context, turn int) {
	l.silent++
	escalated := turn > l.k.nudgeAfter

	content := nudgeStructured
	if escalated {
		content = nudgeFinish
	}
	l.sess.Append(protocol.NewMessage(protocol.RoleUser, content))

	l.k.emit(ctx, EventNudge, observability.LevelVerbose, l.source, map[string]any{
		"session_id": l.sess.ID,
		"turn":       turn,
		"silent":     l.silent,
		"escalated":  escalated,
	})
}

func (l *loop) finish(ctx context.Context, turn int, reason string) error {
	l.sess.Status = session.StatusDone
	l.result.State = StateCompleted

	if err := l.k.store.Save(context.WithoutCancel(ctx), l.sess); err != nil {
		l.k.emit(ctx, EventError, observability.LevelError, l.source, map[string]any{
			"session_id": l.sess.ID,
			"turn":       turn,
			"error":      err.Error(),
		})
		return fmt.Errorf("failed to persist completed session: %w", err)
	}

	l.k.emit(ctx, EventComplete, observability.LevelInfo, l.source, map[string]any{
		"session_id": l.sess.ID,
		"turn":       turn,
		"reason":     reason,
		"turns":      l.result.Turns,
	})
	return nil
}

// checkpoint persists the running session. A failed write is reported and
// the loop continues; the next checkpoint supersedes it. A session found
// already done elsewhere stops the loop.
func (l *loop) checkpoint(ctx context.Context, turn int) error {
	err := l.k.store.Save(context.WithoutCancel(ctx), l.sess)
	switch {
	case err == nil:
		l.k.emit(ctx, EventCheckpoint, observability.LevelVerbose, l.source, map[string]any{
			"session_id": l.sess.ID,
			"turn":       turn,
			"messages":   len(l.sess.Transcript),
		})
		return nil
	case errors.Is(err, session.ErrStatusRegression):
		return fmt.Errorf("%w: %s", ErrSessionDone, l.sess.ID)
	default:
		l.k.emit(ctx, EventError, observability.LevelError, l.source, map[string]any{
			"session_id": l.sess.ID,
			"turn":       turn,
			"error":      err.Error(),
		})
		return nil
	}
}
