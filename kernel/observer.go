package kernel

import "github.com/tailored-agentic-units/taskloop/observability"

// Kernel event types emitted during planning and the turn loop.
const (
	EventRunStart    observability.EventType = "kernel.run.start"
	EventPlan        observability.EventType = "kernel.plan"
	EventTurnStart   observability.EventType = "kernel.turn.start"
	EventModelRetry  observability.EventType = "kernel.model.retry"
	EventAction      observability.EventType = "kernel.action"
	EventDispatch    observability.EventType = "kernel.dispatch"
	EventGuardRepeat observability.EventType = "kernel.guard.repeat"
	EventNudge       observability.EventType = "kernel.nudge"
	EventCheckpoint  observability.EventType = "kernel.checkpoint"
	EventComplete    observability.EventType = "kernel.complete"
	EventExhausted   observability.EventType = "kernel.exhausted"
	EventError       observability.EventType = "kernel.error"
)
