package observability

import "context"

// NoOpObserver discards events. Registered as "noop" for quiet runs.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}
