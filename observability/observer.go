// Package observability carries the structured events the orchestrator emits
// at every lifecycle step: turns, dispatches, checkpoints and terminal
// states. Observers route events to a log backend. Level values align with
// OpenTelemetry SeverityNumbers.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level represents event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8), maps to slog.LevelDebug
	LevelInfo    Level = 9  // OTel INFO (9-12), maps to slog.LevelInfo
	LevelWarning Level = 13 // OTel WARN (13-16), maps to slog.LevelWarn
	LevelError   Level = 17 // OTel ERROR (17-20), maps to slog.LevelError
)

type severity int

const (
	sevTrace severity = iota
	sevDebug
	sevInfo
	sevWarn
	sevError
	sevFatal
)

// severity buckets l into its OTel range: 1-4 trace, 5-8 debug, 9-12 info,
// 13-16 warn, 17-20 error, above that fatal.
func (l Level) severity() severity {
	switch {
	case l <= 4:
		return sevTrace
	case l > 20:
		return sevFatal
	default:
		return severity((l-1)/4) + sevTrace
	}
}

var severityText = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// String returns the OTel severity text for the level.
func (l Level) String() string {
	return severityText[l.severity()]
}

// SlogLevel maps l onto slog. Trace folds into debug and fatal into error.
func (l Level) SlogLevel() slog.Level {
	switch l.severity() {
	case sevTrace, sevDebug:
		return slog.LevelDebug
	case sevInfo:
		return slog.LevelInfo
	case sevWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType identifies the kind of event, namespaced by the emitting
// subsystem ("kernel.turn.start", "control.request").
type EventType string

// Event is one observability record. Source names the emitting operation
// ("kernel.Start"); Data holds flat attributes such as session_id and turn.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events. OnEvent is called synchronously on the emitting
// goroutine and must not block.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
