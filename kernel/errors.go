package kernel

import "errors"

var (
	// ErrSessionDone is returned by Resume for a session that already completed.
	ErrSessionDone = errors.New("session already done")

	// ErrModelUnavailable is returned when a turn exhausts the configured
	// model retry limit. The session stays running and can be resumed.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrEmptyTask is returned by Start for a blank task.
	ErrEmptyTask = errors.New("task is empty")
)
