package agent

import "errors"

var (
	// ErrAgentNotFound indicates no agent is registered under the requested name.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrEmptyAgentName indicates an attempt to register an agent without a name.
	ErrEmptyAgentName = errors.New("agent name is empty")

	// ErrAgentExists indicates an agent with the same name is already registered.
	ErrAgentExists = errors.New("agent already exists")

	// ErrUnknownProvider indicates the configured provider name has no implementation.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrEmptyResponse indicates the provider answered without any text content.
	ErrEmptyResponse = errors.New("empty response")
)
