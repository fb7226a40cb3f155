// Package session persists task sessions so an interrupted run can be
// resumed exactly where its last checkpoint left it.
package session

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
)

// Status is the lifecycle state of a session. The only transition is
// running to done.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusRunning || s == StatusDone
}

// Session is the durable record of one task.
type Session struct {
	ID         string             `json:"session_id"`
	Task       string             `json:"task_content"`
	Plan       []string           `json:"plan"`
	Transcript []protocol.Message `json:"history"`
	Progress   int                `json:"current_step"`
	Status     Status             `json:"status"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// New creates a running session for task with a fresh UUIDv7 identifier.
func New(task string) *Session {
	return &Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Task:      task,
		Status:    StatusRunning,
		UpdatedAt: time.Now().UTC(),
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Plan = slices.Clone(s.Plan)
	c.Transcript = slices.Clone(s.Transcript)
	return &c
}

// Append adds messages to the transcript.
func (s *Session) Append(msgs ...protocol.Message) {
	s.Transcript = append(s.Transcript, msgs...)
}

// Summary describes a session for listings.
type Summary struct {
	ID        string    `json:"session_id"`
	Task      string    `json:"task_content"`
	Progress  int       `json:"current_step"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summarize returns the listing view of s.
func (s *Session) Summarize() Summary {
	return Summary{
		ID:        s.ID,
		Task:      s.Task,
		Progress:  s.Progress,
		UpdatedAt: s.UpdatedAt,
	}
}
