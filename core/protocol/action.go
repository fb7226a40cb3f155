package protocol

import (
	"encoding/json"
	"strings"
)

// ActionFinish is the sentinel action name that ends a task.
const ActionFinish = "finish"

var finishNames = map[string]bool{
	ActionFinish:   true,
	"final_answer": true,
	"done":         true,
	"complete":     true,
	"完成":           true,
	"任务完成":         true,
}

var summaryKeys = []string{"summary", "result", "answer", "message"}

// Action is a structured request extracted from model output. It is never
// persisted on its own; only its textual effects reach the transcript.
type Action struct {
	Thought string         `json:"thought,omitempty"`
	Name    string         `json:"action"`
	Args    map[string]any `json:"args,omitempty"`
}

// IsFinish reports whether the action is the finish sentinel or one of its
// locale equivalents.
func (a Action) IsFinish() bool {
	return finishNames[strings.ToLower(strings.TrimSpace(a.Name))]
}

// Summary returns the completion summary carried by a finish action.
func (a Action) Summary() string {
	for _, key := range summaryKeys {
		if s, ok := a.Args[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	if len(a.Args) == 0 {
		return ""
	}
	data, err := json.Marshal(a.Args)
	if err != nil {
		return ""
	}
	return string(data)
}
