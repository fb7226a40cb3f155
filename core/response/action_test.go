package response_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/taskloop/core/response"
)

func TestParseAction_Strategies(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantName string
		wantArgs map[string]any
	}{
		{
			name:     "json fence",
			text:     "I will list files.\n```json\n{\"thought\": \"look\", \"action\": \"list_files\", \"args\": {}}\n```",
			wantName: "list_files",
			wantArgs: map[string]any{},
		},
		{
			name:     "untagged fence",
			text:     "```\n{\"action\": \"read_file\", \"args\": {\"filename\": \"a.txt\"}}\n```",
			wantName: "read_file",
			wantArgs: map[string]any{"filename": "a.txt"},
		},
		{
			name:     "bare object in prose",
			text:     "Sure. {\"action\": \"run_command\", \"args\": {\"command\": \"ls\"}} Let me know.",
			wantName: "run_command",
			wantArgs: map[string]any{"command": "ls"},
		},
		{
			name:     "name field instead of action",
			text:     `{"name": "system_info", "arguments": {"action": "time"}}`,
			wantName: "system_info",
			wantArgs: map[string]any{"action": "time"},
		},
		{
			name:     "tool field with thought",
			text:     `{"thought": "check the clock", "tool": "system_info"}`,
			wantName: "system_info",
			wantArgs: map[string]any{},
		},
		{
			name:     "data object before the call",
			text:     `Found [{"name": "notes.txt", "size": 5}], now {"action": "read_file", "args": {"filename": "notes.txt"}}`,
			wantName: "read_file",
			wantArgs: map[string]any{"filename": "notes.txt"},
		},
		{
			name:     "args encoded as string",
			text:     `{"action": "read_file", "args": "{\"filename\": \"b.go\"}"}`,
			wantName: "read_file",
			wantArgs: map[string]any{"filename": "b.go"},
		},
		{
			name:     "missing args",
			text:     `{"action": "finish"}`,
			wantName: "finish",
			wantArgs: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, ok := response.ParseAction(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.wantName, action.Name)
			assert.Equal(t, tt.wantArgs, action.Args)
		})
	}
}

func TestParseAction_FallsThroughBrokenFence(t *testing.T) {
	text := "```json\n{\"action\": \"broken\",\n```\nretrying: {\"action\": \"list_files\", \"args\": {}}"

	action, ok := response.ParseAction(text)
	require.True(t, ok)
	assert.Equal(t, "list_files", action.Name)
}

func TestParseAction_NestedArgs(t *testing.T) {
	text := `Plan: {"thought": "write config", "action": "write_file", "args": {"filename": "c.json", "code": {"server": {"port": 8080}}}} done`

	action, ok := response.ParseAction(text)
	require.True(t, ok)
	assert.Equal(t, "write_file", action.Name)
	assert.Equal(t, "write config", action.Thought)

	code, ok := action.Args["code"].(map[string]any)
	require.True(t, ok, "nested args object should survive extraction")
	server, ok := code["server"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(8080), server["port"])
}

func TestParseAction_BracesInsideStrings(t *testing.T) {
	text := `{"action": "write_file", "args": {"filename": "x.go", "code": "func main() { fmt.Println(\"}\") }"}}`

	action, ok := response.ParseAction(text)
	require.True(t, ok)
	assert.Equal(t, `func main() { fmt.Println("}") }`, action.Args["code"])
}

func TestParseAction_None(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain prose", "The directory contains three files. Task complete."},
		{"object without action", `{"thought": "hmm", "args": {"name": "x"}}`},
		{"empty action", `{"action": "   "}`},
		{"data object with name", `{"name": "Alice", "age": 3}`},
		{"listing with tool field", "```json\n[{\"tool\": \"hammer\", \"count\": 2}]\n```"},
		{"data array in prose", `The directory holds [{"name": "notes.txt", "size": 5}]. Task complete.`},
		{"unbalanced", `{"action": "list_files"`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := response.ParseAction(tt.text)
			assert.False(t, ok)
		})
	}
}

func TestParseAction_Idempotent(t *testing.T) {
	inputs := []string{
		"```json\n{\"action\": \"list_files\"}\n```",
		"no action here",
		`{"action": "read_file", "args": {"filename": "a"}}`,
	}

	for _, in := range inputs {
		first, ok1 := response.ParseAction(in)
		second, ok2 := response.ParseAction(in)
		assert.Equal(t, ok1, ok2)
		assert.Equal(t, first, second)
	}
}

func TestParsePlan(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain list",
			text: `["Step 1: write the script", "Step 2: run it"]`,
			want: []string{"Step 1: write the script", "Step 2: run it"},
		},
		{
			name: "fenced with prose",
			text: "Here is the plan:\n```json\n[\"Step 1: list files\"]\n```",
			want: []string{"Step 1: list files"},
		},
		{
			name: "drops non-strings and blanks",
			text: `["a", 3, "  ", "b"]`,
			want: []string{"a", "b"},
		},
		{name: "no list", text: "I cannot plan this.", want: nil},
		{name: "invalid json", text: `[unquoted, items]`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, response.ParsePlan(tt.text))
		})
	}
}
