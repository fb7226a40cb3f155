// Package response extracts structured intent from free-text model output.
//
// Model output is not guaranteed to be clean JSON. ParseAction tries three
// strategies in priority order and the first one yielding a valid action
// object wins:
//
//  1. a fenced block tagged json
//  2. any fenced block whose content opens with an object
//  3. a brace-balance scan for the first complete top-level object
//
// A failed strategy falls through to the next. Text with no recoverable
// action is conversation, not an error.
package response

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
)

var (
	jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFence  = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\\s*(.*?)\\s*```")
)

// actionField names the capability. The fallback name fields only count
// when the object also carries a thought or an args field, so data objects
// such as {"name": "notes.txt", "size": 5} are not mistaken for calls.
const actionField = "action"

var (
	fallbackNameFields = []string{"name", "tool"}
	argsFields         = []string{"args", "arguments", "parameters", "params"}
)

// ParseAction extracts one action from model output. The second return value
// is false when no action could be recovered.
func ParseAction(text string) (protocol.Action, bool) {
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		if a, ok := decodeAction(strings.TrimSpace(m[1])); ok {
			return a, true
		}
	}

	if m := anyFence.FindStringSubmatch(text); m != nil {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") {
			if a, ok := decodeAction(body); ok {
				return a, true
			}
		}
	}

	for offset := 0; offset < len(text); {
		obj, next := balancedObject(text, offset)
		if obj != "" {
			if a, ok := decodeAction(obj); ok {
				return a, true
			}
		}
		offset = next
	}

	return protocol.Action{}, false
}

func decodeAction(raw string) (protocol.Action, bool) {
	if !gjson.Valid(raw) {
		return protocol.Action{}, false
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return protocol.Action{}, false
	}

	var action protocol.Action
	action.Name = stringField(doc, actionField)
	if action.Name == "" && actionShaped(doc) {
		for _, field := range fallbackNameFields {
			if action.Name = stringField(doc, field); action.Name != "" {
				break
			}
		}
	}
	if action.Name == "" {
		return protocol.Action{}, false
	}

	if v := doc.Get("thought"); v.Type == gjson.String {
		action.Thought = v.Str
	}

	action.Args = map[string]any{}
	for _, field := range argsFields {
		v := doc.Get(field)
		if !v.Exists() {
			continue
		}
		switch {
		case v.IsObject():
			if err := json.Unmarshal([]byte(v.Raw), &action.Args); err != nil {
				action.Args = map[string]any{}
			}
		case v.Type == gjson.String && gjson.Valid(v.Str) && gjson.Parse(v.Str).IsObject():
			if err := json.Unmarshal([]byte(v.Str), &action.Args); err != nil {
				action.Args = map[string]any{}
			}
		}
		break
	}

	return action, true
}

func stringField(doc gjson.Result, field string) string {
	if v := doc.Get(field); v.Type == gjson.String {
		return strings.TrimSpace(v.Str)
	}
	return ""
}

// actionShaped reports whether doc carries a thought or args field
// alongside its name.
func actionShaped(doc gjson.Result) bool {
	if doc.Get("thought").Exists() {
		return true
	}
	for _, field := range argsFields {
		if doc.Get(field).Exists() {
			return true
		}
	}
	return false
}

// balancedObject returns the first balanced {...} span starting at or after
// offset, and the index at which a subsequent search should resume. Braces
// inside JSON string literals do not count toward nesting. An opening brace
// that never balances yields an empty span.
func balancedObject(text string, offset int) (string, int) {
	rel := strings.IndexByte(text[offset:], '{')
	if rel < 0 {
		return "", len(text)
	}
	start := offset + rel

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], i + 1
			}
		}
	}

	return "", start + 1
}
