package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
)

// Capability is a named operation the model can invoke. Execute returns the
// text fed back to the model; errors wrapping ErrArgument are reported as
// argument errors, anything else as runtime errors.
type Capability interface {
	Definition() protocol.Capability
	Execute(ctx context.Context, args Args) (string, error)
}

// Func builds a Capability from a definition and a plain function.
func Func(def protocol.Capability, fn func(ctx context.Context, args Args) (string, error)) Capability {
	return funcCapability{def: def, fn: fn}
}

type funcCapability struct {
	def protocol.Capability
	fn  func(ctx context.Context, args Args) (string, error)
}

func (f funcCapability) Definition() protocol.Capability { return f.def }

func (f funcCapability) Execute(ctx context.Context, args Args) (string, error) {
	return f.fn(ctx, args)
}

// Args holds the decoded arguments of an action.
type Args map[string]any

// String returns the argument as text. Non-string scalars are formatted;
// missing keys yield "".
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the argument as an integer, or def when it is missing or not
// numeric.
func (a Args) Int(key string, def int) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Require checks that every key is present with a non-empty value.
func (a Args) Require(keys ...string) error {
	for _, key := range keys {
		v, ok := a[key]
		if !ok || v == nil {
			return fmt.Errorf("%w: missing required argument %q", ErrArgument, key)
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: argument %q is empty", ErrArgument, key)
		}
	}
	return nil
}

// Only rejects keys outside the allowed set, so an argument the capability
// would otherwise ignore is reported instead of silently dropped.
func (a Args) Only(allowed ...string) error {
	var extra []string
	for key := range a {
		if !slices.Contains(allowed, key) {
			extra = append(extra, key)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	slices.Sort(extra)
	return fmt.Errorf("%w: unexpected argument(s) %s", ErrArgument, strings.Join(extra, ", "))
}
