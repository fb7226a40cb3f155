// Package tools provides the capability registry: a name-indexed set of
// invocable operations with forgiving dispatch for model-authored requests.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
)

type snapshot struct {
	entries map[string]Capability
}

func (s *snapshot) names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolve finds a capability by exact name, then by trimmed lower-case name,
// then through the alias table. aliased is true only for the last case.
func (s *snapshot) resolve(name string) (c Capability, resolved string, aliased bool) {
	if c, ok := s.entries[name]; ok {
		return c, name, false
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := s.entries[key]; ok {
		return c, key, false
	}
	if target, ok := aliases[key]; ok {
		if c, ok := s.entries[target]; ok {
			return c, target, true
		}
	}
	return nil, "", false
}

// Registry holds the current capability set. Readers always observe one
// complete snapshot; writers build a new snapshot and swap it in.
type Registry struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// NewRegistry creates a registry holding caps.
func NewRegistry(caps ...Capability) (*Registry, error) {
	r := &Registry{}
	if err := r.Reload(caps...); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) load() *snapshot {
	if s := r.current.Load(); s != nil {
		return s
	}
	return &snapshot{entries: map[string]Capability{}}
}

// Register adds a capability, replacing any existing one with the same name.
func (r *Registry) Register(c Capability) error {
	name := c.Definition().Name
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.load()
	next := &snapshot{entries: make(map[string]Capability, len(prev.entries)+1)}
	for k, v := range prev.entries {
		next.entries[k] = v
	}
	next.entries[name] = c
	r.current.Store(next)
	return nil
}

// Reload replaces the whole capability set. On error the current set is
// left untouched.
func (r *Registry) Reload(caps ...Capability) error {
	next := &snapshot{entries: make(map[string]Capability, len(caps))}
	for _, c := range caps {
		name := c.Definition().Name
		if name == "" {
			return ErrEmptyName
		}
		next.entries[name] = c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.Store(next)
	return nil
}

// Lookup resolves name the same way Dispatch does.
func (r *Registry) Lookup(name string) (Capability, bool) {
	c, _, _ := r.load().resolve(name)
	return c, c != nil
}

// List returns every capability definition, sorted by name.
func (r *Registry) List() []protocol.Capability {
	s := r.load()
	defs := make([]protocol.Capability, 0, len(s.entries))
	for _, name := range s.names() {
		defs = append(defs, s.entries[name].Definition())
	}
	return defs
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	return len(r.load().entries)
}

// Describe renders the capability set for inclusion in a prompt:
//
//	- name: description
//	  - param: hint (required)
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, def := range r.List() {
		fmt.Fprintf(&b, "- %s: %s\n", def.Name, def.Description)
		for _, param := range def.ParameterNames() {
			b.WriteString("  - ")
			b.WriteString(param)
			if hint := def.ParameterHint(param); hint != "" {
				b.WriteString(": ")
				b.WriteString(hint)
			}
			if def.Required(param) {
				b.WriteString(" (required)")
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Dispatch invokes a capability on behalf of the model. It never returns an
// error: every outcome, including unknown names and panics, is reported as
// a Result whose Content is fit to feed back to the model.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (result Result) {
	s := r.load()
	c, resolved, aliased := s.resolve(name)
	if c == nil {
		return Result{
			Kind:    NotFound,
			Content: fmt.Sprintf("capability %q not found; available: %s", name, strings.Join(s.names(), ", ")),
		}
	}

	def := c.Definition()
	normalized := normalizeArgs(def, args)
	if aliased && def.Accepts("action") {
		if _, ok := normalized["action"]; !ok {
			normalized["action"] = strings.ToLower(strings.TrimSpace(name))
		}
	}

	defer func() {
		if p := recover(); p != nil {
			result = Result{
				Kind:     RuntimeError,
				Resolved: resolved,
				Content:  fmt.Sprintf("capability %s panicked: %v", resolved, p),
			}
		}
	}()

	out, err := c.Execute(ctx, normalized)
	return classify(resolved, def, out, err)
}
