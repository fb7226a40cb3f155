package protocol

import "sort"

// Capability describes an invocable operation to the model. Parameters uses
// JSON Schema shape ("properties", "required") and is advisory: it drives
// prompt construction and argument normalization, not strict validation.
type Capability struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

func (c Capability) properties() map[string]any {
	if c.Parameters == nil {
		return nil
	}
	props, _ := c.Parameters["properties"].(map[string]any)
	return props
}

// ParameterNames returns the declared parameter names in sorted order.
func (c Capability) ParameterNames() []string {
	props := c.properties()
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Accepts reports whether name is a declared parameter.
func (c Capability) Accepts(name string) bool {
	_, ok := c.properties()[name]
	return ok
}

// ParameterHint returns the human-readable description of a parameter, if any.
func (c Capability) ParameterHint(name string) string {
	prop, ok := c.properties()[name].(map[string]any)
	if !ok {
		return ""
	}
	hint, _ := prop["description"].(string)
	return hint
}

// Required reports whether name is listed as a required parameter.
func (c Capability) Required(name string) bool {
	if c.Parameters == nil {
		return false
	}
	switch req := c.Parameters["required"].(type) {
	case []string:
		for _, r := range req {
			if r == name {
				return true
			}
		}
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok && s == name {
				return true
			}
		}
	}
	return false
}
