package tools_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
	"github.com/tailored-agentic-units/taskloop/tools"
)

func testCapability(name string, params ...string) tools.Capability {
	props := map[string]any{}
	for _, p := range params {
		props[p] = map[string]any{"type": "string", "description": "the " + p}
	}
	def := protocol.Capability{
		Name:        name,
		Description: "test capability: " + name,
		Parameters: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   params,
		},
	}
	return tools.Func(def, func(_ context.Context, args tools.Args) (string, error) {
		return fmt.Sprintf("%s:%v", name, map[string]any(args)), nil
	})
}

func newRegistry(t *testing.T, caps ...tools.Capability) *tools.Registry {
	t.Helper()
	r, err := tools.NewRegistry(caps...)
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}
	return r
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		cap     tools.Capability
		wantErr error
	}{
		{
			name: "valid capability",
			cap:  testCapability("register_valid"),
		},
		{
			name:    "empty name",
			cap:     testCapability(""),
			wantErr: tools.ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry(t)
			err := r.Register(tt.cap)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Register() unexpected error: %v", err)
			}
		})
	}
}

func TestRegister_LastWins(t *testing.T) {
	r := newRegistry(t)

	first := tools.Func(protocol.Capability{Name: "echo", Description: "first"},
		func(context.Context, tools.Args) (string, error) { return "first", nil })
	second := tools.Func(protocol.Capability{Name: "echo", Description: "second"},
		func(context.Context, tools.Args) (string, error) { return "second", nil })

	if err := r.Register(first); err != nil {
		t.Fatalf("Register(first) failed: %v", err)
	}
	if err := r.Register(second); err != nil {
		t.Fatalf("Register(second) failed: %v", err)
	}

	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	res := r.Dispatch(context.Background(), "echo", nil)
	if res.Content != "second" {
		t.Errorf("Dispatch content = %q, want %q", res.Content, "second")
	}
}

func TestNewRegistry_EmptyName(t *testing.T) {
	_, err := tools.NewRegistry(testCapability("ok"), testCapability(""))
	if !errors.Is(err, tools.ErrEmptyName) {
		t.Errorf("NewRegistry() error = %v, want %v", err, tools.ErrEmptyName)
	}
}

func TestReload(t *testing.T) {
	r := newRegistry(t, testCapability("alpha"), testCapability("beta"))

	if err := r.Reload(testCapability("gamma")); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	if _, ok := r.Lookup("alpha"); ok {
		t.Error("alpha still registered after Reload")
	}
	if _, ok := r.Lookup("gamma"); !ok {
		t.Error("gamma missing after Reload")
	}
}

func TestReload_ErrorKeepsCurrentSet(t *testing.T) {
	r := newRegistry(t, testCapability("alpha"))

	if err := r.Reload(testCapability("gamma"), testCapability("")); !errors.Is(err, tools.ErrEmptyName) {
		t.Fatalf("Reload() error = %v, want %v", err, tools.ErrEmptyName)
	}
	if _, ok := r.Lookup("alpha"); !ok {
		t.Error("failed Reload replaced the current set")
	}
}

func TestLookup(t *testing.T) {
	r := newRegistry(t, testCapability("list_files"))

	tests := []struct {
		name   string
		lookup string
		found  bool
	}{
		{"exact", "list_files", true},
		{"case and space", "  LIST_FILES ", true},
		{"alias", "ls", true},
		{"unknown", "teleport", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := r.Lookup(tt.lookup)
			if ok != tt.found {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.lookup, ok, tt.found)
			}
			if ok && c.Definition().Name != "list_files" {
				t.Errorf("Lookup(%q) = %q, want list_files", tt.lookup, c.Definition().Name)
			}
		})
	}
}

func TestList_Sorted(t *testing.T) {
	r := newRegistry(t, testCapability("write_file"), testCapability("list_files"), testCapability("read_file"))

	defs := r.List()
	if len(defs) != 3 {
		t.Fatalf("List() returned %d, want 3", len(defs))
	}

	want := []string{"list_files", "read_file", "write_file"}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, def.Name, want[i])
		}
	}
}

func TestDescribe(t *testing.T) {
	r := newRegistry(t, testCapability("read_file", "filename"), testCapability("list_files"))

	got := r.Describe()
	want := "- list_files: test capability: list_files\n" +
		"- read_file: test capability: read_file\n" +
		"  - filename: the filename (required)\n"

	if got != want {
		t.Errorf("Describe() =\n%s\nwant\n%s", got, want)
	}
}

func TestDescribe_ReflectsReload(t *testing.T) {
	r := newRegistry(t, testCapability("alpha"))
	before := r.Describe()

	r.Reload(testCapability("omega"))
	after := r.Describe()

	if before == after {
		t.Error("Describe() did not change after Reload")
	}
	if !strings.Contains(after, "omega") {
		t.Errorf("Describe() = %q, want omega listed", after)
	}
}

func TestConcurrentReloadAndDispatch(t *testing.T) {
	r := newRegistry(t, testCapability("a"), testCapability("b"))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			if i%2 == 0 {
				r.Reload(testCapability("a"), testCapability("b"))
			} else {
				r.Reload(testCapability("a"), testCapability("c"))
			}
		})
		wg.Go(func() {
			res := r.Dispatch(context.Background(), "a", nil)
			if res.Kind != tools.Success {
				t.Errorf("Dispatch(a) kind = %v during reload", res.Kind)
			}
		})
		wg.Go(func() {
			r.Describe()
		})
	}
	wg.Wait()
}
