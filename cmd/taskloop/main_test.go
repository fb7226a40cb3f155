package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/taskloop/kernel"
	"github.com/tailored-agentic-units/taskloop/observability"
	"github.com/tailored-agentic-units/taskloop/tools"
	"github.com/tailored-agentic-units/taskloop/tools/builtin"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview("a\n  b\tc"))

	long := strings.Repeat("x", previewLimit+10)
	got := preview(long)
	assert.Len(t, got, previewLimit+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadEnvFile(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TASKLOOP_TEST_MODEL=qwen3:8b\n"), 0o644))
	t.Setenv("TASKLOOP_TEST_MODEL", "")
	os.Unsetenv("TASKLOOP_TEST_MODEL")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "qwen3:8b", os.Getenv("TASKLOOP_TEST_MODEL"))
}

func TestReloader_Apply(t *testing.T) {
	dir := t.TempDir()
	ws, err := builtin.NewWorkspace(dir)
	require.NoError(t, err)
	registry, err := tools.NewRegistry(builtin.All(ws)...)
	require.NoError(t, err)

	path := filepath.Join(dir, "taskloop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capabilities:\n  enabled: [read_file, list_files]\n"), 0o644))

	rec := &observability.Recorder{}
	r := &reloader{path: path, registry: registry, ws: ws, observer: rec}
	r.reload(context.Background())

	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, 1, rec.Count(EventReload))

	require.NoError(t, os.WriteFile(path, []byte("capabilities:\n  enabled: [teleport]\n"), 0o644))
	r.reload(context.Background())

	assert.Equal(t, 2, registry.Len(), "failed reload must keep the current set")
	assert.Equal(t, 1, rec.Count(EventReloadError))
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := console{w: &buf}

	c.OnEvent(context.Background(), observability.Event{
		Type: kernel.EventAction,
		Data: map[string]any{"turn": 2, "action": "list_files", "thought": "look\naround"},
	})
	c.OnEvent(context.Background(), observability.Event{
		Type: kernel.EventDispatch,
		Data: map[string]any{"kind": "success", "length": 42},
	})
	c.OnEvent(context.Background(), observability.Event{Type: kernel.EventCheckpoint})

	assert.Equal(t, "[turn 2] list_files: look around\n  -> success (42 bytes)\n", buf.String())
}

func TestPrintResult_Exhausted(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, &kernel.Result{SessionID: "abc", State: kernel.StateExhausted, Turns: 15})

	assert.Contains(t, buf.String(), "state:   exhausted")
	assert.Contains(t, buf.String(), "taskloop resume abc")
}
