package control_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tailored-agentic-units/taskloop/control"
	"github.com/tailored-agentic-units/taskloop/core/protocol"
	"github.com/tailored-agentic-units/taskloop/observability"
	"github.com/tailored-agentic-units/taskloop/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func serve(t *testing.T, store session.Store, opts ...connect.HandlerOption) *control.Client {
	t.Helper()
	_, handler := control.NewHandler(store, opts...)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return control.NewClient(srv.Client(), srv.URL+"/")
}

func seed(t *testing.T, store session.Store) (running, done *session.Session) {
	t.Helper()
	ctx := context.Background()

	running = session.New("list files")
	running.Plan = []string{"Step 1: list files"}
	running.Append(protocol.NewMessage(protocol.RoleUser, "Task: list files"))
	running.Progress = 1
	require.NoError(t, store.Save(ctx, running))

	done = session.New("write hello.py")
	done.Status = session.StatusDone
	require.NoError(t, store.Save(ctx, done))
	return running, done
}

func TestListRunning(t *testing.T) {
	store := session.NewMemoryStore()
	running, _ := seed(t, store)
	client := serve(t, store)

	summaries, err := client.ListRunning(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, running.ID, summaries[0].ID)
	assert.Equal(t, "list files", summaries[0].Task)
	assert.Equal(t, 1, summaries[0].Progress)
}

func TestListRunning_Empty(t *testing.T) {
	client := serve(t, session.NewMemoryStore())

	summaries, err := client.ListRunning(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestGetSession(t *testing.T) {
	store := session.NewMemoryStore()
	running, done := seed(t, store)
	client := serve(t, store)

	got, err := client.GetSession(context.Background(), running.ID)
	require.NoError(t, err)
	assert.Equal(t, running.Plan, got.Plan)
	assert.Equal(t, running.Transcript, got.Transcript)
	assert.Equal(t, session.StatusRunning, got.Status)

	got, err = client.GetSession(context.Background(), done.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusDone, got.Status)
}

func TestGetSession_Errors(t *testing.T) {
	client := serve(t, session.NewMemoryStore())

	_, err := client.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)

	_, err = client.GetSession(context.Background(), " ")
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestObserverInterceptor(t *testing.T) {
	rec := &observability.Recorder{}
	client := serve(t, session.NewMemoryStore(),
		connect.WithInterceptors(control.ObserverInterceptor(rec)))

	_, err := client.ListRunning(context.Background())
	require.NoError(t, err)
	_, err = client.GetSession(context.Background(), "missing")
	require.True(t, errors.Is(err, session.ErrNotFound))

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, control.EventRequest, events[0].Type)
	assert.Equal(t, control.ListRunningProcedure, events[0].Data["procedure"])
	assert.Equal(t, observability.LevelWarning, events[1].Level)
	assert.Equal(t, "not_found", events[1].Data["code"])
}
