// Package control exposes the session store over Connect RPC so operators
// can inspect running and finished sessions from another process.
//
// The service is read-only. Messages are plain Go structs carried as JSON:
//
//	path, handler := control.NewHandler(store)
//	mux.Handle(path, handler)
//
//	client := control.NewClient(http.DefaultClient, "http://127.0.0.1:8080")
//	running, err := client.ListRunning(ctx)
package control

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/tailored-agentic-units/taskloop/observability"
	"github.com/tailored-agentic-units/taskloop/session"
)

const ServiceName = "taskloop.v1.SessionService"

const (
	ListRunningProcedure = "/" + ServiceName + "/ListRunning"
	GetSessionProcedure  = "/" + ServiceName + "/GetSession"
)

// EventRequest is emitted once per handled call.
const EventRequest observability.EventType = "control.request"

type ListRunningRequest struct{}

type ListRunningResponse struct {
	Sessions []session.Summary `json:"sessions"`
}

type GetSessionRequest struct {
	ID string `json:"session_id"`
}

type GetSessionResponse struct {
	Session *session.Session `json:"session"`
}

type server struct {
	store session.Store
}

func (s *server) listRunning(ctx context.Context, _ *connect.Request[ListRunningRequest]) (*connect.Response[ListRunningResponse], error) {
	summaries, err := s.store.ListRunning(ctx)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if summaries == nil {
		summaries = []session.Summary{}
	}
	return connect.NewResponse(&ListRunningResponse{Sessions: summaries}), nil
}

func (s *server) getSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error) {
	id := strings.TrimSpace(req.Msg.ID)
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("session_id is required"))
	}

	sess, err := s.store.Load(ctx, id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return nil, connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrInvalidSession):
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	case err != nil:
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&GetSessionResponse{Session: sess}), nil
}

// NewHandler builds the SessionService handler over store. It returns the
// path prefix to mount the handler on.
func NewHandler(store session.Store, opts ...connect.HandlerOption) (string, http.Handler) {
	s := &server{store: store}
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ListRunningProcedure, connect.NewUnaryHandler(ListRunningProcedure, s.listRunning, opts...))
	mux.Handle(GetSessionProcedure, connect.NewUnaryHandler(GetSessionProcedure, s.getSession, opts...))
	return "/" + ServiceName + "/", mux
}

// ObserverInterceptor reports every call to observer.
func ObserverInterceptor(observer observability.Observer) connect.Interceptor {
	return connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)

			data := map[string]any{
				"procedure": req.Spec().Procedure,
				"duration":  time.Since(start).String(),
			}
			level := observability.LevelVerbose
			if err != nil {
				data["code"] = connect.CodeOf(err).String()
				data["error"] = err.Error()
				level = observability.LevelWarning
			}
			observer.OnEvent(ctx, observability.Event{
				Type:      EventRequest,
				Level:     level,
				Timestamp: time.Now(),
				Source:    "control." + req.Spec().Procedure,
				Data:      data,
			})
			return res, err
		}
	})
}
