package control

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/tailored-agentic-units/taskloop/session"
)

// Client calls a remote SessionService.
type Client struct {
	listRunning *connect.Client[ListRunningRequest, ListRunningResponse]
	getSession  *connect.Client[GetSessionRequest, GetSessionResponse]
}

// NewClient creates a client for the service served at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &Client{
		listRunning: connect.NewClient[ListRunningRequest, ListRunningResponse](
			httpClient, baseURL+ListRunningProcedure, opts...,
		),
		getSession: connect.NewClient[GetSessionRequest, GetSessionResponse](
			httpClient, baseURL+GetSessionProcedure, opts...,
		),
	}
}

// ListRunning returns the remote running sessions, most recently updated
// first.
func (c *Client) ListRunning(ctx context.Context) ([]session.Summary, error) {
	res, err := c.listRunning.CallUnary(ctx, connect.NewRequest(&ListRunningRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg.Sessions, nil
}

// GetSession fetches one session. A missing session yields an error
// wrapping session.ErrNotFound.
func (c *Client) GetSession(ctx context.Context, id string) (*session.Session, error) {
	res, err := c.getSession.CallUnary(ctx, connect.NewRequest(&GetSessionRequest{ID: id}))
	if err != nil {
		if connect.CodeOf(err) == connect.CodeNotFound {
			return nil, fmt.Errorf("%w: %s", session.ErrNotFound, id)
		}
		return nil, err
	}
	return res.Msg.Session, nil
}
