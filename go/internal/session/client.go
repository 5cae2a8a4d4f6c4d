package session

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// SessionServiceClient calls the session service over connect
type SessionServiceClient struct {
	createSession *connect.Client[CreateSessionRequest, CreateSessionResponse]
	listSessions  *connect.Client[ListSessionsRequest, ListSessionsResponse]
	getSession    *connect.Client[GetSessionRequest, GetSessionResponse]
	startRound    *connect.Client[RoundRequest, RoundResponse]
	restartRound  *connect.Client[RoundRequest, RoundResponse]
	pauseRound    *connect.Client[RoundRequest, RoundResponse]
	resumeRound   *connect.Client[RoundRequest, RoundResponse]
	deleteSession *connect.Client[DeleteSessionRequest, DeleteSessionResponse]
}

// NewSessionServiceClient creates a client for the service at baseURL,
// e.g. http://localhost:8080
func NewSessionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SessionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &SessionServiceClient{
		createSession: connect.NewClient[CreateSessionRequest, CreateSessionResponse](httpClient, baseURL+CreateSessionProcedure, opts...),
		listSessions:  connect.NewClient[ListSessionsRequest, ListSessionsResponse](httpClient, baseURL+ListSessionsProcedure, opts...),
		getSession:    connect.NewClient[GetSessionRequest, GetSessionResponse](httpClient, baseURL+GetSessionProcedure, opts...),
		startRound:    connect.NewClient[RoundRequest, RoundResponse](httpClient, baseURL+StartRoundProcedure, opts...),
		restartRound:  connect.NewClient[RoundRequest, RoundResponse](httpClient, baseURL+RestartRoundProcedure, opts...),
		pauseRound:    connect.NewClient[RoundRequest, RoundResponse](httpClient, baseURL+PauseRoundProcedure, opts...),
		resumeRound:   connect.NewClient[RoundRequest, RoundResponse](httpClient, baseURL+ResumeRoundProcedure, opts...),
		deleteSession: connect.NewClient[DeleteSessionRequest, DeleteSessionResponse](httpClient, baseURL+DeleteSessionProcedure, opts...),
	}
}

func (c *SessionServiceClient) CreateSession(ctx context.Context, req *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error) {
	return c.createSession.CallUnary(ctx, req)
}

func (c *SessionServiceClient) ListSessions(ctx context.Context, req *connect.Request[ListSessionsRequest]) (*connect.Response[ListSessionsResponse], error) {
	return c.listSessions.CallUnary(ctx, req)
}

func (c *SessionServiceClient) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *SessionServiceClient) StartRound(ctx context.Context, req *connect.Request[RoundRequest]) (*connect.Response[RoundResponse], error) {
	return c.startRound.CallUnary(ctx, req)
}

func (c *SessionServiceClient) RestartRound(ctx context.Context, req *connect.Request[RoundRequest]) (*connect.Response[RoundResponse], error) {
	return c.restartRound.CallUnary(ctx, req)
}

func (c *SessionServiceClient) PauseRound(ctx context.Context, req *connect.Request[RoundRequest]) (*connect.Response[RoundResponse], error) {
	return c.pauseRound.CallUnary(ctx, req)
}

func (c *SessionServiceClient) ResumeRound(ctx context.Context, req *connect.Request[RoundRequest]) (*connect.Response[RoundResponse], error) {
	return c.resumeRound.CallUnary(ctx, req)
}

func (c *SessionServiceClient) DeleteSession(ctx context.Context, req *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error) {
	return c.deleteSession.CallUnary(ctx, req)
}
