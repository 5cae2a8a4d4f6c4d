package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/timerball/go/internal/game"
	"github.com/mcdev12/timerball/go/internal/models"
	"github.com/mcdev12/timerball/go/internal/round"
	"github.com/mcdev12/timerball/go/internal/scene"
)

const (
	// SessionServiceName is the fully-qualified name of the session service
	SessionServiceName = "timerball.v1.SessionService"

	CreateSessionProcedure = "/timerball.v1.SessionService/CreateSession"
	ListSessionsProcedure  = "/timerball.v1.SessionService/ListSessions"
	GetSessionProcedure    = "/timerball.v1.SessionService/GetSession"
	StartRoundProcedure    = "/timerball.v1.SessionService/StartRound"
	RestartRoundProcedure  = "/timerball.v1.SessionService/RestartRound"
	PauseRoundProcedure    = "/timerball.v1.SessionService/PauseRound"
	ResumeRoundProcedure   = "/timerball.v1.SessionService/ResumeRound"
	DeleteSessionProcedure = "/timerball.v1.SessionService/DeleteSession"
)

// SessionsApp defines what the service layer needs from the sessions application
type SessionsApp interface {
	CreateSession(ctx context.Context) (*models.Session, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*SessionView, error)
	StartRound(ctx context.Context, id uuid.UUID, seed *int) (*scene.Snapshot, error)
	RestartRound(ctx context.Context, id uuid.UUID, seed *int) (*scene.Snapshot, error)
	PauseRound(ctx context.Context, id uuid.UUID) (*scene.Snapshot, error)
	ResumeRound(ctx context.Context, id uuid.UUID) (*scene.Snapshot, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

// Service implements the SessionService connect procedures
type Service struct {
	app SessionsApp
}

// NewService creates a new session service
func NewService(app SessionsApp) *Service {
	return &Service{
		app: app,
	}
}

// NewSessionServiceHandler builds an HTTP handler serving every procedure
// of the service. It returns the path to mount it on.
func NewSessionServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	createSession := connect.NewUnaryHandler(CreateSessionProcedure, svc.CreateSession, opts...)
	listSessions := connect.NewUnaryHandler(ListSessionsProcedure, svc.ListSessions, opts...)
	getSession := connect.NewUnaryHandler(GetSessionProcedure, svc.GetSession, opts...)
	startRound := connect.NewUnaryHandler(StartRoundProcedure, svc.StartRound, opts...)
	restartRound := connect.NewUnaryHandler(RestartRoundProcedure, svc.RestartRound, opts...)
	pauseRound := connect.NewUnaryHandler(PauseRoundProcedure, svc.PauseRound, opts...)
	resumeRound := connect.NewUnaryHandler(ResumeRoundProcedure, svc.ResumeRound, opts...)
	deleteSession := connect.NewUnaryHandler(DeleteSessionProcedure, svc.DeleteSession, opts...)

	return "/" + SessionServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CreateSessionProcedure:
			createSession.ServeHTTP(w, r)
		case ListSessionsProcedure:
			listSessions.ServeHTTP(w, r)
		case GetSessionProcedure:
			getSession.ServeHTTP(w, r)
		case StartRoundProcedure:
			startRound.ServeHTTP(w, r)
		case RestartRoundProcedure:
			restartRound.ServeHTTP(w, r)
		case PauseRoundProcedure:
			pauseRound.ServeHTTP(w, r)
		case ResumeRoundProcedure:
			resumeRound.ServeHTTP(w, r)
		case DeleteSessionProcedure:
			deleteSession.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// CreateSession creates a session with a random seed
func (s *Service) CreateSession(ctx context.Context, req *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error) {
	sess, err := s.app.CreateSession(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CreateSessionResponse{
		Session: sessionToMessage(*sess),
	}), nil
}

// ListSessions lists every session in creation order
func (s *Service) ListSessions(ctx context.Context, req *connect.Request[ListSessionsRequest]) (*connect.Response[ListSessionsResponse], error) {
	sessions, err := s.app.ListSessions(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]SessionMessage, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionToMessage(sess))
	}
	return connect.NewResponse(&ListSessionsResponse{Sessions: out}), nil
}

// GetSession returns a session with its live snapshot
func (s *Service) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error) {
	id, err := uuid.Parse(req.Msg.SessionID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid session id: %w", err))
	}

	view, err := s.app.GetSession(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetSessionResponse{
		Session:  sessionToMessage(view.Session),
		Snapshot: view.Snapshot,
	}), nil
}

// DeleteSession tears down a session and its runner
func (s *Service) DeleteSession(ctx context.Context, req *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error) {
	id, err := uuid.Parse(req.Msg.SessionID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid session id: %w", err))
	}
	if err := s.app.DeleteSession(ctx, id); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteSessionResponse{}), nil
}

// StartRound starts a session's round
func (s *Service) StartRound(ctx context.Context, req *connect.Request[RoundRequest]) (*connect.Response[RoundResponse], error) {
	return s.roundCall(ctx, req.Msg, func(id uuid.UUID) (*scene.Snapshot, error) {
		return s.app.StartRound(ctx, id, req.Msg.Seed)
	})
}

// RestartRound restarts a session's round after it ended
func (s *Service) RestartRound(ctx context.Context, req *connect.Request[RoundRequest]) (*connect.Response[RoundResponse], error) {
	return s.roundCall(ctx, req.Msg, func(id uuid.UUID) (*scene.Snapshot, error) {
		return s.app.RestartRound(ctx, id, req.Msg.Seed)
	})
}

// PauseRound pauses a session's round
func (s *Service) PauseRound(ctx context.Context, req *connect.Request[RoundRequest]) (*connect.Response[RoundResponse], error) {
	return s.roundCall(ctx, req.Msg, func(id uuid.UUID) (*scene.Snapshot, error) {
		return s.app.PauseRound(ctx, id)
	})
}

// ResumeRound resumes a paused round
func (s *Service) ResumeRound(ctx context.Context, req *connect.Request[RoundRequest]) (*connect.Response[RoundResponse], error) {
	return s.roundCall(ctx, req.Msg, func(id uuid.UUID) (*scene.Snapshot, error) {
		return s.app.ResumeRound(ctx, id)
	})
}

func (s *Service) roundCall(ctx context.Context, msg *RoundRequest, call func(uuid.UUID) (*scene.Snapshot, error)) (*connect.Response[RoundResponse], error) {
	id, err := uuid.Parse(msg.SessionID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid session id: %w", err))
	}

	snap, err := call(id)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RoundResponse{Snapshot: *snap}), nil
}

// toConnectError maps domain errors onto connect codes
func toConnectError(err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, game.ErrRunnerNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, round.ErrNegativeSeed):
		code = connect.CodeInvalidArgument
	case errors.Is(err, round.ErrInvalidTransition):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, game.ErrRunnerStopped), errors.Is(err, game.ErrManagerClosed):
		code = connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}
