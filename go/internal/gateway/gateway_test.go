package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/timerball/go/internal/events"
	"github.com/mcdev12/timerball/go/internal/game"
	"github.com/mcdev12/timerball/go/internal/round"
	"github.com/mcdev12/timerball/go/internal/scene"
	"github.com/mcdev12/timerball/go/internal/session"
)

type testEnv struct {
	server *httptest.Server
	app    *session.App
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	registry := session.NewRegistry(clock, session.DefaultSeedRange())

	cm := NewConnectionManager(DefaultConnectionConfig())
	manager := game.NewManager(game.DefaultConfig(), game.Deps{Clock: clock, Recorder: registry, Observer: cm})
	app := session.NewApp(registry, manager, nil, clock)
	gw := NewService(cm, app)

	ctx, cancel := context.WithCancel(context.Background())
	go gw.Start(ctx)

	r := chi.NewRouter()
	gw.RegisterRoutes(r)
	server := httptest.NewServer(r)

	t.Cleanup(func() {
		server.Close()
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		_ = manager.Shutdown(shutdownCtx)
	})
	return &testEnv{server: server, app: app}
}

func (e *testEnv) dial(t *testing.T, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws/session?session_id=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads envelopes until one of the given type arrives
func readUntil(t *testing.T, conn *websocket.Conn, typ events.EventType) *events.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var ev events.Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if ev.Type == typ {
			return &ev
		}
	}
}

func TestSessionSocketLifecycle(t *testing.T) {
	env := newTestEnv(t)
	sess, err := env.app.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	conn := env.dial(t, sess.ID.String())

	initial := readUntil(t, conn, events.EventTypeSnapshot)
	var snap scene.Snapshot
	if err := json.Unmarshal(initial.Data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Phase != round.PhaseIdle || snap.Counter != sess.Seed {
		t.Errorf("expected idle snapshot with seed %d, got %+v", sess.Seed, snap)
	}

	// Hidden while idle has nothing to pause and is not an error
	if err := conn.WriteJSON(ClientMessage{Type: ClientMessageVisibility, Hidden: true}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := conn.WriteJSON(ClientMessage{Type: ClientMessageStart}); err != nil {
		t.Fatalf("write: %v", err)
	}
	started := readUntil(t, conn, events.EventTypeRoundStarted)
	payload, err := events.ParsePayload(started)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p := payload.(*events.RoundStartedPayload); p.Seed != sess.Seed || p.Restart {
		t.Errorf("unexpected start payload %+v", p)
	}

	if err := conn.WriteJSON(ClientMessage{Type: ClientMessageVisibility, Hidden: true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, events.EventTypeRoundPaused)

	if err := conn.WriteJSON(ClientMessage{Type: ClientMessageVisibility, Hidden: false}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, events.EventTypeRoundResumed)

	// Start while running is rejected and reported to this client
	if err := conn.WriteJSON(ClientMessage{Type: ClientMessageStart}); err != nil {
		t.Fatalf("write: %v", err)
	}
	errEv := readUntil(t, conn, events.EventTypeError)
	payload, err = events.ParsePayload(errEv)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p := payload.(*events.ErrorPayload); p.Request != "start" {
		t.Errorf("expected error for start request, got %+v", p)
	}
}

func TestSessionSocketRejectsBadRequests(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing id", "", http.StatusBadRequest},
		{"malformed id", "?session_id=nope", http.StatusBadRequest},
		{"unknown session", "?session_id=" + uuid.NewString(), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/session" + tt.query
			_, resp, err := websocket.DefaultDialer.Dial(url, nil)
			if err == nil {
				t.Fatal("expected dial to fail")
			}
			if resp == nil || resp.StatusCode != tt.want {
				t.Errorf("expected status %d, got %+v", tt.want, resp)
			}
		})
	}
}

func TestUnknownClientMessageGetsError(t *testing.T) {
	env := newTestEnv(t)
	sess, err := env.app.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	conn := env.dial(t, sess.ID.String())
	readUntil(t, conn, events.EventTypeSnapshot)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"jump"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, events.EventTypeError)
}

func TestConnectionStats(t *testing.T) {
	env := newTestEnv(t)
	sess, err := env.app.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	conn := env.dial(t, sess.ID.String())
	readUntil(t, conn, events.EventTypeSnapshot)

	resp, err := http.Get(env.server.URL + "/ws/stats")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Connections ConnectionStats `json:"connections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Connections.TotalConnections != 1 || body.Connections.ActiveSessions != 1 {
		t.Errorf("unexpected stats %+v", body.Connections)
	}
}

func TestParseClientMessage(t *testing.T) {
	tests := []struct {
		raw     string
		want    ClientMessage
		wantErr bool
	}{
		{raw: `{"type":"start"}`, want: ClientMessage{Type: ClientMessageStart}},
		{raw: `{"type":"visibility","hidden":true}`, want: ClientMessage{Type: ClientMessageVisibility, Hidden: true}},
		{raw: `{"type":"teleport"}`, wantErr: true},
		{raw: `not json`, wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseClientMessage([]byte(tt.raw))
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (got.Type != tt.want.Type || got.Hidden != tt.want.Hidden) {
			t.Errorf("%s: got %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

// endingController reports a running round on its first read and ends the
// round right after, the way a runner can finish between the handler's
// lookup and the socket registration
type endingController struct {
	cm    *ConnectionManager
	mu    sync.Mutex
	reads int
	phase round.Phase
}

func (c *endingController) GetSession(ctx context.Context, id uuid.UUID) (*session.SessionView, error) {
	c.mu.Lock()
	c.reads++
	view := &session.SessionView{Snapshot: scene.Snapshot{SessionID: id.String(), Phase: c.phase}}
	first := c.reads == 1
	if first {
		c.phase = round.PhaseEnded
	}
	c.mu.Unlock()

	if first {
		ev, err := events.New(id, events.EventTypeSnapshot, time.Now(), scene.Snapshot{SessionID: id.String(), Phase: round.PhaseEnded})
		if err != nil {
			return nil, err
		}
		c.cm.Notify(id, ev)
	}
	return view, nil
}

func (c *endingController) StartRound(context.Context, uuid.UUID, *int) (*scene.Snapshot, error) {
	return &scene.Snapshot{}, nil
}

func (c *endingController) RestartRound(context.Context, uuid.UUID, *int) (*scene.Snapshot, error) {
	return &scene.Snapshot{}, nil
}

func (c *endingController) PauseRound(context.Context, uuid.UUID) (*scene.Snapshot, error) {
	return &scene.Snapshot{}, nil
}

func (c *endingController) ResumeRound(context.Context, uuid.UUID) (*scene.Snapshot, error) {
	return &scene.Snapshot{}, nil
}

func TestSnapshotAfterRegistrationReflectsRoundEnd(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	id := uuid.New()
	controller := &endingController{cm: cm, phase: round.PhaseRunning}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cm.Start(ctx)

	r := chi.NewRouter()
	NewWebSocketHandler(cm, controller).RegisterRoutes(r)
	server := httptest.NewServer(r)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/session?session_id=" + id.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Collect every snapshot until the socket goes quiet
	var phases []round.Phase
	for {
		conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
		var ev events.Event
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		if ev.Type != events.EventTypeSnapshot {
			continue
		}
		var snap scene.Snapshot
		if err := json.Unmarshal(ev.Data, &snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		phases = append(phases, snap.Phase)
	}

	if len(phases) == 0 {
		t.Fatal("no snapshot received")
	}
	if last := phases[len(phases)-1]; last != round.PhaseEnded {
		t.Errorf("client left showing %s after the round ended, snapshots %v", last, phases)
	}
}
