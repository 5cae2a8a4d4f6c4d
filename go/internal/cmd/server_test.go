package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/timerball/go/internal/config"
	"github.com/mcdev12/timerball/go/internal/publisher"
	"github.com/mcdev12/timerball/go/internal/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv, err := config.LoadServer()
	if err != nil {
		t.Fatalf("load server config: %v", err)
	}
	srv.AllowedOrigins = []string{"http://allowed.test"}
	tuning, err := config.LoadGame("")
	if err != nil {
		t.Fatalf("load game config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	services, err := setupServices(ctx, srv, tuning, clockwork.NewFakeClock())
	if err != nil {
		t.Fatalf("setup services: %v", err)
	}
	if err := services.Start(ctx); err != nil {
		t.Fatalf("start services: %v", err)
	}

	server := httptest.NewServer(newHandler(srv, services))
	t.Cleanup(func() {
		server.Close()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		services.Shutdown(shutdownCtx)
		cancel()
	})
	return server
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var status publisher.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Healthy || status.Broker != "log" {
		t.Errorf("unexpected health %+v", status)
	}
}

func TestWebClientServed(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	page := string(body)
	for _, want := range []string{
		"visibilitychange",
		"Start New Session",
		"CreateSession",
		"ListSessions",
		"DeleteSession",
		"Session ID: ",
		"Start Time",
		"End Time",
		"toLocaleTimeString",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("expected %q in the browser client page", want)
		}
	}
}

func TestSessionServiceMounted(t *testing.T) {
	server := newTestServer(t)
	client := session.NewSessionServiceClient(server.Client(), server.URL)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, connect.NewRequest(&session.CreateSessionRequest{}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := client.GetSession(ctx, connect.NewRequest(&session.GetSessionRequest{SessionID: created.Msg.Session.ID}))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Msg.Snapshot.Seed != created.Msg.Session.Seed {
		t.Errorf("snapshot seed %d, session seed %d", got.Msg.Snapshot.Seed, created.Msg.Session.Seed)
	}

	resp, err := http.Get(server.URL + "/ws/stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	defer resp.Body.Close()
	var stats struct {
		Sessions map[string]int64 `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Sessions["registered"] != 1 || stats.Sessions["runners"] != 1 {
		t.Errorf("unexpected session stats %v", stats.Sessions)
	}
}

func TestCORS(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		origin string
		want   string
	}{
		{"http://allowed.test", "http://allowed.test"},
		{"http://other.test", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodOptions, server.URL+session.CreateSessionProcedure, nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("preflight: %v", err)
			}
			resp.Body.Close()
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("expected allow origin %q, got %q", tt.want, got)
			}
		})
	}
}
