package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mcdev12/timerball/go/internal/game"
	"github.com/rs/zerolog"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Addr())
	}
	if cfg.NATSEnabled {
		t.Error("expected NATS disabled by default")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.Level() != zerolog.InfoLevel {
		t.Errorf("expected info level, got %s", cfg.Level())
	}
}

func TestLoadServerFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("NATS_URL", "nats://bus:4222")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9090 || cfg.Level() != zerolog.DebugLevel {
		t.Errorf("unexpected port/level %d/%s", cfg.Port, cfg.Level())
	}
	if !cfg.NATSEnabled {
		t.Error("expected NATS enabled")
	}
	if js := cfg.JetStream(); js.URL != "nats://bus:4222" || js.StreamName != "TIMERBALL_EVENTS" {
		t.Errorf("unexpected jetstream config %+v", js)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadServerErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"port not an int", "PORT", "eighty", "parse env:"},
		{"port out of range", "PORT", "70000", "invalid PORT"},
		{"bad level", "LOG_LEVEL", "loud", "invalid LOG_LEVEL"},
		{"negative retries", "PUBLISH_MAX_RETRIES", "-1", "PUBLISH_MAX_RETRIES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadServer()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestLoadGameDefaults(t *testing.T) {
	cfg, err := LoadGame("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rt := cfg.Runtime()
	def := game.DefaultConfig()
	if rt != def {
		t.Errorf("expected runtime defaults %+v, got %+v", def, rt)
	}
}

func TestLoadGameFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	body := `
arena: {width: 400, height: 300}
ball:
  start: {x: 200, y: 150}
  radius: 10
seed: {min: 5, max: 9}
frame_rate: 25
tick_interval: 500ms
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadGame(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed.Min != 5 || cfg.Seed.Max != 9 {
		t.Errorf("unexpected seed range %+v", cfg.Seed)
	}
	rt := cfg.Runtime()
	if rt.FrameInterval != 40*time.Millisecond || rt.TickInterval != 500*time.Millisecond {
		t.Errorf("unexpected intervals %s/%s", rt.FrameInterval, rt.TickInterval)
	}
	if rt.Scene.Bounds.Width != 400 || rt.Scene.Radius != 10 {
		t.Errorf("unexpected scene %+v", rt.Scene)
	}
	// velocity was not in the file
	if rt.Scene.Velocity != game.DefaultConfig().Scene.Velocity {
		t.Errorf("expected default velocity, got %+v", rt.Scene.Velocity)
	}
}

func TestLoadGameErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"inverted seed range", "seed: {min: 10, max: 2}"},
		{"zero frame rate", "frame_rate: 0"},
		{"ball outside arena", "ball: {start: {x: 5000, y: 10}}"},
		{"not yaml", "arena: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "game.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadGame(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadGame(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
