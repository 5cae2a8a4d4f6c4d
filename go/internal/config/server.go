package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mcdev12/timerball/go/internal/publisher"
	"github.com/rs/zerolog"
)

// Server holds the process settings read from the environment
type Server struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile         string        `env:"LOG_FILE"`
	GameConfig      string        `env:"GAME_CONFIG"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	NATSEnabled bool   `env:"NATS_ENABLED" envDefault:"false"`
	NATSURL     string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSStream  string `env:"NATS_STREAM" envDefault:"TIMERBALL_EVENTS"`

	PublishQueueSize  int           `env:"PUBLISH_QUEUE_SIZE" envDefault:"1024"`
	PublishMaxRetries int           `env:"PUBLISH_MAX_RETRIES" envDefault:"3"`
	PublishRetryDelay time.Duration `env:"PUBLISH_RETRY_DELAY" envDefault:"1s"`
}

// LoadServer parses the environment. Call godotenv.Load first to pick up a
// .env file.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (s Server) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", s.Port)
	}
	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", s.LogLevel, err)
	}
	if s.PublishQueueSize <= 0 {
		return fmt.Errorf("PUBLISH_QUEUE_SIZE must be positive, got %d", s.PublishQueueSize)
	}
	if s.PublishMaxRetries < 0 {
		return fmt.Errorf("PUBLISH_MAX_RETRIES must not be negative, got %d", s.PublishMaxRetries)
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (s Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Level returns the zerolog level, falling back to info
func (s Server) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (s Server) JetStream() publisher.JetStreamConfig {
	cfg := publisher.DefaultJetStreamConfig()
	cfg.URL = s.NATSURL
	cfg.StreamName = s.NATSStream
	return cfg
}

func (s Server) Async() publisher.AsyncConfig {
	return publisher.AsyncConfig{
		QueueSize:  s.PublishQueueSize,
		MaxRetries: s.PublishMaxRetries,
		RetryDelay: s.PublishRetryDelay,
	}
}
