package gateway

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Service is the session gateway: websocket connections plus the fan-out
// of runner events to them
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
}

// NewService creates a new gateway service. The connection manager is
// built first so runners can report to it before the controller exists.
func NewService(connectionManager *ConnectionManager, controller RoundController) *Service {
	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager, controller),
	}
}

// Start processes broadcasts until ctx is cancelled
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting session gateway")
	s.connectionManager.Start(ctx)
	log.Info().Msg("session gateway stopped")
}

// RegisterRoutes registers the WebSocket HTTP routes
func (s *Service) RegisterRoutes(r chi.Router) {
	s.wsHandler.RegisterRoutes(r)
	log.Info().Msg("session gateway routes registered")
}

// AddStats adds a named section to the /ws/stats response
func (s *Service) AddStats(name string, fn StatsFunc) {
	s.wsHandler.AddStats(name, fn)
}
