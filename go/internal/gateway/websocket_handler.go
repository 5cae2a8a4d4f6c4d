package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/timerball/go/internal/session"
	"github.com/rs/zerolog/log"
)

// StatsFunc contributes extra fields to the /ws/stats response
type StatsFunc func() any

// WebSocketHandler handles WebSocket upgrade requests for session connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	controller        RoundController
	stats             map[string]StatsFunc
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, controller RoundController) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		controller:        controller,
		stats:             make(map[string]StatsFunc),
	}
}

// AddStats registers a named section of the stats response
func (h *WebSocketHandler) AddStats(name string, fn StatsFunc) {
	h.stats[name] = fn
}

// HandleSessionConnection handles WebSocket connections for a specific session
func (h *WebSocketHandler) HandleSessionConnection(w http.ResponseWriter, r *http.Request) {
	sessionIDStr := r.URL.Query().Get("session_id")
	if sessionIDStr == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		http.Error(w, "invalid session_id format", http.StatusBadRequest)
		return
	}

	if _, err := h.controller.GetSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to load session")
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	// The upgrader has already written an HTTP error on failure
	if err := h.connectionManager.UpgradeConnection(w, r, sessionID, h.controller); err != nil {
		log.Error().
			Err(err).
			Str("session_id", sessionID.String()).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"connections": h.connectionManager.GetConnectionStats(),
	}
	for name, fn := range h.stats {
		resp[name] = fn()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to write stats response")
	}
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/session", h.HandleSessionConnection)
	r.Get("/ws/stats", h.HandleConnectionStats)
}
