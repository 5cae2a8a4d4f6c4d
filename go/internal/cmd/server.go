package main

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mcdev12/timerball/go/internal/config"
	"github.com/mcdev12/timerball/go/internal/session"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

//go:embed web
var webFS embed.FS

func setupServer(cfg config.Server, services *Services) *http.Server {
	return &http.Server{
		Addr:        cfg.Addr(),
		Handler:     newHandler(cfg, services),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
}

func newHandler(cfg config.Server, services *Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHeaders: []string{"*"},
	})
	r.Use(c.Handler)

	// Register session service
	sessionServicePath, sessionServiceHandler := session.NewSessionServiceHandler(services.Sessions)
	r.Mount(sessionServicePath, sessionServiceHandler)

	// Register gateway routes (WebSocket and stats)
	services.Gateway.RegisterRoutes(r)

	setupHealthCheck(r, services)
	setupWebClient(r)

	// HTTP/2 without TLS for connect clients
	return h2c.NewHandler(r, &http2.Server{})
}

func setupHealthCheck(r chi.Router, services *Services) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := services.Health.Check()
		w.Header().Set("Content-Type", "application/json")
		if !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}

func setupWebClient(r chi.Router) {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		log.Fatal().Err(err).Msg("embedded web client missing")
	}
	r.Handle("/*", http.FileServer(http.FS(sub)))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
