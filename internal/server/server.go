// Package server provides the goalkeeper HTTP and websocket endpoints.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/goalkeeper/internal/app"
	"github.com/ayusman/goalkeeper/internal/capture"
	"github.com/ayusman/goalkeeper/internal/detector"
	"github.com/ayusman/goalkeeper/internal/game"
	"github.com/ayusman/goalkeeper/internal/hook"
	"github.com/ayusman/goalkeeper/internal/server/api"
	"github.com/ayusman/goalkeeper/internal/store"
)

// Game is the running game as seen by clients.
type Game interface {
	api.SettingsService
	Subscribe() (<-chan game.Frame, func())
	SubmitHands(hands []detector.HandLandmarks) uint64
	ReleaseHands(seq uint64) bool
}

// TrackingSource exposes the server-side tracker output.
type TrackingSource interface {
	LatestTracking() (app.Tracking, bool)
}

// Config holds the server configuration. Every field is optional; routes whose
// dependency is missing are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Game      Game
	Hooks     *hook.Manager
	Camera    capture.Camera
	Tracking  TrackingSource
	Scores    api.ScoreSource
}

// Server is the goalkeeper HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessions := api.NewSessionsHandler(s.config.Store, s.config.Scores)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Game != nil {
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Game))
		s.mux.Handle("/api/play", NewPlayHandler(s.config.Game))
	}

	if s.config.Hooks != nil {
		s.mux.Handle("/api/hooks", api.NewHooksHandler(s.config.Hooks))
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	if s.config.Tracking != nil {
		s.mux.Handle("/api/hands", NewHandsHandler(s.config.Tracking))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
