// Package server provides the HTTP interface of the fingerspelling recognizer.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/fingerspell/internal/app"
	"github.com/ayusman/fingerspell/internal/server/api"
	"github.com/ayusman/fingerspell/internal/store"
)

// Recognizer is the part of the running recognizer the server exposes.
type Recognizer interface {
	Snapshot() app.Snapshot
	Send(cmd app.Command) error
	Subscribe() (<-chan app.Snapshot, func())
	LatestJPEG() []byte
}

// Config holds the server configuration.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Recognizer Recognizer
}

// Server represents the HTTP server of the recognizer.
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

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/letters", api.NewLettersHandler(s.config.Store))

	if s.config.Store != nil {
		words := api.NewWordHandler(s.config.Store)
		s.mux.Handle("/api/words", words)
		s.mux.Handle("/api/words/", words)
	}

	if r := s.config.Recognizer; r != nil {
		s.mux.Handle("/api/state", api.NewStateHandler(r))
		s.mux.Handle("/api/commands", api.NewCommandHandler(r))
		s.mux.Handle("/api/ws", NewSnapshotsHandler(r))
		s.mux.Handle("/api/stream", NewStreamHandler(r))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
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
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// HTTPServer returns an http.Server for addr so callers can shut it down.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
