// package server contains the HTTP surface: cron endpoints for the
// pipeline stages, session-scoped endpoints for the dashboard, and the
// Spotify OAuth flow.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/tasks"
)

// Server owns the router and the dependencies the handlers close over.
type Server struct {
	engine   *tasks.Engine
	profiles *repositories.ProfileRepository
	cities   *repositories.CityRepository
	spotify  *services.SpotifyService
	session  *Session
	config   *shared.Config
	logger   *log.Logger

	httpServer *http.Server
}

// Opts carries the dependencies for [New].
type Opts struct {
	Engine   *tasks.Engine
	Profiles *repositories.ProfileRepository
	Cities   *repositories.CityRepository
	Spotify  *services.SpotifyService
	Config   *shared.Config
	Logger   *log.Logger
}

// New creates a server and builds its route table.
func New(opts Opts) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &Server{
		engine:   opts.Engine,
		profiles: opts.Profiles,
		cities:   opts.Cities,
		spotify:  opts.Spotify,
		session:  NewSession(opts.Config.Server.SessionSecret, 24*time.Hour),
		config:   opts.Config,
		logger:   logger,
	}

	addr := fmt.Sprintf("%s:%d", opts.Config.Server.Host, opts.Config.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
