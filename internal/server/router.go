package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/health", s.handleHealth)

	r.Get("/auth/login", s.handleLogin)
	r.Get("/auth/callback", s.handleCallback)

	// Pipeline endpoints, driven by the cron scheduler.
	r.Group(func(r chi.Router) {
		r.Use(s.cronAuth)
		r.Post("/api/ingest", s.handleIngest)
		r.Post("/api/match", s.handleMatch)
		r.Post("/api/digest", s.handleDigest)
	})

	// Dashboard endpoints, scoped to the session user.
	r.Group(func(r chi.Router) {
		r.Use(s.sessionAuth)
		r.Post("/api/sync", s.handleSync)
		r.Get("/api/shows/weekly", s.handleWeeklyShows)
		r.Get("/api/shows/monthly", s.handleMonthlyShows)
		r.Get("/api/profile", s.handleProfileGet)
		r.Put("/api/profile", s.handleProfilePut)
	})

	// Reached from the email footer, keyed by uid.
	r.Post("/api/unsubscribe", s.handleUnsubscribe)

	return r
}
