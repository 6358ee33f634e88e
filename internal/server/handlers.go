package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIngest runs the scrape-and-store stage. Scrape failures are the
// upstream's fault and map to 502; storage failures map to 500.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Ingest(r.Context())
	if err != nil {
		if errors.Is(err, shared.ErrScrapeFailed) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		s.logger.Error("ingest failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ingest failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	count, err := s.engine.MatchAll(r.Context())
	if err != nil {
		s.logger.Error("matching failed", "error", err)
		writeError(w, http.StatusInternalServerError, "matching failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = models.DigestWeekly
	}
	if mode != models.DigestDaily && mode != models.DigestWeekly {
		writeError(w, http.StatusBadRequest, "mode must be daily or weekly")
		return
	}

	result, err := s.engine.SendDigests(r.Context(), mode)
	if err != nil {
		s.logger.Error("digest run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "digest run failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSync pulls the caller's liked artists using the access token
// carried in the session.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r)
	if claims.SpotifyToken == "" {
		writeError(w, http.StatusUnauthorized, "no_spotify_token")
		return
	}

	result, err := s.engine.SyncUser(r.Context(), claims.UserID, claims.SpotifyToken)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrTokenExpired):
			writeError(w, http.StatusUnauthorized, "spotify_token_expired")
		case errors.Is(err, shared.ErrUpstream):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			s.logger.Error("sync failed", "user", claims.UserID, "error", err)
			writeError(w, http.StatusInternalServerError, "sync failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWeeklyShows(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r)

	shows, err := s.engine.WeeklyShows(r.Context(), claims.UserID)
	if err != nil {
		s.logger.Error("failed to load weekly shows", "user", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load shows")
		return
	}
	if shows == nil {
		shows = []models.DigestShow{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"shows": shows})
}

func (s *Server) handleMonthlyShows(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r)

	byDate, err := s.engine.MonthlyShows(r.Context(), claims.UserID)
	if err != nil {
		s.logger.Error("failed to load monthly shows", "user", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load shows")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"shows_by_date": byDate})
}

type profileResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	CityID           string `json:"city_id"`
	DigestPreference string `json:"digest_preference"`
}

func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r)

	profile, err := s.profiles.Get(claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		s.logger.Error("failed to load profile", "user", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:               profile.ID(),
		Email:            profile.Email(),
		CityID:           profile.CityID(),
		DigestPreference: profile.DigestPreference(),
	})
}

type profileUpdateRequest struct {
	CityID           string `json:"city_id"`
	DigestPreference string `json:"digest_preference"`
}

func (s *Server) handleProfilePut(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r)

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DigestPreference != "" && !validPreference(req.DigestPreference) {
		writeError(w, http.StatusBadRequest, "digest_preference must be daily, weekly, or none")
		return
	}

	if err := s.profiles.UpdateSettings(claims.UserID, req.CityID, req.DigestPreference); err != nil {
		if errors.Is(err, shared.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		s.logger.Error("failed to update profile", "user", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	s.handleProfileGet(w, r)
}

// handleUnsubscribe is reachable from the email footer, so it
// authenticates by user id rather than session.
func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		writeError(w, http.StatusBadRequest, "uid required")
		return
	}

	preference := r.URL.Query().Get("preference")
	if preference == "" {
		preference = models.DigestNone
	}
	if !validPreference(preference) {
		writeError(w, http.StatusBadRequest, "preference must be daily, weekly, or none")
		return
	}

	if err := s.profiles.SetDigestPreference(uid, preference); err != nil {
		if errors.Is(err, shared.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		s.logger.Error("failed to update preference", "user", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update preference")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"preference": preference})
}

func validPreference(pref string) bool {
	switch pref {
	case models.DigestDaily, models.DigestWeekly, models.DigestNone:
		return true
	}
	return false
}
