package server

import (
	"net/http"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

const stateCookie = "encore_oauth_state"

// handleLogin starts the authorization code flow. The state token rides a
// short-lived cookie for the callback to check.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := shared.GenerateID()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.spotify.AuthURL(state), http.StatusFound)
}

// handleCallback finishes the flow: exchanges the code, upserts the
// profile with the refresh token, and issues a session cookie.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("error") != "" || query.Get("code") == "" {
		http.Redirect(w, r, s.config.Server.AppURL+"/?error=auth_failed", http.StatusFound)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		writeError(w, http.StatusBadRequest, "invalid state parameter")
		return
	}

	token, err := s.spotify.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		s.logger.Error("token exchange failed", "error", err)
		http.Redirect(w, r, s.config.Server.AppURL+"/?error=auth_failed", http.StatusFound)
		return
	}

	user, err := s.spotify.UserProfile(r.Context(), token.AccessToken)
	if err != nil {
		s.logger.Error("failed to load spotify profile", "error", err)
		http.Redirect(w, r, s.config.Server.AppURL+"/?error=auth_failed", http.StatusFound)
		return
	}

	profile := models.NewProfile(user.ID, user.Email)
	profile.SetSpotifyRefreshToken(token.RefreshToken)
	if city, err := s.cities.GetByName(s.config.Scraper.City); err == nil {
		profile.SetCityID(city.ID())
	}
	if err := s.profiles.Upsert(profile); err != nil {
		s.logger.Error("failed to store profile", "user", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store profile")
		return
	}

	sessionToken, err := s.session.Generate(user.ID, token.AccessToken)
	if err != nil {
		s.logger.Error("failed to issue session", "user", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionToken,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1})

	http.Redirect(w, r, s.config.Server.AppURL+"/weekly", http.StatusFound)
}
