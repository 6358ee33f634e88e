package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/desertthunder/encore/internal/shared"
)

func newTestSpotify(t *testing.T, baseURL string) *SpotifyService {
	t.Helper()

	svc, err := NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/auth/callback",
	})
	if err != nil {
		t.Fatalf("failed to create spotify service: %v", err)
	}
	svc.baseURL = baseURL

	return svc
}

func savedTrack(artists ...string) SpotifySavedTrack {
	track := SpotifyTrack{ID: "t", Name: "song"}
	for _, a := range artists {
		track.Artists = append(track.Artists, SpotifyArtist{Name: a})
	}
	return SpotifySavedTrack{Track: track}
}

func TestSpotifyService(t *testing.T) {
	t.Run("Missing Credentials", func(t *testing.T) {
		if _, err := NewSpotifyService(shared.SpotifyConfig{}); err == nil {
			t.Error("expected error for empty credentials")
		}
	})

	t.Run("AuthURL Carries State", func(t *testing.T) {
		svc := newTestSpotify(t, spotifyBaseURL)
		u := svc.AuthURL("abc123")
		if u == "" {
			t.Fatal("expected auth url")
		}
		if !strings.Contains(u, "state=abc123") {
			t.Errorf("expected state in auth url, got %s", u)
		}
	})

	t.Run("LikedArtists Follows Pagination", func(t *testing.T) {
		var requests int
		pages := [][]SpotifySavedTrack{
			{savedTrack("Black Lips", "Osees")},
			{savedTrack("Osees", "Snail Mail")},
			{savedTrack("Wand")},
		}

		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer access-token" {
				t.Errorf("unexpected authorization header: %s", got)
			}

			page := 0
			if p := r.URL.Query().Get("page"); p != "" {
				page, _ = strconv.Atoi(p)
			} else if r.URL.Query().Get("limit") != "50" {
				t.Errorf("expected limit=50 on first page, got %s", r.URL.RawQuery)
			}
			requests++

			resp := SpotifyPaginatedTracks{Items: pages[page]}
			if page < len(pages)-1 {
				next := fmt.Sprintf("%s/me/tracks?page=%d", server.URL, page+1)
				resp.Next = &next
			}
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		svc := newTestSpotify(t, server.URL)
		names, err := svc.LikedArtists(context.Background(), "access-token")
		if err != nil {
			t.Fatalf("failed to collect artists: %v", err)
		}

		if requests != 3 {
			t.Errorf("expected 3 page fetches, got %d", requests)
		}
		want := []string{"Black Lips", "Osees", "Snail Mail", "Wand"}
		if len(names) != len(want) {
			t.Fatalf("expected %d names, got %d: %v", len(want), len(names), names)
		}
		for i, name := range want {
			if names[i] != name {
				t.Errorf("expected %s at %d, got %s", name, i, names[i])
			}
		}
	})

	t.Run("Unauthorized Surfaces Token Expiry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		svc := newTestSpotify(t, server.URL)
		_, err := svc.LikedArtists(context.Background(), "stale-token")
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("Server Errors Surface As Upstream", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		svc := newTestSpotify(t, server.URL)
		_, err := svc.LikedArtists(context.Background(), "access-token")
		if err == nil {
			t.Fatal("expected error for 502")
		}
	})

	t.Run("RefreshAccessToken Requires A Token", func(t *testing.T) {
		svc := newTestSpotify(t, spotifyBaseURL)
		if _, _, err := svc.RefreshAccessToken(context.Background(), ""); !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Errorf("expected ErrNoRefreshToken, got %v", err)
		}
	})
}
