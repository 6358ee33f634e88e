// Spotify Web API client.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/encore/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	savedTracksPageLimit = 50
)

// SpotifyUser represents the authenticated user's profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// SpotifyArtist represents an artist credited on a track.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	URI     string          `json:"uri"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents a page of saved tracks.
type SpotifyPaginatedTracks struct {
	Items    []SpotifySavedTrack `json:"items"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
}

// SpotifyService implements [Library] against the Spotify Web API.
// Uses [oauth2] for the authorization code flow and token refresh.
type SpotifyService struct {
	config     *oauth2.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewSpotifyService creates a Spotify client from application credentials.
func NewSpotifyService(creds shared.SpotifyConfig) (*SpotifyService, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("spotify client id and secret required: %w", shared.ErrMissingCredentials)
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes: []string{
			"user-read-email",
			"user-library-read",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 1),
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token pair.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return token, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token.
// Spotify may rotate the refresh token; the rotated value is returned
// alongside the access token when present.
func (s *SpotifyService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", shared.ErrNoRefreshToken
	}

	source := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	rotated := ""
	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		rotated = token.RefreshToken
	}

	return token.AccessToken, rotated, nil
}

// doRequest performs an authenticated GET against the Spotify API. The
// endpoint is either a path under the base URL or a full pagination URL.
func (s *SpotifyService) doRequest(ctx context.Context, accessToken, endpoint string, result any) error {
	if accessToken == "" {
		return shared.ErrMissingCredentials
	}

	apiURL := endpoint
	if len(endpoint) > 0 && endpoint[0] == '/' {
		apiURL = s.baseURL + endpoint
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return shared.ErrTokenExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("spotify API error: status %d: %w", resp.StatusCode, shared.ErrUpstream)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context, accessToken string) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, accessToken, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SavedTracks retrieves one page of the user's saved tracks. When next is
// non-empty it names the full URL of the page to fetch.
func (s *SpotifyService) SavedTracks(ctx context.Context, accessToken, next string) (*SpotifyPaginatedTracks, error) {
	endpoint := next
	if endpoint == "" {
		endpoint = fmt.Sprintf("/me/tracks?limit=%d", savedTracksPageLimit)
	}

	var response SpotifyPaginatedTracks
	if err := s.doRequest(ctx, accessToken, endpoint, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// LikedArtists walks the full saved-tracks library and collects every
// credited artist name, first occurrence first. A 401 at any page surfaces
// as [shared.ErrTokenExpired]; the caller decides whether to refresh and
// start over.
func (s *SpotifyService) LikedArtists(ctx context.Context, accessToken string) ([]string, error) {
	seen := make(map[string]struct{})
	var names []string

	next := ""
	for {
		page, err := s.SavedTracks(ctx, accessToken, next)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			for _, artist := range item.Track.Artists {
				if artist.Name == "" {
					continue
				}
				if _, ok := seen[artist.Name]; ok {
					continue
				}
				seen[artist.Name] = struct{}{}
				names = append(names, artist.Name)
			}
		}

		if page.Next == nil || *page.Next == "" {
			break
		}
		next = *page.Next
	}

	return names, nil
}
