// package services defines interfaces for the outside world: the
// Spotify Web API, the concert listings site, and the mail provider.
package services

import (
	"context"

	"github.com/desertthunder/encore/internal/models"
)

// Library exposes a user's streaming library as a set of artist names.
type Library interface {
	// LikedArtists collects the display names of every artist appearing on
	// the user's saved tracks. Names are returned raw, before normalization.
	LikedArtists(ctx context.Context, accessToken string) ([]string, error)

	// RefreshAccessToken exchanges a refresh token for a new access token.
	// Some providers rotate the refresh token; when they do, the second
	// return value carries the replacement.
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, string, error)
}

// Scraper fetches and parses the upstream concert listings.
type Scraper interface {
	Scrape(ctx context.Context) ([]models.RawShow, error)
}

// Mailer delivers a single rendered email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}
