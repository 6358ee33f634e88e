package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// DigestResult summarizes one digest run.
type DigestResult struct {
	Sent       int    `json:"sent"`
	Skipped    int    `json:"skipped"`
	Mode       string `json:"mode"`
	WindowDays int    `json:"window_days"`
}

const (
	dailySubject  = "Tonight in your city"
	weeklySubject = "Your shows this week"
)

// SendDigests emails every subscriber of the given mode their matched shows
// inside the window: one day for daily, seven for weekly. Users with
// nothing to say are skipped, as are individual delivery failures.
func (e *Engine) SendDigests(ctx context.Context, mode string) (*DigestResult, error) {
	windowDays := 7
	subject := weeklySubject
	if mode == models.DigestDaily {
		windowDays = 1
		subject = dailySubject
	}

	result := &DigestResult{Mode: mode, WindowDays: windowDays}

	profiles, err := e.profiles.ListByDigestPreference(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}

	from := e.today()
	before := shared.DateOnly(e.now().AddDate(0, 0, windowDays))

	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		shows, err := e.digestShows(profile, from, before)
		if err != nil {
			e.logger.Warn("skipping digest", "user", profile.ID(), "error", err)
			result.Skipped++
			continue
		}
		if len(shows) == 0 {
			result.Skipped++
			continue
		}

		unsubscribeURL := fmt.Sprintf("%s%s?uid=%s", e.config.Server.AppURL, e.config.Digest.UnsubscribePath, profile.ID())
		html := formatter.RenderDigestHTML(shows, unsubscribeURL)
		text := formatter.RenderDigestText(shows)

		if err := e.mailer.Send(ctx, profile.Email(), subject, html, text); err != nil {
			e.logger.Error("failed to send digest", "user", profile.ID(), "error", err)
			result.Skipped++
			continue
		}
		result.Sent++
	}

	return result, nil
}

// digestShows assembles the user's matched shows inside the window. The
// match filter runs in memory against the full upcoming window so a stale
// match table cannot produce phantom highlights.
func (e *Engine) digestShows(profile *models.Profile, from, before string) ([]models.DigestShow, error) {
	if profile.Email() == "" || profile.CityID() == "" {
		return nil, nil
	}

	artistSet, err := e.artists.UserArtistNames(profile.ID())
	if err != nil {
		return nil, err
	}
	if len(artistSet) == 0 {
		return nil, nil
	}

	concerts, err := e.concerts.ListUpcomingBefore(profile.CityID(), from, before)
	if err != nil {
		return nil, err
	}

	var matched []*models.Concert
	for _, concert := range concerts {
		if _, ok := artistSet[concert.ArtistName()]; ok {
			matched = append(matched, concert)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	return formatter.GroupShows(matched), nil
}
