package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/models"
)

// MatchAll recomputes matches for every profile. Users without a city or
// with an empty library are skipped. Returns the number of match edges
// submitted across all users.
func (e *Engine) MatchAll(ctx context.Context) (int, error) {
	profiles, err := e.profiles.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	total := 0
	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		count, err := e.matchProfile(profile)
		if err != nil {
			return total, err
		}
		total += count
	}

	return total, nil
}

// MatchUser recomputes matches for one profile.
func (e *Engine) MatchUser(ctx context.Context, userID string) (int, error) {
	profile, err := e.profiles.Get(userID)
	if err != nil {
		return 0, err
	}
	return e.matchProfile(profile)
}

// matchProfile matches a user's artist set against upcoming concerts in
// their city. Concert rows store normalized artist names, so membership is
// an exact lookup.
func (e *Engine) matchProfile(profile *models.Profile) (int, error) {
	if profile.CityID() == "" {
		return 0, nil
	}

	artistSet, err := e.artists.UserArtistNames(profile.ID())
	if err != nil {
		return 0, fmt.Errorf("failed to load artists for %s: %w", profile.ID(), err)
	}
	if len(artistSet) == 0 {
		return 0, nil
	}

	upcoming, err := e.concerts.ListUpcoming(profile.CityID(), e.today())
	if err != nil {
		return 0, fmt.Errorf("failed to list upcoming concerts: %w", err)
	}

	var matched []string
	for _, concert := range upcoming {
		if _, ok := artistSet[concert.ArtistName()]; ok {
			matched = append(matched, concert.ID())
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}

	count, err := e.matches.UpsertEdges(profile.ID(), matched)
	if err != nil {
		return 0, fmt.Errorf("failed to store matches for %s: %w", profile.ID(), err)
	}

	return count, nil
}
