package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/encore/internal/shared"
)

// SyncResult summarizes one library sync.
type SyncResult struct {
	Artists int `json:"count"`
	Matches int `json:"matches"`
}

// SyncUser pulls the user's liked-track artists, stores the normalized set,
// and recomputes the user's matches. When the access token is missing or
// expired the refresh token is exchanged exactly once and the fetch restarts
// from the first page; a second rejection surfaces as
// [shared.ErrTokenExpired].
func (e *Engine) SyncUser(ctx context.Context, userID, accessToken string) (*SyncResult, error) {
	var names []string
	var err error

	if accessToken == "" {
		names, err = e.retryWithRefresh(ctx, userID)
	} else {
		names, err = e.library.LikedArtists(ctx, accessToken)
		if errors.Is(err, shared.ErrTokenExpired) {
			names, err = e.retryWithRefresh(ctx, userID)
		}
	}
	if err != nil {
		return nil, err
	}

	normalized := normalizeArtistSet(names)
	result := &SyncResult{Artists: len(normalized)}
	if len(normalized) == 0 {
		return result, nil
	}

	ids, err := e.artists.UpsertNames(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to store artists: %w", err)
	}
	if err := e.artists.LinkUser(userID, ids); err != nil {
		return nil, fmt.Errorf("failed to link artists: %w", err)
	}

	// Matching failures are non-fatal: the sync itself succeeded and the
	// next match tick will pick the new artists up.
	matches, err := e.MatchUser(ctx, userID)
	if err != nil {
		e.logger.Warn("post-sync matching failed", "user", userID, "error", err)
	} else {
		result.Matches = matches
	}

	return result, nil
}

func (e *Engine) retryWithRefresh(ctx context.Context, userID string) ([]string, error) {
	profile, err := e.profiles.Get(userID)
	if err != nil {
		return nil, err
	}

	refreshToken := profile.SpotifyRefreshToken()
	if refreshToken == "" {
		return nil, shared.ErrTokenExpired
	}

	accessToken, rotated, err := e.library.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		return nil, shared.ErrTokenExpired
	}

	if rotated != "" {
		if err := e.profiles.SetSpotifyRefreshToken(userID, rotated); err != nil {
			e.logger.Warn("failed to store rotated refresh token", "user", userID, "error", err)
		}
	}

	names, err := e.library.LikedArtists(ctx, accessToken)
	if errors.Is(err, shared.ErrTokenExpired) {
		return nil, shared.ErrTokenExpired
	}
	return names, err
}

// normalizeArtistSet normalizes raw display names and drops duplicates and
// empties, preserving first-occurrence order.
func normalizeArtistSet(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string

	for _, raw := range names {
		name := shared.NormalizeArtistName(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	return out
}
