package models

import (
	"fmt"
	"time"
)

// Digest frequency preferences.
const (
	DigestDaily  = "daily"
	DigestWeekly = "weekly"
	DigestNone   = "none"
)

// Profile is one authenticated user: chosen city, digest preference, and
// the long-lived Spotify refresh credential captured at connect time.
// The profile id is the identity provider's user id.
type Profile struct {
	id                  string
	email               string
	cityID              string
	digestPreference    string
	spotifyRefreshToken string
	createdAt           time.Time
	updatedAt           time.Time
}

// NewProfile creates a Profile for the given identity-provider user id.
func NewProfile(id, email string) *Profile {
	now := time.Now()
	return &Profile{
		id:               id,
		email:            email,
		digestPreference: DigestWeekly,
		createdAt:        now,
		updatedAt:        now,
	}
}

func (p *Profile) ID() string { return p.id }

func (p *Profile) Email() string { return p.email }

func (p *Profile) CityID() string { return p.cityID }

func (p *Profile) DigestPreference() string { return p.digestPreference }

func (p *Profile) SpotifyRefreshToken() string { return p.spotifyRefreshToken }

func (p *Profile) CreatedAt() time.Time { return p.createdAt }

func (p *Profile) UpdatedAt() time.Time { return p.updatedAt }

func (p *Profile) SetEmail(email string)           { p.email = email }
func (p *Profile) SetCityID(cityID string)         { p.cityID = cityID }
func (p *Profile) SetSpotifyRefreshToken(t string) { p.spotifyRefreshToken = t }
func (p *Profile) SetCreatedAt(t time.Time)        { p.createdAt = t }
func (p *Profile) SetUpdatedAt(t time.Time)        { p.updatedAt = t }

// SetDigestPreference sets the digest frequency, rejecting unknown values.
func (p *Profile) SetDigestPreference(pref string) error {
	switch pref {
	case DigestDaily, DigestWeekly, DigestNone:
		p.digestPreference = pref
		return nil
	default:
		return fmt.Errorf("invalid digest preference %q", pref)
	}
}

// Validate checks required fields and the digest preference value.
func (p *Profile) Validate() error {
	if p.id == "" {
		return fmt.Errorf("profile id is required")
	}
	switch p.digestPreference {
	case DigestDaily, DigestWeekly, DigestNone:
	default:
		return fmt.Errorf("invalid digest preference %q", p.digestPreference)
	}
	return nil
}
