package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// ProfileRepository handles persistence for [models.Profile].
//
// Profile ids come from the identity provider, so Upsert keys on the id
// itself rather than generating one.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository with the given database connection
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert inserts the profile or refreshes its email and refresh token on
// conflict. Called at OAuth connect time, so repeated logins are no-ops
// apart from credential rotation.
func (r *ProfileRepository) Upsert(profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO profiles (id, email, city_id, digest_preference, spotify_refresh_token, created_at, updated_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			spotify_refresh_token = CASE WHEN excluded.spotify_refresh_token != '' THEN excluded.spotify_refresh_token ELSE profiles.spotify_refresh_token END,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		profile.ID(),
		profile.Email(),
		profile.CityID(),
		profile.DigestPreference(),
		profile.SpotifyRefreshToken(),
		profile.CreatedAt(),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

// Get retrieves a profile by ID.
func (r *ProfileRepository) Get(id string) (*models.Profile, error) {
	query := `
		SELECT id, email, city_id, digest_preference, spotify_refresh_token, created_at, updated_at
		FROM profiles
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// List retrieves every profile. The match engine walks this set per run.
func (r *ProfileRepository) List() ([]*models.Profile, error) {
	query := `
		SELECT id, email, city_id, digest_preference, spotify_refresh_token, created_at, updated_at
		FROM profiles
		ORDER BY created_at
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListByDigestPreference retrieves profiles subscribed to the given
// digest frequency.
func (r *ProfileRepository) ListByDigestPreference(pref string) ([]*models.Profile, error) {
	query := `
		SELECT id, email, city_id, digest_preference, spotify_refresh_token, created_at, updated_at
		FROM profiles
		WHERE digest_preference = ?
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, pref)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// UpdateSettings sets the profile's city and digest preference. Empty
// values leave the stored field untouched.
func (r *ProfileRepository) UpdateSettings(id, cityID, digestPreference string) error {
	if digestPreference != "" {
		probe := models.NewProfile(id, "")
		if err := probe.SetDigestPreference(digestPreference); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	result, err := r.db.Exec(
		`UPDATE profiles
		 SET city_id = COALESCE(NULLIF(?, ''), city_id),
		     digest_preference = COALESCE(NULLIF(?, ''), digest_preference),
		     updated_at = ?
		 WHERE id = ?`,
		cityID, digestPreference, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", shared.ErrProfileNotFound, id)
	}

	return nil
}

// SetDigestPreference updates only the digest frequency. Used by the
// uid-keyed unsubscribe flow.
func (r *ProfileRepository) SetDigestPreference(id, pref string) error {
	probe := models.NewProfile(id, "")
	if err := probe.SetDigestPreference(pref); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result, err := r.db.Exec(
		"UPDATE profiles SET digest_preference = ?, updated_at = ? WHERE id = ?",
		pref, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update digest preference: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", shared.ErrProfileNotFound, id)
	}

	return nil
}

// SetSpotifyRefreshToken rotates the stored refresh credential.
func (r *ProfileRepository) SetSpotifyRefreshToken(id, token string) error {
	_, err := r.db.Exec(
		"UPDATE profiles SET spotify_refresh_token = ?, updated_at = ? WHERE id = ?",
		token, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	return nil
}

func (r *ProfileRepository) scanOne(row *sql.Row) (*models.Profile, error) {
	var (
		id           string
		email        string
		cityID       sql.NullString
		digestPref   string
		refreshToken string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(&id, &email, &cityID, &digestPref, &refreshToken, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	profile := models.NewProfile(id, email)
	if cityID.Valid {
		profile.SetCityID(cityID.String)
	}
	if err := profile.SetDigestPreference(digestPref); err != nil {
		return nil, fmt.Errorf("stored profile invalid: %w", err)
	}
	profile.SetSpotifyRefreshToken(refreshToken)
	profile.SetCreatedAt(createdAt)
	profile.SetUpdatedAt(updatedAt)

	return profile, nil
}

func (r *ProfileRepository) collect(rows *sql.Rows) ([]*models.Profile, error) {
	var profiles []*models.Profile

	for rows.Next() {
		var (
			id           string
			email        string
			cityID       sql.NullString
			digestPref   string
			refreshToken string
			createdAt    time.Time
			updatedAt    time.Time
		)

		if err := rows.Scan(&id, &email, &cityID, &digestPref, &refreshToken, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}

		profile := models.NewProfile(id, email)
		if cityID.Valid {
			profile.SetCityID(cityID.String)
		}
		if err := profile.SetDigestPreference(digestPref); err != nil {
			return nil, fmt.Errorf("stored profile invalid: %w", err)
		}
		profile.SetSpotifyRefreshToken(refreshToken)
		profile.SetCreatedAt(createdAt)
		profile.SetUpdatedAt(updatedAt)

		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}

	return profiles, nil
}
