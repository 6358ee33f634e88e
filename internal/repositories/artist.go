package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/shared"
)

// ArtistRepository handles artist rows and the user_artists link table.
//
// Artists are deduplicated globally by exact stored name; sync is additive,
// so neither artists nor link edges are ever deleted here.
type ArtistRepository struct {
	db       *sql.DB
	pageSize int
}

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db, pageSize: userArtistPageSize}
}

// UpsertNames inserts any names not yet stored and returns the ids of
// every given name. Conflicting inserts are no-ops, so two users syncing
// the same artist share one row.
func (r *ArtistRepository) UpsertNames(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO artists (id, name, created_at) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare artist insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, name := range names {
		if _, err := stmt.Exec(shared.GenerateID(), name, now); err != nil {
			return nil, fmt.Errorf("failed to upsert artist %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit artist upserts: %w", err)
	}

	return r.idsByName(names)
}

// idsByName resolves stored ids for the given exact names.
func (r *ArtistRepository) idsByName(names []string) ([]string, error) {
	var ids []string

	for start := 0; start < len(names); start += concertBatchSize {
		end := min(start+concertBatchSize, len(names))
		chunk := names[start:end]

		args := make([]any, len(chunk))
		for i, name := range chunk {
			args[i] = name
		}

		query := fmt.Sprintf("SELECT id FROM artists WHERE name IN (%s)", placeholders(len(chunk)))
		rows, err := r.db.Query(query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query artist ids: %w", err)
		}

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan artist id: %w", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to iterate artist ids: %w", err)
		}
		rows.Close()
	}

	return ids, nil
}

// LinkUser upserts (user, artist) edges, ignoring conflicts so re-syncs
// are idempotent.
func (r *ArtistRepository) LinkUser(userID string, artistIDs []string) error {
	if len(artistIDs) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO user_artists (user_id, artist_id, created_at) VALUES (?, ?, ?) ON CONFLICT(user_id, artist_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, artistID := range artistIDs {
		if _, err := stmt.Exec(userID, artistID, now); err != nil {
			return fmt.Errorf("failed to link artist %s: %w", artistID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit artist links: %w", err)
	}

	return nil
}

// UserArtistNames pages through a user's library edges and returns the
// set of stored artist names. The accumulator is scoped to this call;
// nothing is cached between invocations.
func (r *ArtistRepository) UserArtistNames(userID string) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	offset := 0

	for {
		query := `
			SELECT a.name
			FROM user_artists ua
			JOIN artists a ON a.id = ua.artist_id
			WHERE ua.user_id = ?
			ORDER BY a.name
			LIMIT ? OFFSET ?
		`

		rows, err := r.db.Query(query, userID, r.pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to query user artists: %w", err)
		}

		pageCount := 0
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan artist name: %w", err)
			}
			names[name] = struct{}{}
			pageCount++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to iterate user artists: %w", err)
		}
		rows.Close()

		if pageCount < r.pageSize {
			break
		}
		offset += r.pageSize
	}

	return names, nil
}

// CountForUser reports how many artists a user's library has synced.
// The dashboard uses a zero count to prompt a first sync.
func (r *ArtistRepository) CountForUser(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM user_artists WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user artists: %w", err)
	}
	return count, nil
}
