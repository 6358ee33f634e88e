package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// MatchRepository handles the user_concert_matches link table.
//
// Matches are never revoked: if a user's library or city changes, stale
// edges simply stop appearing in date-scoped reads.
type MatchRepository struct {
	db *sql.DB
}

// NewMatchRepository creates a new MatchRepository with the given database connection
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// UpsertEdges records (user, concert) matches, ignoring conflicts.
// Returns the number of edges submitted, matching the batch-recompute
// contract: re-running match counts existing edges again rather than
// diffing.
func (r *MatchRepository) UpsertEdges(userID string, concertIDs []string) (int, error) {
	if len(concertIDs) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO user_concert_matches (user_id, concert_id, created_at) VALUES (?, ?, ?) ON CONFLICT(user_id, concert_id) DO NOTHING")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, concertID := range concertIDs {
		if _, err := stmt.Exec(userID, concertID, now); err != nil {
			return 0, fmt.Errorf("failed to upsert match for concert %s: %w", concertID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit match edges: %w", err)
	}

	return len(concertIDs), nil
}

// CountForUser reports how many match edges exist for a user.
func (r *MatchRepository) CountForUser(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM user_concert_matches WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}
