package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// ConcertRepository handles concert rows.
//
// Rows are effectively immutable once inserted: ingestion re-runs upsert
// an identical payload keyed on source_id, and stale shows age out of
// date-range queries rather than being deleted.
type ConcertRepository struct {
	db *sql.DB
}

// NewConcertRepository creates a new ConcertRepository with the given database connection
func NewConcertRepository(db *sql.DB) *ConcertRepository {
	return &ConcertRepository{db: db}
}

// UpsertBatch writes concert rows in chunks of [concertBatchSize], one
// transaction per chunk. Returns the number of rows written. A failing
// chunk aborts the remainder; earlier chunks stay committed.
func (r *ConcertRepository) UpsertBatch(concerts []*models.Concert) (int, error) {
	total := 0

	for start := 0; start < len(concerts); start += concertBatchSize {
		end := min(start+concertBatchSize, len(concerts))

		if err := r.upsertChunk(concerts[start:end]); err != nil {
			return total, err
		}
		total += end - start
	}

	return total, nil
}

func (r *ConcertRepository) upsertChunk(concerts []*models.Concert) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO concerts (id, source_id, city_id, artist_name, venue, date, time, ticket_url, bill, show_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			venue = excluded.venue,
			date = excluded.date,
			time = excluded.time,
			ticket_url = excluded.ticket_url,
			bill = excluded.bill,
			show_id = excluded.show_id,
			updated_at = excluded.updated_at
	`

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare concert upsert: %w", err)
	}
	defer stmt.Close()

	for _, concert := range concerts {
		if err := concert.Validate(); err != nil {
			return fmt.Errorf("validation failed for %s: %w", concert.SourceID(), err)
		}

		bill, err := json.Marshal(concert.Bill())
		if err != nil {
			return fmt.Errorf("failed to encode bill: %w", err)
		}

		id := concert.ID()
		if id == "" {
			id = shared.GenerateID()
			concert.SetID(id)
		}

		_, err = stmt.Exec(
			id,
			concert.SourceID(),
			concert.CityID(),
			concert.ArtistName(),
			concert.Venue(),
			concert.Date(),
			nullIfEmpty(concert.Time()),
			nullIfEmpty(concert.TicketURL()),
			string(bill),
			concert.ShowID(),
			concert.CreatedAt(),
			concert.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert concert %s: %w", concert.SourceID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit concert batch: %w", err)
	}

	return nil
}

// ListUpcoming retrieves a city's concert rows with date >= from.
//
// Dates are YYYY-MM-DD strings so comparisons are lexicographic.
func (r *ConcertRepository) ListUpcoming(cityID, from string) ([]*models.Concert, error) {
	query := `
		SELECT id, source_id, city_id, artist_name, venue, date, time, ticket_url, bill, show_id, created_at, updated_at
		FROM concerts
		WHERE city_id = ? AND date >= ?
		ORDER BY date, venue
	`

	rows, err := r.db.Query(query, cityID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query concerts: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListUpcomingBefore retrieves a city's concert rows in [from, before).
// The digest uses this for its 1- or 7-day lookahead window.
func (r *ConcertRepository) ListUpcomingBefore(cityID, from, before string) ([]*models.Concert, error) {
	query := `
		SELECT id, source_id, city_id, artist_name, venue, date, time, ticket_url, bill, show_id, created_at, updated_at
		FROM concerts
		WHERE city_id = ? AND date >= ? AND date < ?
		ORDER BY date, venue
	`

	rows, err := r.db.Query(query, cityID, from, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query concerts: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListMatched retrieves the concert rows matched to a user in [from, to].
// Pass an empty `to` for no upper bound (week view); the month view caps
// at six months out.
func (r *ConcertRepository) ListMatched(userID, from, to string) ([]*models.Concert, error) {
	query := `
		SELECT c.id, c.source_id, c.city_id, c.artist_name, c.venue, c.date, c.time, c.ticket_url, c.bill, c.show_id, c.created_at, c.updated_at
		FROM concerts c
		JOIN user_concert_matches m ON m.concert_id = c.id
		WHERE m.user_id = ? AND c.date >= ?
	`
	args := []any{userID, from}

	if to != "" {
		query += " AND c.date <= ?"
		args = append(args, to)
	}
	query += " ORDER BY c.date, c.venue"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matched concerts: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *ConcertRepository) collect(rows *sql.Rows) ([]*models.Concert, error) {
	var concerts []*models.Concert

	for rows.Next() {
		var (
			id         string
			sourceID   string
			cityID     string
			artistName string
			venue      string
			date       string
			showTime   sql.NullString
			ticketURL  sql.NullString
			bill       string
			showID     string
			createdAt  time.Time
			updatedAt  time.Time
		)

		err := rows.Scan(&id, &sourceID, &cityID, &artistName, &venue, &date, &showTime, &ticketURL, &bill, &showID, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan concert: %w", err)
		}

		concert := models.NewConcert(sourceID, showID, cityID, artistName, venue, date)
		concert.SetID(id)
		if showTime.Valid {
			concert.SetTime(showTime.String)
		}
		if ticketURL.Valid {
			concert.SetTicketURL(ticketURL.String)
		}

		var billNames []string
		if err := json.Unmarshal([]byte(bill), &billNames); err != nil {
			return nil, fmt.Errorf("failed to decode bill for %s: %w", sourceID, err)
		}
		concert.SetBill(billNames)

		concert.SetCreatedAt(createdAt)
		concert.SetUpdatedAt(updatedAt)

		concerts = append(concerts, concert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate concerts: %w", err)
	}

	return concerts, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
