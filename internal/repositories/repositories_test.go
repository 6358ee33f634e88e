package repositories

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func seedProfile(t *testing.T, db *sql.DB, id, email, cityID string) {
	t.Helper()

	repo := NewProfileRepository(db)
	profile := models.NewProfile(id, email)
	profile.SetCityID(cityID)
	if err := repo.Upsert(profile); err != nil {
		t.Fatalf("failed to seed profile %s: %v", id, err)
	}
}

func TestCityRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCityRepository(db)

	t.Run("Seeded Launch City", func(t *testing.T) {
		city, err := repo.GetByName("New York City")
		if err != nil {
			t.Fatalf("expected seeded city: %v", err)
		}
		if city.ID() == "" {
			t.Error("expected seeded city to have an id")
		}
	})

	t.Run("Unknown City", func(t *testing.T) {
		_, err := repo.GetByName("Atlantis")
		if err == nil {
			t.Fatal("expected error for unknown city")
		}
	})

	t.Run("Create", func(t *testing.T) {
		if err := repo.Create(models.NewCity("Chicago")); err != nil {
			t.Fatalf("failed to create city: %v", err)
		}
		if _, err := repo.GetByName("Chicago"); err != nil {
			t.Errorf("created city should be retrievable: %v", err)
		}
	})
}

func TestProfileRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)

	cities := NewCityRepository(db)
	nyc, err := cities.GetByName("New York City")
	if err != nil {
		t.Fatalf("failed to get seeded city: %v", err)
	}

	t.Run("Upsert And Get", func(t *testing.T) {
		profile := models.NewProfile("user-1", "fan@example.com")
		profile.SetCityID(nyc.ID())
		profile.SetSpotifyRefreshToken("refresh-1")

		if err := repo.Upsert(profile); err != nil {
			t.Fatalf("failed to upsert profile: %v", err)
		}

		got, err := repo.Get("user-1")
		if err != nil {
			t.Fatalf("failed to get profile: %v", err)
		}
		if got.Email() != "fan@example.com" {
			t.Errorf("expected email fan@example.com, got %s", got.Email())
		}
		if got.DigestPreference() != models.DigestWeekly {
			t.Errorf("expected weekly default, got %s", got.DigestPreference())
		}
	})

	t.Run("Upsert Keeps Refresh Token When Blank", func(t *testing.T) {
		again := models.NewProfile("user-1", "fan@example.com")
		if err := repo.Upsert(again); err != nil {
			t.Fatalf("failed to re-upsert profile: %v", err)
		}

		got, err := repo.Get("user-1")
		if err != nil {
			t.Fatalf("failed to get profile: %v", err)
		}
		if got.SpotifyRefreshToken() != "refresh-1" {
			t.Errorf("expected refresh token retained, got %q", got.SpotifyRefreshToken())
		}
	})

	t.Run("UpdateSettings", func(t *testing.T) {
		if err := repo.UpdateSettings("user-1", nyc.ID(), models.DigestDaily); err != nil {
			t.Fatalf("failed to update settings: %v", err)
		}

		got, err := repo.Get("user-1")
		if err != nil {
			t.Fatalf("failed to get profile: %v", err)
		}
		if got.DigestPreference() != models.DigestDaily {
			t.Errorf("expected daily, got %s", got.DigestPreference())
		}
		if got.CityID() != nyc.ID() {
			t.Errorf("expected city %s, got %s", nyc.ID(), got.CityID())
		}
	})

	t.Run("SetDigestPreference Rejects Unknown Values", func(t *testing.T) {
		if err := repo.SetDigestPreference("user-1", "hourly"); err == nil {
			t.Error("expected error for unknown preference")
		}
	})

	t.Run("ListByDigestPreference", func(t *testing.T) {
		seedProfile(t, db, "user-2", "two@example.com", nyc.ID())

		daily, err := repo.ListByDigestPreference(models.DigestDaily)
		if err != nil {
			t.Fatalf("failed to list profiles: %v", err)
		}
		if len(daily) != 1 || daily[0].ID() != "user-1" {
			t.Errorf("expected only user-1 on daily, got %d profiles", len(daily))
		}
	})

	t.Run("Unknown Profile", func(t *testing.T) {
		if err := repo.SetDigestPreference("ghost", models.DigestNone); err == nil {
			t.Error("expected error for unknown profile")
		}
	})
}

func TestArtistRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewArtistRepository(db)

	cities := NewCityRepository(db)
	nyc, _ := cities.GetByName("New York City")
	seedProfile(t, db, "user-1", "fan@example.com", nyc.ID())

	t.Run("UpsertNames Deduplicates Globally", func(t *testing.T) {
		first, err := repo.UpsertNames([]string{"black lips", "osees"})
		if err != nil {
			t.Fatalf("failed to upsert artists: %v", err)
		}
		if len(first) != 2 {
			t.Fatalf("expected 2 ids, got %d", len(first))
		}

		second, err := repo.UpsertNames([]string{"black lips"})
		if err != nil {
			t.Fatalf("failed to re-upsert artist: %v", err)
		}
		if len(second) != 1 {
			t.Fatalf("expected 1 id, got %d", len(second))
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM artists").Scan(&count); err != nil {
			t.Fatalf("failed to count artists: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 artist rows, got %d", count)
		}
	})

	t.Run("Distinct Casing Stays Distinct", func(t *testing.T) {
		// Identity is the exact stored name; normalization happens upstream.
		if _, err := repo.UpsertNames([]string{"Black Lips"}); err != nil {
			t.Fatalf("failed to upsert cased variant: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM artists WHERE name LIKE '%lips'").Scan(&count); err != nil {
			t.Fatalf("failed to count variants: %v", err)
		}
		if count != 2 {
			t.Errorf("expected cased variants to coexist, got %d rows", count)
		}
	})

	t.Run("LinkUser Is Idempotent", func(t *testing.T) {
		ids, err := repo.UpsertNames([]string{"black lips", "osees"})
		if err != nil {
			t.Fatalf("failed to upsert artists: %v", err)
		}

		if err := repo.LinkUser("user-1", ids); err != nil {
			t.Fatalf("failed to link artists: %v", err)
		}
		if err := repo.LinkUser("user-1", ids); err != nil {
			t.Fatalf("re-linking should be a no-op: %v", err)
		}

		count, err := repo.CountForUser("user-1")
		if err != nil {
			t.Fatalf("failed to count user artists: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 link edges, got %d", count)
		}
	})

	t.Run("UserArtistNames Pages Through The Library", func(t *testing.T) {
		paged := NewArtistRepository(db)
		paged.pageSize = 2

		ids, err := repo.UpsertNames([]string{"a", "b", "c", "d", "e"})
		if err != nil {
			t.Fatalf("failed to upsert artists: %v", err)
		}
		if err := repo.LinkUser("user-1", ids); err != nil {
			t.Fatalf("failed to link artists: %v", err)
		}

		names, err := paged.UserArtistNames("user-1")
		if err != nil {
			t.Fatalf("failed to page user artists: %v", err)
		}
		if len(names) != 7 {
			t.Errorf("expected 7 distinct names, got %d", len(names))
		}
		if _, ok := names["osees"]; !ok {
			t.Error("expected osees in the accumulated set")
		}
	})
}

func TestConcertRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConcertRepository(db)

	cities := NewCityRepository(db)
	nyc, _ := cities.GetByName("New York City")

	newRow := func(sourceID, showID, artist, date string) *models.Concert {
		c := models.NewConcert(sourceID, showID, nyc.ID(), artist, "The Bowery", date)
		c.SetBill([]string{"Black Lips", "Osees"})
		c.SetTime("07:00 PM")
		return c
	}

	t.Run("UpsertBatch Is Idempotent", func(t *testing.T) {
		rows := []*models.Concert{
			newRow("omr:blacklips:thebowery:2025-05-01", "omr:thebowery:2025-05-01", "black lips", "2025-05-01"),
			newRow("omr:osees:thebowery:2025-05-01", "omr:thebowery:2025-05-01", "osees", "2025-05-01"),
		}

		written, err := repo.UpsertBatch(rows)
		if err != nil {
			t.Fatalf("failed to upsert concerts: %v", err)
		}
		if written != 2 {
			t.Errorf("expected 2 rows written, got %d", written)
		}

		// Ingesting the same scrape twice must not duplicate rows.
		rerun := []*models.Concert{
			newRow("omr:blacklips:thebowery:2025-05-01", "omr:thebowery:2025-05-01", "black lips", "2025-05-01"),
			newRow("omr:osees:thebowery:2025-05-01", "omr:thebowery:2025-05-01", "osees", "2025-05-01"),
		}
		if _, err := repo.UpsertBatch(rerun); err != nil {
			t.Fatalf("failed to re-upsert concerts: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM concerts").Scan(&count); err != nil {
			t.Fatalf("failed to count concerts: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 stored rows after double ingest, got %d", count)
		}
	})

	t.Run("ListUpcoming Filters By Date", func(t *testing.T) {
		past := []*models.Concert{
			newRow("omr:oldband:thebowery:2024-01-01", "omr:thebowery:2024-01-01", "oldband", "2024-01-01"),
		}
		if _, err := repo.UpsertBatch(past); err != nil {
			t.Fatalf("failed to upsert past concert: %v", err)
		}

		upcoming, err := repo.ListUpcoming(nyc.ID(), "2025-05-01")
		if err != nil {
			t.Fatalf("failed to list upcoming: %v", err)
		}
		if len(upcoming) != 2 {
			t.Errorf("expected 2 upcoming rows, got %d", len(upcoming))
		}
		for _, c := range upcoming {
			if c.Date() < "2025-05-01" {
				t.Errorf("row %s predates the range", c.SourceID())
			}
			if got := c.Bill(); len(got) != 2 {
				t.Errorf("expected decoded bill of 2, got %v", got)
			}
		}
	})

	t.Run("ListUpcomingBefore Bounds The Window", func(t *testing.T) {
		rows, err := repo.ListUpcomingBefore(nyc.ID(), "2025-05-01", "2025-05-02")
		if err != nil {
			t.Fatalf("failed to list window: %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("expected 2 rows inside window, got %d", len(rows))
		}

		empty, err := repo.ListUpcomingBefore(nyc.ID(), "2025-06-01", "2025-06-08")
		if err != nil {
			t.Fatalf("failed to list empty window: %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("expected empty window, got %d rows", len(empty))
		}
	})
}

func TestMatchRepository(t *testing.T) {
	db := setupTestDB(t)
	matches := NewMatchRepository(db)
	concerts := NewConcertRepository(db)

	cities := NewCityRepository(db)
	nyc, _ := cities.GetByName("New York City")
	seedProfile(t, db, "user-1", "fan@example.com", nyc.ID())

	row := models.NewConcert("omr:blacklips:thebowery:2025-05-01", "omr:thebowery:2025-05-01", nyc.ID(), "black lips", "The Bowery", "2025-05-01")
	if _, err := concerts.UpsertBatch([]*models.Concert{row}); err != nil {
		t.Fatalf("failed to seed concert: %v", err)
	}

	t.Run("UpsertEdges Is Idempotent", func(t *testing.T) {
		n, err := matches.UpsertEdges("user-1", []string{row.ID()})
		if err != nil {
			t.Fatalf("failed to upsert edges: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 edge submitted, got %d", n)
		}

		if _, err := matches.UpsertEdges("user-1", []string{row.ID()}); err != nil {
			t.Fatalf("re-upserting edges should be a no-op: %v", err)
		}

		count, err := matches.CountForUser("user-1")
		if err != nil {
			t.Fatalf("failed to count matches: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 stored edge, got %d", count)
		}
	})

	t.Run("Matched Rows Join Back To Concerts", func(t *testing.T) {
		rows, err := concerts.ListMatched("user-1", "2025-05-01", "")
		if err != nil {
			t.Fatalf("failed to list matched: %v", err)
		}
		if len(rows) != 1 || rows[0].ArtistName() != "black lips" {
			t.Errorf("unexpected matched rows: %d", len(rows))
		}
	})
}
