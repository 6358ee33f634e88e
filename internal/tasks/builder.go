package tasks

import (
	"fmt"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

const (
	artistKeyLimit = 40
	venueKeyLimit  = 30
)

// BuildConcertRows expands scraped shows into one concert row per performer.
// Row identity is deterministic: the same artist, venue, and date always
// produce the same source id, so repeated ingestion runs upsert in place.
// The first occurrence of a source id wins; later duplicates on the same
// page are dropped.
func BuildConcertRows(shows []models.RawShow, cityID string) []*models.Concert {
	seen := make(map[string]struct{})
	var rows []*models.Concert

	for _, show := range shows {
		venuePart := shared.SanitizeKeyPart(show.Venue, venueKeyLimit)
		showID := fmt.Sprintf("omr:%s:%s", venuePart, show.Date)

		for _, rawArtist := range show.Artists {
			artistName := shared.NormalizeArtistName(rawArtist)
			if artistName == "" {
				continue
			}

			artistPart := shared.SanitizeKeyPart(artistName, artistKeyLimit)
			sourceID := fmt.Sprintf("omr:%s:%s:%s", artistPart, venuePart, show.Date)
			if _, ok := seen[sourceID]; ok {
				continue
			}
			seen[sourceID] = struct{}{}

			row := models.NewConcert(sourceID, showID, cityID, artistName, show.Venue, show.Date)
			row.SetTime(show.Time)
			row.SetTicketURL(show.ShowURL)
			row.SetBill(show.Artists)
			rows = append(rows, row)
		}
	}

	return rows
}
