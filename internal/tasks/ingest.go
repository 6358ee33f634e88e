package tasks

import (
	"context"
	"fmt"
)

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Shows    int `json:"shows"`
	Concerts int `json:"concerts"`
	Matches  int `json:"matches"`
}

// Ingest scrapes the listings, upserts the expanded concert rows, and
// recomputes matches so new shows surface without waiting for the next
// match tick.
func (e *Engine) Ingest(ctx context.Context) (*IngestResult, error) {
	city, err := e.cities.GetByName(e.config.Scraper.City)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve city %q: %w", e.config.Scraper.City, err)
	}

	shows, err := e.scraper.Scrape(ctx)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Shows: len(shows)}
	if len(shows) == 0 {
		e.logger.Info("no upcoming shows found")
		return result, nil
	}

	rows := BuildConcertRows(shows, city.ID())
	written, err := e.concerts.UpsertBatch(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to store concerts: %w", err)
	}
	result.Concerts = written

	e.logger.Info("ingested concerts", "shows", len(shows), "rows", written)

	matches, err := e.MatchAll(ctx)
	if err != nil {
		return nil, err
	}
	result.Matches = matches

	return result, nil
}
