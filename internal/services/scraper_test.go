package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/encore/internal/shared"
)

const listingFixture = `<!DOCTYPE html>
<html><body>
<div class="row vevent">
  <div class="bands summary">
    <a href="/bands/black-lips">Black Lips</a>
    <a class="non-profiled" href="#">Osees</a>
    <a class="profiled" href="/bands/promoter">Promoter Link</a>
  </div>
  <span class="value-title" title="2025-05-01T19:00:00-04:00"></span>
  <div class="location"><span class="fn org">The Bowery</span></div>
  <a class="url" href="/shows/12345">details</a>
</div>
<div class="row vevent">
  <div class="bands summary"><a href="/bands/snail-mail">Snail Mail</a></div>
  <span class="value-title" title="2025-04-29T20:00:00-04:00"></span>
  <div class="location"><span class="fn org">Elsewhere</span></div>
  <a class="url" href="https://tickets.example.com/6789">details</a>
</div>
<div class="row vevent">
  <div class="bands summary"><a href="/bands/wand">Wand</a></div>
  <span class="value-title" title="2025-04-30T21:30:00-04:00"></span>
  <a href="/shows/222">details</a>
</div>
<div class="row vevent">
  <div class="bands summary"><a class="profiled" href="/bands/x">Only Profiled</a></div>
  <span class="value-title" title="2025-05-02T19:00:00-04:00"></span>
  <div class="location"><span class="fn org">Baby's All Right</span></div>
</div>
<div class="row vevent">
  <div class="bands summary"><a href="/bands/y">Bad Date Band</a></div>
  <span class="value-title" title="TBA"></span>
  <div class="location"><span class="fn org">Baby's All Right</span></div>
</div>
</body></html>`

func newTestScraper(listingURL string, now time.Time) *ScraperService {
	svc := NewScraperService(shared.ScraperConfig{ListingURL: listingURL})
	svc.now = func() time.Time { return now }
	return svc
}

func TestScraperService(t *testing.T) {
	now := time.Date(2025, 4, 30, 12, 0, 0, 0, time.UTC)

	t.Run("Parses And Filters Listings", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(listingFixture))
		}))
		defer server.Close()

		svc := newTestScraper(server.URL+"/shows?all=true", now)
		shows, err := svc.Scrape(context.Background())
		if err != nil {
			t.Fatalf("failed to scrape: %v", err)
		}

		// Yesterday's show, the artistless row, and the bad datetime drop out.
		if len(shows) != 2 {
			t.Fatalf("expected 2 shows, got %d", len(shows))
		}

		first := shows[0]
		if len(first.Artists) != 2 || first.Artists[0] != "Black Lips" || first.Artists[1] != "Osees" {
			t.Errorf("unexpected artists: %v", first.Artists)
		}
		if first.Date != "2025-05-01" {
			t.Errorf("expected date 2025-05-01, got %s", first.Date)
		}
		if first.Time != "07:00 PM" {
			t.Errorf("expected 07:00 PM, got %s", first.Time)
		}
		if first.Venue != "The Bowery" {
			t.Errorf("expected The Bowery, got %s", first.Venue)
		}
		if first.ShowURL != server.URL+"/shows/12345" {
			t.Errorf("expected resolved show url, got %s", first.ShowURL)
		}

		second := shows[1]
		if second.Date != "2025-04-30" {
			t.Errorf("today's show should survive, got %s", second.Date)
		}
		if second.Venue != "Unknown Venue" {
			t.Errorf("expected venue fallback, got %s", second.Venue)
		}
		if second.ShowURL != server.URL+"/shows/222" {
			t.Errorf("expected first-anchor fallback, got %s", second.ShowURL)
		}
	})

	t.Run("Absolute URLs Pass Through", func(t *testing.T) {
		fixture := `<div class="row vevent">
  <div class="bands summary"><a href="/bands/snail-mail">Snail Mail</a></div>
  <span class="value-title" title="2025-05-03T20:00:00-04:00"></span>
  <div class="location"><span class="fn org">Elsewhere</span></div>
  <a class="url" href="https://tickets.example.com/6789">details</a>
</div>`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(fixture))
		}))
		defer server.Close()

		svc := newTestScraper(server.URL, now)
		shows, err := svc.Scrape(context.Background())
		if err != nil {
			t.Fatalf("failed to scrape: %v", err)
		}
		if len(shows) != 1 || shows[0].ShowURL != "https://tickets.example.com/6789" {
			t.Errorf("expected absolute url preserved, got %+v", shows)
		}
	})

	t.Run("Upstream Failure Wraps ErrScrapeFailed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		svc := newTestScraper(server.URL, now)
		if _, err := svc.Scrape(context.Background()); !errors.Is(err, shared.ErrScrapeFailed) {
			t.Errorf("expected ErrScrapeFailed, got %v", err)
		}
	})
}
