package models

import (
	"fmt"
	"regexp"
	"time"
)

var dateShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Concert is one (artist, show) pair. A multi-artist show produces one
// Concert row per billed artist; rows sharing a show_id describe the same
// physical event and carry identical venue/date/time/bill.
//
// artistName is stored normalized (the matching key); the bill preserves
// the unnormalized display names for rendering.
type Concert struct {
	id         string
	sourceID   string
	cityID     string
	artistName string
	venue      string
	date       string
	time       string
	ticketURL  string
	bill       []string
	showID     string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewConcert creates a Concert row for one artist of one show.
func NewConcert(sourceID, showID, cityID, artistName, venue, date string) *Concert {
	now := time.Now()
	return &Concert{
		sourceID:   sourceID,
		showID:     showID,
		cityID:     cityID,
		artistName: artistName,
		venue:      venue,
		date:       date,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (c *Concert) ID() string { return c.id }

func (c *Concert) SourceID() string { return c.sourceID }

func (c *Concert) ShowID() string { return c.showID }

func (c *Concert) CityID() string { return c.cityID }

func (c *Concert) ArtistName() string { return c.artistName }

func (c *Concert) Venue() string { return c.venue }

func (c *Concert) Date() string { return c.date }

func (c *Concert) Time() string { return c.time }

func (c *Concert) TicketURL() string { return c.ticketURL }

// Bill returns the full list of billed display names. When a row predates
// bill storage the row's own artist name stands in for the bill.
func (c *Concert) Bill() []string {
	if len(c.bill) == 0 {
		return []string{c.artistName}
	}
	return c.bill
}

func (c *Concert) CreatedAt() time.Time { return c.createdAt }

func (c *Concert) UpdatedAt() time.Time { return c.updatedAt }

func (c *Concert) SetID(id string)          { c.id = id }
func (c *Concert) SetTime(t string)         { c.time = t }
func (c *Concert) SetTicketURL(u string)    { c.ticketURL = u }
func (c *Concert) SetBill(bill []string)    { c.bill = bill }
func (c *Concert) SetCreatedAt(t time.Time) { c.createdAt = t }
func (c *Concert) SetUpdatedAt(t time.Time) { c.updatedAt = t }

// Validate checks required fields and the date shape.
func (c *Concert) Validate() error {
	if c.sourceID == "" {
		return fmt.Errorf("concert source_id is required")
	}
	if c.showID == "" {
		return fmt.Errorf("concert show_id is required")
	}
	if c.cityID == "" {
		return fmt.Errorf("concert city_id is required")
	}
	if c.artistName == "" {
		return fmt.Errorf("concert artist_name is required")
	}
	if c.venue == "" {
		return fmt.Errorf("concert venue is required")
	}
	if !dateShape.MatchString(c.date) {
		return fmt.Errorf("concert date must be YYYY-MM-DD, got %q", c.date)
	}
	return nil
}
