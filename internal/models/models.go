// package models defines the data model for the concert matching service
package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the concert service.
// Implementations include City, Profile, Artist, and Concert.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// RawShow is one scraped listing entry before expansion into concert rows.
//
// Date is YYYY-MM-DD; Time is a 12-hour clock string ("07:00 PM") or empty
// when the listing datetime could not be parsed.
type RawShow struct {
	Artists []string
	Date    string
	Time    string
	Venue   string
	ShowURL string
}

// BillItem is one performer on a show's bill with its match flag for display.
type BillItem struct {
	Name    string `json:"name"`
	Matched bool   `json:"matched"`
}

// DigestShow is one physical show assembled from its concert rows, ready
// for rendering in the week view, month view, or email digest.
type DigestShow struct {
	ShowID    string     `json:"show_id"`
	Bill      []BillItem `json:"bill"`
	Venue     string     `json:"venue"`
	Date      string     `json:"date"`
	Time      string     `json:"time,omitempty"`
	TicketURL string     `json:"ticket_url,omitempty"`
}
