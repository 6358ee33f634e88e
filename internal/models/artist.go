package models

import (
	"fmt"
	"time"
)

// Artist is a globally-deduplicated artist name as first seen from any
// user's library sync. The stored name is the identity key; two variants
// that normalize to the same key but were stored with different casing
// remain distinct rows.
type Artist struct {
	id        string
	name      string
	createdAt time.Time
	updatedAt time.Time
}

// NewArtist creates an Artist with the given stored name.
func NewArtist(name string) *Artist {
	now := time.Now()
	return &Artist{name: name, createdAt: now, updatedAt: now}
}

func (a *Artist) ID() string { return a.id }

func (a *Artist) Name() string { return a.name }

func (a *Artist) CreatedAt() time.Time { return a.createdAt }

func (a *Artist) UpdatedAt() time.Time { return a.updatedAt }

func (a *Artist) SetID(id string)          { a.id = id }
func (a *Artist) SetCreatedAt(t time.Time) { a.createdAt = t }
func (a *Artist) SetUpdatedAt(t time.Time) { a.updatedAt = t }

// Validate checks that the artist has a stored name.
func (a *Artist) Validate() error {
	if a.name == "" {
		return fmt.Errorf("artist name is required")
	}
	return nil
}

// City is a supported concert market. Concerts and profiles reference a
// city by id; ingestion is scoped to one city per run.
type City struct {
	id        string
	name      string
	createdAt time.Time
}

// NewCity creates a City with the given display name.
func NewCity(name string) *City {
	return &City{name: name, createdAt: time.Now()}
}

func (c *City) ID() string           { return c.id }
func (c *City) Name() string         { return c.name }
func (c *City) CreatedAt() time.Time { return c.createdAt }
func (c *City) UpdatedAt() time.Time { return c.createdAt }

func (c *City) SetID(id string)          { c.id = id }
func (c *City) SetCreatedAt(t time.Time) { c.createdAt = t }

// Validate checks that the city has a name.
func (c *City) Validate() error {
	if c.name == "" {
		return fmt.Errorf("city name is required")
	}
	return nil
}
