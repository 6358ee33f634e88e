// Package models defines the domain entities for the concert matching service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs carried between pipeline stages
//   - [RawShow] : One scraped listing entry, multi-artist bill intact
//   - [DigestShow] : One grouped physical show with match highlighting
//
// 2. Persistent Entities: Database-backed models
//   - [City] : A supported concert market
//   - [Profile] : A user account with city and digest preference
//   - [Artist] : A globally-deduplicated artist display name
//   - [Concert] : One (artist, show) pair with a deterministic source_id
//
// Persistent entities implement the Model interface providing ID generation,
// timestamps, and validation. Link tables (user_artists,
// user_concert_matches) are plain edges managed by their repositories
// without a model type.
package models
