// Package repositories implements SQLite persistence for all domain entities.
//
// Every write that ingestion, sync, or matching performs is an idempotent
// upsert keyed on a stable natural key (concert source_id, artist name,
// link-table primary keys). Overlapping cron invocations are therefore
// safe without locking: the second writer's conflicting inserts are no-ops.
//
// Key Implementations:
//   - [CityRepository] : City lookups for ingestion scoping
//   - [ProfileRepository] : User profiles with digest preference updates
//   - [ArtistRepository] : Artist upserts and user-library link edges
//   - [ConcertRepository] : Chunked concert upserts and date-range queries
//   - [MatchRepository] : (user, concert) match edges
//
// Concert upserts are chunked ([concertBatchSize] rows per transaction);
// a failed chunk aborts the remaining batch but previously committed
// chunks stay committed.
package repositories
