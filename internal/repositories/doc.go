// Package repositories implements SQLite persistence for the client's durable local state.
//
// Key Implementations:
//   - [SessionStore] : String-keyed entries holding the bearer token and serialized identity
//   - [FavoriteRepository] : Local favorites cache keyed by (tmdb_id, content_type)
//
// Sequence numbers provide stable, human-readable ordering for favorites
// independent of UUIDs and timestamps. The [NextSequence] function atomically
// increments per-table sequence counters in dedicated sequence tables.
package repositories
