// Package tasks orchestrates favorites reconciliation between the local cache and the review backend with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines four operations:
//
//  1. [SyncEngine.Pull] : Adopt the server collection
//     - Fetches the user's favorites from the backend
//     - Remaps server field names into the local cache schema
//     - Replaces the cache contents atomically
//
//  2. [SyncEngine.Push] : Upload local-only favorites
//     - Compares the cache against the server by (TMDB id, content type)
//     - Uploads entries the server does not know about
//     - Records per-entry failures without aborting the run
//
//  3. [SyncEngine.Diff] : Compare without modifying either side
//     - Reports matched count, entries missing locally, and entries missing on the server
//
//  4. [SyncEngine.Sync] : Push then pull
//     - Uploads local-only entries, then adopts the merged server collection
//     - The cache ends up carrying server-assigned timestamps and ordering
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Exports
//
// [FavoritesEngine.Export] writes the collection to disk as JSON, CSV, Markdown, or plain text.
// Markdown exports download poster art through a bounded worker pool with rate limiting.
//
// # Implementation
//
// [FavoritesEngine] implements [SyncEngine] with dependencies on:
//   - [FavoritesAPI] : the review backend client (api.Client)
//   - [FavoritesCache] : the SQLite favorites cache (repositories.FavoriteRepository)
package tasks
