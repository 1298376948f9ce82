// package tasks implements favorites synchronization between the local cache
// and the review backend.
//
// The core abstraction is SyncEngine, which orchestrates pulls, pushes, and
// comparisons of the favorites collection. Operations emit progress updates
// via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/filmsage/filmsage/internal/api"
	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/shared"
)

// FavoritePushResult represents the outcome of uploading a single favorite.
type FavoritePushResult struct {
	Favorite *models.Favorite // Local entry that was pushed
	Error    error            // Error if the upload failed
}

// PullRunResult contains the outcome of replacing the local cache with the
// server collection.
type PullRunResult struct {
	ServerCount   int // Entries the server reported
	ReplacedCount int // Entries written to the local cache
}

// PushRunResult contains the outcome of uploading local-only favorites.
type PushRunResult struct {
	TotalLocal   int                  // Local entries considered
	AlreadyKnown int                  // Entries the server already had
	PushedCount  int                  // Entries uploaded successfully
	FailedCount  int                  // Entries that failed to upload
	Results      []FavoritePushResult // Individual upload outcomes
}

// ComparisonResult contains the differences between the local cache and the
// server collection, keyed by (TMDB id, content type).
type ComparisonResult struct {
	MatchedCount    int                // Entries present on both sides
	MissingLocally  []*models.Favorite // Server entries absent from the cache
	MissingOnServer []*models.Favorite // Cache entries absent from the server
}

// SyncRunResult contains the outcome of a full two-way sync.
type SyncRunResult struct {
	Push *PushRunResult
	Pull *PullRunResult
}

// FavoritesAPI is the backend surface the engine needs. Implemented by
// [api.Client].
type FavoritesAPI interface {
	ListFavorites(ctx context.Context, userID string) ([]api.ServerFavorite, error)
	AddFavorite(ctx context.Context, userID string, tmdbID int, contentType string) error
}

// FavoritesCache is the local storage surface the engine needs. Implemented
// by [repositories.FavoriteRepository].
type FavoritesCache interface {
	List(criteria map[string]any) ([]*models.Favorite, error)
	ReplaceAll(favorites []*models.Favorite) error
}

// SyncEngine defines operations for reconciling favorites with the backend.
type SyncEngine interface {
	// Pull replaces the local cache with the server's favorites.
	Pull(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*PullRunResult, error)

	// Push uploads local favorites the server does not know about.
	Push(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*PushRunResult, error)

	// Diff compares the local cache against the server without modifying either.
	Diff(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*ComparisonResult, error)

	// Sync pushes local-only entries, then pulls the merged server collection.
	Sync(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*SyncRunResult, error)
}

// FavoritesEngine implements SyncEngine against the review backend and the
// SQLite favorites cache.
type FavoritesEngine struct {
	backend FavoritesAPI
	cache   FavoritesCache
}

// NewFavoritesEngine creates a new FavoritesEngine with the provided backend
// and cache.
func NewFavoritesEngine(backend FavoritesAPI, cache FavoritesCache) *FavoritesEngine {
	return &FavoritesEngine{
		backend: backend,
		cache:   cache,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *FavoritesEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

func (e *FavoritesEngine) checkWiring() error {
	if e.backend == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrMissingConfig)
	}
	if e.cache == nil {
		return fmt.Errorf("%w: favorites cache not initialized", shared.ErrMissingConfig)
	}
	return nil
}

// contentKey identifies a favorite across storage layers.
type contentKey struct {
	tmdbID      int
	contentType string
}

func keyOf(favorite *models.Favorite) contentKey {
	return contentKey{tmdbID: favorite.TMDBID(), contentType: favorite.ContentType()}
}

// Pull replaces the local cache with the server's favorites. The server is
// the source of truth; local entries absent from the server are dropped.
func (e *FavoritesEngine) Pull(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*PullRunResult, error) {
	if err := e.checkWiring(); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", shared.ErrNotAuthenticated)
	}

	e.sendProgress(progress, fetchServerUpdate(1, 1))

	serverEntries, err := e.backend.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch server favorites: %w", err)
	}

	favorites := make([]*models.Favorite, len(serverEntries))
	for i, entry := range serverEntries {
		favorites[i] = entry.ToFavorite()
	}

	if err := e.cache.ReplaceAll(favorites); err != nil {
		return nil, fmt.Errorf("failed to replace local cache: %w", err)
	}

	e.sendProgress(progress, pullCompletedUpdate(len(favorites)))

	return &PullRunResult{
		ServerCount:   len(serverEntries),
		ReplacedCount: len(favorites),
	}, nil
}

// Push uploads local favorites the server does not already have. Individual
// upload failures are recorded per entry and do not abort the run.
func (e *FavoritesEngine) Push(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*PushRunResult, error) {
	if err := e.checkWiring(); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", shared.ErrNotAuthenticated)
	}

	e.sendProgress(progress, fetchLocalUpdate(1, 2))

	local, err := e.cache.List(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read local cache: %w", err)
	}

	e.sendProgress(progress, fetchServerUpdate(2, 2))

	serverEntries, err := e.backend.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch server favorites: %w", err)
	}

	known := make(map[contentKey]bool, len(serverEntries))
	for _, entry := range serverEntries {
		known[contentKey{tmdbID: entry.TMDBID, contentType: entry.ContentType}] = true
	}

	result := &PushRunResult{TotalLocal: len(local)}

	pending := make([]*models.Favorite, 0, len(local))
	for _, favorite := range local {
		if known[keyOf(favorite)] {
			result.AlreadyKnown++
			continue
		}
		pending = append(pending, favorite)
	}

	for i, favorite := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.sendProgress(progress, pushFavoriteUpdate(i+1, len(pending), favorite))

		err := e.backend.AddFavorite(ctx, userID, favorite.TMDBID(), favorite.ContentType())
		result.Results = append(result.Results, FavoritePushResult{Favorite: favorite, Error: err})

		if err != nil {
			result.FailedCount++
		} else {
			result.PushedCount++
		}
	}

	return result, nil
}

// Diff compares the local cache against the server collection.
func (e *FavoritesEngine) Diff(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*ComparisonResult, error) {
	if err := e.checkWiring(); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", shared.ErrNotAuthenticated)
	}

	e.sendProgress(progress, fetchLocalUpdate(1, 2))

	local, err := e.cache.List(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read local cache: %w", err)
	}

	e.sendProgress(progress, fetchServerUpdate(2, 2))

	serverEntries, err := e.backend.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch server favorites: %w", err)
	}

	e.sendProgress(progress, compareUpdate(1, 1))

	localKeys := make(map[contentKey]bool, len(local))
	for _, favorite := range local {
		localKeys[keyOf(favorite)] = true
	}

	result := &ComparisonResult{}

	serverKeys := make(map[contentKey]bool, len(serverEntries))
	for _, entry := range serverEntries {
		favorite := entry.ToFavorite()
		key := keyOf(favorite)
		serverKeys[key] = true

		if localKeys[key] {
			result.MatchedCount++
		} else {
			result.MissingLocally = append(result.MissingLocally, favorite)
		}
	}

	for _, favorite := range local {
		if !serverKeys[keyOf(favorite)] {
			result.MissingOnServer = append(result.MissingOnServer, favorite)
		}
	}

	return result, nil
}

// Sync pushes local-only entries, then pulls the merged collection back so
// the cache carries server-assigned timestamps and ordering.
func (e *FavoritesEngine) Sync(ctx context.Context, progress chan<- ProgressUpdate, userID string) (*SyncRunResult, error) {
	push, err := e.Push(ctx, progress, userID)
	if err != nil {
		return nil, err
	}

	pull, err := e.Pull(ctx, progress, userID)
	if err != nil {
		return &SyncRunResult{Push: push}, err
	}

	return &SyncRunResult{Push: push, Pull: pull}, nil
}
