package main

import (
	"context"
	"fmt"

	"github.com/filmsage/filmsage/internal/formatter"
	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/shared"
	"github.com/filmsage/filmsage/internal/tasks"
	"github.com/filmsage/filmsage/internal/tmdb"
	"github.com/filmsage/filmsage/internal/ui"
	"github.com/urfave/cli/v3"
)

func (r *Runner) requireFavorites() error {
	if r.favorites == nil {
		return fmt.Errorf("%w: run 'filmsage setup database' first", shared.ErrMissingConfig)
	}
	return nil
}

// FavoritesAdd stores a favorite locally and mirrors it to the server when a
// session is active. A duplicate add is a no-op, not an error.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireFavorites(); err != nil {
		return err
	}

	favorite := models.NewFavorite(0, int(cmd.Int("id")), cmd.String("type"), cmd.String("title"), cmd.String("poster"))
	if err := favorite.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if err := r.favorites.Create(favorite); err != nil {
		return fmt.Errorf("failed to cache favorite: %w", err)
	}

	r.writePlain("%s\n", ui.OK(fmt.Sprintf("✓ Added %s to favorites", favorite.Title())))

	if r.backend != nil && r.sessions != nil {
		r.sessions.Restore()
		if current := r.sessions.Current(); current.Authenticated && current.User != nil {
			if err := r.backend.AddFavorite(ctx, current.User.UserID, favorite.TMDBID(), favorite.ContentType()); err != nil {
				r.logger.Warn("server mirror failed, favorite kept locally", "error", err)
				r.writePlain("%s\n", ui.Warn("Saved locally; run 'filmsage favorites sync run' to upload later"))
			}
		}
	}

	return nil
}

// FavoritesRemove drops a favorite from the local cache and the server.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireFavorites(); err != nil {
		return err
	}

	tmdbID := int(cmd.Int("id"))
	contentType := cmd.String("type")

	if err := r.favorites.Remove(tmdbID, contentType); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	r.writePlain("%s\n", ui.OK("✓ Removed from favorites"))

	if r.backend != nil && r.sessions != nil {
		r.sessions.Restore()
		if current := r.sessions.Current(); current.Authenticated && current.User != nil {
			if err := r.backend.RemoveFavorite(ctx, current.User.UserID, tmdbID, contentType); err != nil {
				r.logger.Warn("server removal failed", "error", err)
			}
		}
	}

	return nil
}

// FavoritesList prints the cached collection, optionally filtered by type.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireFavorites(); err != nil {
		return err
	}

	var criteria map[string]any
	if contentType := cmd.String("type"); contentType != "" {
		criteria = map[string]any{"content_type": contentType}
	}

	favorites, err := r.favorites.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to read favorites: %w", err)
	}

	if cmd.Bool("json") {
		data, err := formatter.ToJSON(favorites)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	}

	if len(favorites) == 0 {
		r.writePlain("%s\n", ui.Help("No favorites yet"))
		return nil
	}

	r.writePlain("%s\n", ui.Title(fmt.Sprintf("Favorites (%d)", len(favorites))))
	for i, favorite := range favorites {
		r.writePlain("%2d. %s (%s)\n", i+1, favorite.Title(), favorite.ContentType())
	}
	return nil
}

// runWithProgress drains progress updates to the logger while fn runs.
func (r *Runner) runWithProgress(fn func(progress chan<- tasks.ProgressUpdate) error) error {
	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	err := fn(progress)
	close(progress)
	<-done
	return err
}

// FavoritesSyncRun pushes local-only entries, then adopts the server collection.
func (r *Runner) FavoritesSyncRun(ctx context.Context, cmd *cli.Command) error {
	current, err := r.requireSession()
	if err != nil {
		return err
	}
	if r.engine == nil {
		return fmt.Errorf("%w: sync engine not initialized", shared.ErrMissingConfig)
	}

	var result *tasks.SyncRunResult
	err = r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = r.engine.Sync(ctx, progress, current.User.UserID)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	r.writePlainHeader("Sync Complete")
	r.writePlain("Uploaded:       %d\n", result.Push.PushedCount)
	r.writePlain("Already known:  %d\n", result.Push.AlreadyKnown)
	r.writePlain("Upload failures: %d\n", result.Push.FailedCount)
	r.writePlain("Cache entries:  %d\n", result.Pull.ReplacedCount)
	return nil
}

// FavoritesSyncPull replaces the local cache with the server collection.
func (r *Runner) FavoritesSyncPull(ctx context.Context, cmd *cli.Command) error {
	current, err := r.requireSession()
	if err != nil {
		return err
	}
	if r.engine == nil {
		return fmt.Errorf("%w: sync engine not initialized", shared.ErrMissingConfig)
	}

	var result *tasks.PullRunResult
	err = r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = r.engine.Pull(ctx, progress, current.User.UserID)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	r.writePlain("%s\n", ui.OK(fmt.Sprintf("✓ Cache now holds %d favorites", result.ReplacedCount)))
	return nil
}

// FavoritesSyncDiff shows the differences between the cache and the server.
func (r *Runner) FavoritesSyncDiff(ctx context.Context, cmd *cli.Command) error {
	current, err := r.requireSession()
	if err != nil {
		return err
	}
	if r.engine == nil {
		return fmt.Errorf("%w: sync engine not initialized", shared.ErrMissingConfig)
	}

	var result *tasks.ComparisonResult
	err = r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = r.engine.Diff(ctx, progress, current.User.UserID)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("diff failed: %w", err)
	}

	r.writePlainHeader("Favorites Diff")
	r.writePlain("Matched: %d\n", result.MatchedCount)

	if len(result.MissingLocally) > 0 {
		r.writePlain("%s\n", ui.Title("On server, not cached"))
		for _, favorite := range result.MissingLocally {
			r.writePlain("  %s (%s)\n", favorite.Title(), favorite.ContentType())
		}
	}

	if len(result.MissingOnServer) > 0 {
		r.writePlain("%s\n", ui.Title("Cached, not on server"))
		for _, favorite := range result.MissingOnServer {
			r.writePlain("  %s (%s)\n", favorite.Title(), favorite.ContentType())
		}
	}

	if len(result.MissingLocally) == 0 && len(result.MissingOnServer) == 0 {
		r.writePlain("%s\n", ui.OK("✓ Collections are identical"))
	}
	return nil
}

// FavoritesExport writes the cached collection to disk.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireFavorites(); err != nil {
		return err
	}
	if r.engine == nil {
		return fmt.Errorf("%w: sync engine not initialized", shared.ErrMissingConfig)
	}

	favorites, err := r.favorites.List(nil)
	if err != nil {
		return fmt.Errorf("failed to read favorites: %w", err)
	}

	if len(favorites) == 0 {
		return fmt.Errorf("%w: no favorites to export", shared.ErrNotFound)
	}

	opts := tasks.ExportOpts{
		Format:    cmd.String("format"),
		OutputDir: cmd.String("output"),
		Title:     "Favorites",
	}
	if cmd.Bool("posters") {
		opts.PosterURL = tmdb.ImageURL
	}

	var result *tasks.ExportRunResult
	err = r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = r.engine.Export(ctx, progress, favorites, opts)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlain("%s\n", ui.OK(fmt.Sprintf("✓ Exported %d favorites to %s", result.TotalEntries, result.OutputDirectory)))
	for _, file := range result.Files {
		r.writePlain("  %s\n", file)
	}
	return nil
}
