package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/filmsage/filmsage/internal/shared"
	"github.com/filmsage/filmsage/internal/ui"
	"github.com/urfave/cli/v3"
)

// writeRawJSON pretty-prints a raw backend payload.
func (r *Runner) writeRawJSON(data json.RawMessage) error {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return r.writeJSON(decoded, true)
}

// WatchlistAdd records a watchlist entry server-side.
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
	if r.backend == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrMissingConfig)
	}

	current, err := r.requireSession()
	if err != nil {
		return err
	}

	tmdbID := int(cmd.Int("id"))
	contentType := cmd.String("type")

	if err := r.backend.AddToWatchlist(ctx, current.User.UserID, tmdbID, contentType); err != nil {
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}

	r.writePlain("%s\n", ui.OK("✓ Added to watchlist"))
	return nil
}

// WatchlistRemove deletes a watchlist entry server-side.
func (r *Runner) WatchlistRemove(ctx context.Context, cmd *cli.Command) error {
	if r.backend == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrMissingConfig)
	}

	current, err := r.requireSession()
	if err != nil {
		return err
	}

	tmdbID := int(cmd.Int("id"))
	contentType := cmd.String("type")

	if err := r.backend.RemoveFromWatchlist(ctx, current.User.UserID, tmdbID, contentType); err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}

	r.writePlain("%s\n", ui.OK("✓ Removed from watchlist"))
	return nil
}

// WatchlistList prints the signed-in user's watchlist.
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	if r.backend == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrMissingConfig)
	}

	current, err := r.requireSession()
	if err != nil {
		return err
	}

	data, err := r.backend.ListWatchlist(ctx, current.User.UserID)
	if err != nil {
		return fmt.Errorf("failed to fetch watchlist: %w", err)
	}
	return r.writeRawJSON(data)
}

// ReviewRate records a standalone 1-10 rating for a title.
func (r *Runner) ReviewRate(ctx context.Context, cmd *cli.Command) error {
	if r.backend == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrMissingConfig)
	}

	current, err := r.requireSession()
	if err != nil {
		return err
	}

	rating := int(cmd.Int("rating"))
	if rating < 1 || rating > 10 {
		return fmt.Errorf("%w: rating must be between 1 and 10", shared.ErrInvalidInput)
	}

	tmdbID := int(cmd.Int("id"))
	contentType := cmd.String("type")

	if err := r.backend.RateContent(ctx, current.User.UserID, tmdbID, rating, contentType); err != nil {
		return fmt.Errorf("failed to submit rating: %w", err)
	}

	r.writePlain("%s\n", ui.OK(fmt.Sprintf("✓ Rated %d/10", rating)))
	return nil
}

// SocialFollow records a follow edge to another user.
func (r *Runner) SocialFollow(ctx context.Context, cmd *cli.Command) error {
	if r.backend == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrMissingConfig)
	}

	current, err := r.requireSession()
	if err != nil {
		return err
	}

	targetID := cmd.StringArg("user")
	if targetID == "" {
		return fmt.Errorf("%w: target user id", shared.ErrMissingArgument)
	}

	if err := r.backend.FollowUser(ctx, current.User.UserID, targetID); err != nil {
		return fmt.Errorf("failed to follow user: %w", err)
	}

	r.writePlain("%s\n", ui.OK("✓ Following "+targetID))
	return nil
}

// SocialUnfollow removes a follow edge.
func (r *Runner) SocialUnfollow(ctx context.Context, cmd *cli.Command) error {
	if r.backend == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrMissingConfig)
	}

	current, err := r.requireSession()
	if err != nil {
		return err
	}

	targetID := cmd.StringArg("user")
	if targetID == "" {
		return fmt.Errorf("%w: target user id", shared.ErrMissingArgument)
	}

	if err := r.backend.UnfollowUser(ctx, current.User.UserID, targetID); err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}

	r.writePlain("%s\n", ui.OK("✓ Unfollowed "+targetID))
	return nil
}

// SocialFollowing prints the users the signed-in user follows.
func (r *Runner) SocialFollowing(ctx context.Context, cmd *cli.Command) error {
	if r.backend == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrMissingConfig)
	}

	current, err := r.requireSession()
	if err != nil {
		return err
	}

	data, err := r.backend.ListFollowing(ctx, current.User.UserID)
	if err != nil {
		return fmt.Errorf("failed to fetch follows: %w", err)
	}
	return r.writeRawJSON(data)
}
