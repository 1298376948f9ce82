package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/shared"
	"github.com/filmsage/filmsage/internal/ui"
	"github.com/urfave/cli/v3"
)

// ReviewCreate submits a review for the signed-in user.
func (r *Runner) ReviewCreate(ctx context.Context, cmd *cli.Command) error {
	current, err := r.requireSession()
	if err != nil {
		return err
	}
	if r.backend == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrMissingConfig)
	}

	review := models.Review{
		UserID:      current.User.UserID,
		TMDBID:      int(cmd.Int("id")),
		ContentType: cmd.String("type"),
		Title:       cmd.String("title"),
		Content:     cmd.String("content"),
		Rating:      int(cmd.Int("rating")),
		IsSpoiler:   cmd.Bool("spoiler"),
		IsCritic:    cmd.Bool("critic"),
	}

	r.logger.Info("submitting review", "tmdb_id", review.TMDBID, "rating", review.Rating)

	if _, err := r.backend.CreateReview(ctx, review); err != nil {
		r.writePlain("%s\n", ui.Err("✗ Review not submitted"))
		return err
	}

	r.writePlain("%s\n", ui.OK(fmt.Sprintf("✓ Review submitted for %s", review.Title)))
	return nil
}

// ReviewList prints a user's reviews, defaulting to the signed-in user.
func (r *Runner) ReviewList(ctx context.Context, cmd *cli.Command) error {
	if r.backend == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrMissingConfig)
	}

	userID := cmd.StringArg("user")
	if userID == "" {
		current, err := r.requireSession()
		if err != nil {
			return err
		}
		userID = current.User.UserID
	}

	data, err := r.backend.ListUserReviews(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch reviews: %w", err)
	}

	if cmd.Bool("pretty") {
		var parsed any
		if err := json.Unmarshal(data, &parsed); err == nil {
			return r.writeJSON(parsed, true)
		}
	}

	return r.writePlain("%s\n", data)
}
