package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/shared"
)

// CreateReview submits a review for a catalog item.
//
// The backend enforces one review per (user, content) pair; a duplicate is
// reported distinctly so the caller can surface the specific message.
func (c *Client) CreateReview(ctx context.Context, review models.Review) (json.RawMessage, error) {
	if err := review.Validate(); err != nil {
		return nil, err
	}

	data, err := c.Post(ctx, "/reviews", review)
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, fmt.Errorf("%w: you have already reviewed this title", shared.ErrConflict)
		}
		return nil, err
	}

	return data, nil
}

// ListUserReviews fetches all reviews written by the given user.
func (c *Client) ListUserReviews(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.Get(ctx, "/reviews/user/"+userID)
}
