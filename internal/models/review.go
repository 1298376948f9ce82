package models

import (
	"fmt"
	"strings"

	"github.com/filmsage/filmsage/internal/shared"
)

// Review is the payload for submitting a movie review to the backend.
//
// The backend rejects a second review for the same (user, content) pair
// with a 409 conflict.
type Review struct {
	UserID      string `json:"user_id"`
	TMDBID      int    `json:"tmdb_id"`
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Rating      int    `json:"rating"`
	IsCritic    bool   `json:"is_critic"`
	IsSpoiler   bool   `json:"is_spoiler"`
}

// Validate applies client-side review rules before submission.
func (r *Review) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("%w: review has no author", shared.ErrInvalidInput)
	}
	if r.TMDBID <= 0 {
		return fmt.Errorf("%w: tmdb id must be positive", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: review title is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: review content is required", shared.ErrInvalidInput)
	}
	if r.Rating < 1 || r.Rating > 10 {
		return fmt.Errorf("%w: rating must be between 1 and 10", shared.ErrInvalidInput)
	}
	return nil
}
