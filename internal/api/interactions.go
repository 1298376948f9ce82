package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/filmsage/filmsage/internal/models"
)

// ServerFavorite is a favorites entry as the backend serializes it.
// Field names differ from the local cache schema; [ServerFavorite.ToFavorite]
// performs the remapping.
type ServerFavorite struct {
	TMDBID      int    `json:"tmdb_id"`
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path"`
	CreatedAt   string `json:"created_at"`
	AddedAt     string `json:"added_at"`
}

// ToFavorite converts the server entry into the local cache schema.
// The server reports timestamps under created_at or added_at depending on
// deployment age; either is accepted, falling back to now.
func (s ServerFavorite) ToFavorite() *models.Favorite {
	favorite := models.NewFavorite(0, s.TMDBID, s.ContentType, s.Title, s.PosterPath)

	for _, raw := range []string{s.CreatedAt, s.AddedAt} {
		if raw == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			favorite.SetAddedAt(ts)
			break
		}
	}

	return favorite
}

// interactionBody is the add/remove payload for user interaction sub-resources.
type interactionBody struct {
	UserID      string `json:"user_id"`
	TMDBID      int    `json:"tmdb_id"`
	ContentType string `json:"content_type"`
	Rating      int    `json:"rating,omitempty"`
}

// AddFavorite records a favorite server-side for the acting user.
func (c *Client) AddFavorite(ctx context.Context, userID string, tmdbID int, contentType string) error {
	_, err := c.Post(ctx, "/userInteractions/favorites", interactionBody{
		UserID: userID, TMDBID: tmdbID, ContentType: contentType,
	})
	return err
}

// ListFavorites fetches the authoritative server favorites for the user.
func (c *Client) ListFavorites(ctx context.Context, userID string) ([]ServerFavorite, error) {
	data, err := c.Get(ctx, "/userInteractions/favorites/"+userID)
	if err != nil {
		return nil, err
	}

	var favorites []ServerFavorite
	if err := json.Unmarshal(data, &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}
	return favorites, nil
}

// RemoveFavorite deletes a server-side favorite for the user.
func (c *Client) RemoveFavorite(ctx context.Context, userID string, tmdbID int, contentType string) error {
	endpoint := fmt.Sprintf("/userInteractions/favorites/%s/%d?content_type=%s", userID, tmdbID, contentType)
	_, err := c.Delete(ctx, endpoint)
	return err
}

// AddToWatchlist records a watchlist entry for the acting user.
func (c *Client) AddToWatchlist(ctx context.Context, userID string, tmdbID int, contentType string) error {
	_, err := c.Post(ctx, "/userInteractions/watchlist", interactionBody{
		UserID: userID, TMDBID: tmdbID, ContentType: contentType,
	})
	return err
}

// ListWatchlist fetches the user's watchlist.
func (c *Client) ListWatchlist(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.Get(ctx, "/userInteractions/watchlist/"+userID)
}

// RemoveFromWatchlist deletes a watchlist entry for the user.
func (c *Client) RemoveFromWatchlist(ctx context.Context, userID string, tmdbID int, contentType string) error {
	endpoint := fmt.Sprintf("/userInteractions/watchlist/%s/%d?content_type=%s", userID, tmdbID, contentType)
	_, err := c.Delete(ctx, endpoint)
	return err
}

// RateContent records a 1-10 rating for a catalog item.
func (c *Client) RateContent(ctx context.Context, userID string, tmdbID, rating int, contentType string) error {
	_, err := c.Post(ctx, "/userInteractions/ratings", interactionBody{
		UserID: userID, TMDBID: tmdbID, ContentType: contentType, Rating: rating,
	})
	return err
}

// ListRatings fetches the user's ratings.
func (c *Client) ListRatings(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.Get(ctx, "/userInteractions/ratings/"+userID)
}

// FollowUser records a follow edge from the acting user to target.
func (c *Client) FollowUser(ctx context.Context, userID, targetID string) error {
	_, err := c.Post(ctx, "/userInteractions/follows", map[string]string{
		"user_id": userID, "target_id": targetID,
	})
	return err
}

// UnfollowUser removes a follow edge.
func (c *Client) UnfollowUser(ctx context.Context, userID, targetID string) error {
	_, err := c.Delete(ctx, fmt.Sprintf("/userInteractions/follows/%s/%s", userID, targetID))
	return err
}

// ListFollowing fetches the users the given user follows.
func (c *Client) ListFollowing(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.Get(ctx, "/userInteractions/follows/"+userID)
}
