package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/filmsage/filmsage/internal/models"
)

// Admin operations under the /users namespace. The backend authorizes these
// from the elevated-role claim in the bearer token; a non-admin session gets
// a 403, which [StatusError.Unwrap] maps to [shared.ErrForbidden].

// ListUsers fetches every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	data, err := c.Get(ctx, "/users")
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	for i := range users {
		users[i].Normalize()
	}
	return users, nil
}

// DeleteUser removes an account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	_, err := c.Delete(ctx, "/users/"+userID)
	return err
}

// SetUserRole changes an account's role. Admin only.
func (c *Client) SetUserRole(ctx context.Context, userID, role string) error {
	_, err := c.Put(ctx, "/users/"+userID+"/role", map[string]string{"role": role})
	return err
}

// SetUserActive activates or deactivates an account. Admin only.
func (c *Client) SetUserActive(ctx context.Context, userID string, active bool) error {
	_, err := c.Put(ctx, "/users/"+userID+"/active", map[string]bool{"active": active})
	return err
}
