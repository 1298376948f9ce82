package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/filmsage/filmsage/internal/models"
)

// AuthResponse is the backend's reply to login and register: a bearer token
// plus the identity record it was issued for.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a token. 401 means invalid credentials,
// 404 means the account does not exist; both surface as a [*StatusError].
func (c *Client) Login(ctx context.Context, credentials models.Credentials) (*AuthResponse, error) {
	data, err := c.Post(ctx, "/users/login", credentials)
	if err != nil {
		return nil, err
	}
	return decodeAuthResponse(data)
}

// Register creates a new account. 409 means the identity already exists.
func (c *Client) Register(ctx context.Context, profile models.RegisterProfile) (*AuthResponse, error) {
	data, err := c.Post(ctx, "/users/register", profile)
	if err != nil {
		return nil, err
	}
	return decodeAuthResponse(data)
}

// UpdateProfile applies a partial profile update and returns the updated identity.
func (c *Client) UpdateProfile(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error) {
	data, err := c.Put(ctx, "/users/"+userID, patch)
	if err != nil {
		return nil, err
	}

	var payload struct {
		User models.User `json:"user"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}

	payload.User.Normalize()
	return &payload.User, nil
}

func decodeAuthResponse(data json.RawMessage) (*AuthResponse, error) {
	var resp AuthResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	resp.User.Normalize()
	return &resp, nil
}
