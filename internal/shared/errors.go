package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingAPIKey = fmt.Errorf("missing TMDB API key")

	// Authentication errors
	ErrAuthRequired       = fmt.Errorf("authentication required")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrTokenExpired       = fmt.Errorf("session token expired")
	ErrForbidden          = fmt.Errorf("insufficient permissions")

	// API and catalog errors
	ErrAPIRequest  = fmt.Errorf("API request failed")
	ErrConnection  = fmt.Errorf("could not connect to server")
	ErrConflict    = fmt.Errorf("resource already exists")
	ErrNotFound    = fmt.Errorf("resource not found")
	ErrServerError = fmt.Errorf("server error")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
