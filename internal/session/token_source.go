package session

import (
	"time"

	"github.com/filmsage/filmsage/internal/repositories"
	"github.com/filmsage/filmsage/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// StoreTokenSource adapts the durable session store to [oauth2.TokenSource]
// so the gateway reads the bearer credential from the same place the session
// manager writes it.
type StoreTokenSource struct {
	store *repositories.SessionStore
}

// NewStoreTokenSource creates a token source backed by the session store.
func NewStoreTokenSource(store *repositories.SessionStore) *StoreTokenSource {
	return &StoreTokenSource{store: store}
}

// Token returns the persisted bearer credential. Absence is reported as
// [shared.ErrNotAuthenticated]; the gateway treats that as "send the request
// without credentials".
func (s *StoreTokenSource) Token() (*oauth2.Token, error) {
	value, ok, err := s.store.Get(repositories.KeyToken)
	if err != nil {
		return nil, err
	}
	if !ok || value == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: value, TokenType: "Bearer"}, nil
}

// tokenExpired reports whether the bearer token carries a JWT exp claim in
// the past. Opaque (non-JWT) tokens and tokens without an exp claim never
// expire locally; the backend remains the authority via 401 responses.
func tokenExpired(token string, now time.Time) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
