// Package session holds the client's authentication state.
//
// The [Manager] is the single source of truth for "who is logged in": route
// guards and the CLI read it, and it alone writes the durable session entries.
// Every state change that represents a durable fact (login, logout, profile
// update) is mirrored to the session store in the same call.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/filmsage/filmsage/internal/api"
	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/repositories"
	"github.com/filmsage/filmsage/internal/shared"
	"golang.org/x/sync/singleflight"
)

// Error keys used in the session's error map.
const (
	ErrorKeyLogin    = "login"
	ErrorKeyRegister = "register"
	ErrorKeyProfile  = "profile"
)

// AuthAPI is the slice of the backend gateway the manager needs.
// Satisfied by [*api.Client].
type AuthAPI interface {
	Login(ctx context.Context, credentials models.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, profile models.RegisterProfile) (*api.AuthResponse, error)
	UpdateProfile(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error)
}

// Session is a snapshot of the in-memory authentication state.
//
// Invariant: Authenticated is true iff User is non-nil and a token is present
// in the durable store.
type Session struct {
	User          *models.User
	Token         string
	Authenticated bool
	Errors        map[string]string
}

// Manager owns the in-memory session and its durable mirror.
//
// Safe for concurrent use: a mutex guards the session, and duplicate login or
// register attempts are coalesced per operation through a single-flight group.
// Logout never joins those flights; it runs its own teardown and bumps the
// session epoch so an attempt that was already in flight cannot re-install
// the session after the user signed out.
type Manager struct {
	mu      sync.Mutex
	session Session
	epoch   uint64

	store     *repositories.SessionStore
	favorites *repositories.FavoriteRepository
	backend   AuthAPI
	logger    *log.Logger
	inflight  singleflight.Group
}

// ManagerOpts contains configuration options for creating a Manager.
type ManagerOpts struct {
	Store     *repositories.SessionStore
	Favorites *repositories.FavoriteRepository
	Backend   AuthAPI
	Logger    *log.Logger
}

// NewManager creates a session manager with an empty session.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Manager{
		session:   Session{Errors: map[string]string{}},
		store:     opts.Store,
		favorites: opts.Favorites,
		backend:   opts.Backend,
		logger:    opts.Logger,
	}
}

// Current returns a copy of the session snapshot.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.session
	snapshot.Errors = make(map[string]string, len(m.session.Errors))
	for k, v := range m.session.Errors {
		snapshot.Errors[k] = v
	}
	if m.session.User != nil {
		user := *m.session.User
		snapshot.User = &user
	}
	return snapshot
}

// IsAuthenticated reports whether a user is logged in.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Authenticated
}

// User returns the current identity, or nil when unauthenticated.
func (m *Manager) User() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.User == nil {
		return nil
	}
	user := *m.session.User
	return &user
}

// ErrorMessage returns the recorded message for the given error key.
func (m *Manager) ErrorMessage(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Errors[key]
}

// Login authenticates with the backend and, on success, persists the issued
// token and normalized identity.
//
// On failure the existing session is left untouched and the classified
// message is recorded under the "login" error key. Never returns an error:
// the boolean is the whole contract.
func (m *Manager) Login(ctx context.Context, credentials models.Credentials) bool {
	started := m.currentEpoch()

	result, err, _ := m.inflight.Do("login", func() (any, error) {
		return m.backend.Login(ctx, credentials)
	})
	if err != nil {
		m.recordError(ErrorKeyLogin, classifyAuthError(err, "Login failed. Please try again."))
		return false
	}

	resp, ok := result.(*api.AuthResponse)
	if !ok || resp == nil {
		m.recordError(ErrorKeyLogin, "Login failed. Please try again.")
		return false
	}
	return m.adoptSession(started, resp)
}

// Register creates an account and logs the new user in. A duplicate identity
// (409) is reported distinctly from generic validation failure.
func (m *Manager) Register(ctx context.Context, profile models.RegisterProfile) bool {
	if err := profile.Validate(); err != nil {
		m.recordError(ErrorKeyRegister, err.Error())
		return false
	}

	started := m.currentEpoch()

	result, err, _ := m.inflight.Do("register", func() (any, error) {
		return m.backend.Register(ctx, profile)
	})
	if err != nil {
		m.recordError(ErrorKeyRegister, classifyAuthError(err, "Registration failed. Please try again."))
		return false
	}

	resp, ok := result.(*api.AuthResponse)
	if !ok || resp == nil {
		m.recordError(ErrorKeyRegister, "Registration failed. Please try again.")
		return false
	}
	return m.adoptSession(started, resp)
}

// Logout unconditionally clears the in-memory session, the durable session
// entries, and the favorites cache. No network call is made and failures are
// only logged: logout always succeeds from the caller's perspective. A login
// or register attempt still in flight when Logout runs is discarded when it
// completes.
func (m *Manager) Logout() {
	m.clearSession(true)
}

// ForceExpire tears the session down after the gateway detected an expired
// token mid-request. Unlike Logout, the favorites cache is kept: expiry is
// not a deliberate session boundary.
func (m *Manager) ForceExpire() {
	m.clearSession(false)
}

// Restore re-hydrates the session from the durable store.
//
// Idempotent and safe to call before every navigation. Corrupt persisted
// state and locally-detectable token expiry both trigger the same cleanup
// path as Logout.
func (m *Manager) Restore() {
	token, tokenOK, err := m.store.Get(repositories.KeyToken)
	if err != nil {
		m.logger.Warn("failed to read persisted token", "err", err)
		return
	}

	raw, userOK, err := m.store.Get(repositories.KeyUserData)
	if err != nil {
		m.logger.Warn("failed to read persisted identity", "err", err)
		return
	}

	if !tokenOK || !userOK {
		return
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.logger.Warn("corrupt persisted identity, clearing session", "err", err)
		m.clearSession(true)
		return
	}

	if tokenExpired(token, time.Now()) {
		m.logger.Info("persisted token expired, clearing session")
		m.clearSession(false)
		return
	}

	user.Normalize()

	m.mu.Lock()
	m.session.User = &user
	m.session.Token = token
	m.session.Authenticated = true
	// Write the normalized identity back so later restores skip the fixup.
	m.persistUser(&user)
	m.mu.Unlock()
}

// UpdateProfile applies a partial profile update. Requires an authenticated
// session; on failure the in-memory identity is left unchanged.
func (m *Manager) UpdateProfile(ctx context.Context, patch models.UserPatch) bool {
	current := m.User()
	if current == nil {
		m.recordError(ErrorKeyProfile, "You must be logged in to update your profile.")
		return false
	}

	if patch.Empty() {
		m.recordError(ErrorKeyProfile, "Nothing to update.")
		return false
	}

	updated, err := m.backend.UpdateProfile(ctx, current.UserID, patch)
	if err != nil {
		m.recordError(ErrorKeyProfile, classifyAuthError(err, "Failed to update profile. Please try again."))
		return false
	}

	// Server truth wins where it answered; patch fills any gap.
	merged := patch.Apply(*current)
	if updated.Name != "" {
		merged.Name = updated.Name
	}
	if updated.Email != "" {
		merged.Email = updated.Email
	}
	if updated.Role != "" {
		merged.Role = updated.Role
	}
	merged.Normalize()

	m.mu.Lock()
	m.session.User = &merged
	m.session.Errors = map[string]string{}
	m.persistUser(&merged)
	m.mu.Unlock()
	return true
}

// adoptSession installs a successful auth response and mirrors it durably.
// The response is dropped when the session epoch moved past started: a
// logout or forced expiry that landed mid-attempt outranks whatever the
// attempt brought back.
func (m *Manager) adoptSession(started uint64, resp *api.AuthResponse) bool {
	user := resp.User
	user.Normalize()

	m.mu.Lock()
	if m.epoch != started {
		m.mu.Unlock()
		return false
	}
	m.session.User = &user
	m.session.Token = resp.Token
	m.session.Authenticated = true
	m.session.Errors = map[string]string{}

	// Mirror durably before releasing the lock so a concurrent logout
	// cannot slip between the in-memory install and the store write.
	if err := m.store.Set(repositories.KeyToken, resp.Token); err != nil {
		m.logger.Warn("failed to persist token", "err", err)
	}
	m.persistUser(&user)
	m.mu.Unlock()
	return true
}

// clearSession nulls the in-memory session and removes the durable entries.
// purgeFavorites additionally empties the favorites cache (logout privacy
// invariant).
func (m *Manager) clearSession(purgeFavorites bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++
	m.session = Session{Errors: map[string]string{}}

	if err := m.store.Delete(repositories.KeyToken); err != nil {
		m.logger.Warn("failed to remove persisted token", "err", err)
	}
	if err := m.store.Delete(repositories.KeyUserData); err != nil {
		m.logger.Warn("failed to remove persisted identity", "err", err)
	}

	if purgeFavorites && m.favorites != nil {
		if err := m.favorites.Clear(); err != nil {
			m.logger.Warn("failed to clear favorites cache", "err", err)
		}
	}
}

func (m *Manager) persistUser(user *models.User) {
	data, err := json.Marshal(user)
	if err != nil {
		m.logger.Warn("failed to encode identity", "err", err)
		return
	}
	if err := m.store.Set(repositories.KeyUserData, string(data)); err != nil {
		m.logger.Warn("failed to persist identity", "err", err)
	}
}

func (m *Manager) currentEpoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

func (m *Manager) recordError(key, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Errors[key] = message
}

// classifyAuthError maps gateway failures onto the human-readable messages
// surfaced in the session error map.
func classifyAuthError(err error, fallback string) string {
	switch {
	case errors.Is(err, shared.ErrConnection):
		return "Could not connect to the server. Please try again."
	case errors.Is(err, shared.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, shared.ErrNotFound):
		return "No account found for this email."
	case errors.Is(err, shared.ErrConflict):
		return "An account with this email already exists."
	case errors.Is(err, shared.ErrForbidden):
		return "You do not have permission to perform this action."
	case errors.Is(err, shared.ErrServerError):
		return "Server error. Please try again later."
	case errors.Is(err, shared.ErrInvalidInput):
		return err.Error()
	default:
		return fallback
	}
}
