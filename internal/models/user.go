package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/filmsage/filmsage/internal/shared"
)

// Role values assigned by the backend.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents the identity record issued by the review backend.
//
// The backend has historically emitted the identifier under both "_id" and
// "id"; [User.Normalize] unifies the two so callers only ever read UserID.
type User struct {
	UserID   string `json:"id,omitempty"`
	LegacyID string `json:"_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Active   bool   `json:"active,omitempty"`
}

// Normalize ensures both identifier fields are present and equal.
//
// The canonical identifier is UserID; LegacyID is kept populated for
// payloads that still address users by "_id".
func (u *User) Normalize() {
	switch {
	case u.UserID == "" && u.LegacyID != "":
		u.UserID = u.LegacyID
	case u.UserID != "" && u.LegacyID == "":
		u.LegacyID = u.UserID
	}
}

// IsAdmin reports whether the user holds the elevated admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks the identity record for a usable identifier.
func (u *User) Validate() error {
	if u.UserID == "" && u.LegacyID == "" {
		return fmt.Errorf("%w: user has no identifier", shared.ErrInvalidInput)
	}
	return nil
}

// Credentials are the inputs for the login operation.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterProfile are the inputs for the register operation.
type RegisterProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate applies the client-side registration rules before the profile is
// sent to the backend.
func (p *RegisterProfile) Validate() error {
	if !ValidateName(p.Name) {
		return fmt.Errorf("%w: name must be at least 3 characters", shared.ErrInvalidInput)
	}
	if !ValidateEmail(p.Email) {
		return fmt.Errorf("%w: invalid email address", shared.ErrInvalidInput)
	}
	if !ValidatePassword(p.Password) {
		return fmt.Errorf("%w: password must be at least 6 characters", shared.ErrInvalidInput)
	}
	return nil
}

// UserPatch is a partial profile update; nil fields are left untouched.
type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Apply returns a copy of u with the patch's non-nil fields overlaid.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	return u
}

// Empty reports whether the patch carries no changes.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateName reports whether a display name is acceptable (at least 3 characters after trimming).
func ValidateName(name string) bool {
	return len(strings.TrimSpace(name)) >= 3
}

// ValidateEmail reports whether the email has a plausible address shape.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword reports whether the password meets the minimum length.
func ValidatePassword(password string) bool {
	return len(password) >= 6
}

// ValidateRepeatPassword reports whether the confirmation matches.
func ValidateRepeatPassword(password, repeat string) bool {
	return password == repeat
}
