package user

import (
	"errors"
	"strings"

	"eventdesk/internal/domain/role"
)

// Domain errors
var (
	ErrEmptyEmail   = errors.New("email cannot be empty")
	ErrInvalidEmail = errors.New("email must contain '@'")
	ErrInvalidRole  = role.ErrUnknownRole
)

// User is the record cached in the session after login or signup verification.
// Field names follow the API's JSON so the record round-trips unchanged.
type User struct {
	ID        string    `json:"user_id,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      role.Role `json:"role"`
	Email     string    `json:"email"`
	Avatar    string    `json:"profile_picture,omitempty"` // server-relative path or absolute URL
}

// Validate checks the record's invariants.
// PRE: User struct is populated
// POST: Returns nil if valid, error otherwise
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// DisplayName returns "First Last", falling back to the email.
// INVARIANT: User fields are not mutated
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Initials returns up to two uppercase initials for the avatar placeholder.
// INVARIANT: User fields are not mutated
func (u *User) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		part = strings.TrimSpace(part)
		if part != "" {
			b.WriteString(strings.ToUpper(string([]rune(part)[0])))
		}
	}
	if b.Len() == 0 && u.Email != "" {
		return strings.ToUpper(string([]rune(u.Email)[0]))
	}
	return b.String()
}

// HasExternalAvatar reports whether the avatar is an absolute URL
// (e.g. a social login picture) rather than an uploaded file path.
func (u *User) HasExternalAvatar() bool {
	return IsExternalURL(u.Avatar)
}

// IsExternalURL reports whether ref is an absolute http(s) URL.
func IsExternalURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
