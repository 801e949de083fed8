package auth

import (
	"fmt"
	"strings"
	"time"
)

// User is the identity carried in a session.
type User struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	AdsID     string `json:"adsId"`
}

// DisplayName joins first and last name, falling back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Session is the signed, time-bounded credential carried between requests.
// It is immutable once issued; re-authentication replaces it.
type Session struct {
	User        User         `json:"user"`
	Permissions []Permission `json:"permissions"`
	// ExpiresAt is in unix seconds.
	ExpiresAt int64 `json:"expiresAt"`
}

// NewSession builds and validates a session expiring at expiresAt.
func NewSession(user User, permissions []Permission, expiresAt time.Time) (*Session, error) {
	if permissions == nil {
		permissions = []Permission{}
	}
	s := &Session{
		User:        user,
		Permissions: permissions,
		ExpiresAt:   expiresAt.Unix(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the structural invariants of a session. Downstream code
// trusts a validated session without further shape checks.
func (s *Session) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil session", ErrInvalidSession)
	}
	if s.User.Email == "" {
		return fmt.Errorf("%w: user email is required", ErrInvalidSession)
	}
	if s.ExpiresAt <= 0 {
		return fmt.Errorf("%w: expiresAt is required", ErrInvalidSession)
	}
	seen := make(map[string]struct{}, len(s.Permissions))
	for _, p := range s.Permissions {
		if err := p.validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSession, err)
		}
		if _, dup := seen[p.TeamID]; dup {
			return fmt.Errorf("%w: duplicate permission for team %s", ErrInvalidSession, p.TeamID)
		}
		seen[p.TeamID] = struct{}{}
	}
	return nil
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}

// ExpiresAtTime returns ExpiresAt as a time.Time.
func (s *Session) ExpiresAtTime() time.Time {
	return time.Unix(s.ExpiresAt, 0)
}

// Permission returns the permission held on teamID, if any.
func (s *Session) Permission(teamID string) (Permission, bool) {
	for _, p := range s.Permissions {
		if p.TeamID == teamID {
			return p, true
		}
	}
	return Permission{}, false
}
