// Package session owns the portal's authentication state: the token pair
// issued by the backend, the signed cookie it travels in, and the refresh
// schedule that keeps the access token alive.
package session

import (
	"errors"
	"time"
)

// Sentinel errors for the session lifecycle.
var (
	ErrNotAuthenticated = errors.New("session is not authenticated")
	ErrRefreshExhausted = errors.New("token refresh attempts exhausted")
	ErrInvalidCookie    = errors.New("session cookie is invalid")
	ErrSessionExpired   = errors.New("session has expired")
)

// AccountStatus is the backend's view of a linked mailbox connection.
type AccountStatus string

const (
	AccountActive  AccountStatus = "active"
	AccountExpired AccountStatus = "expired"
	AccountError   AccountStatus = "error"
	AccountRevoked AccountStatus = "revoked"
)

// User mirrors the backend's user record. The portal never owns it; it is
// refreshed from the profile endpoint after every token refresh.
type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	FullName    string   `json:"full_name"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	Roles       []string `json:"roles"`
	IsActive    bool     `json:"is_active"`
	IsVerified  bool     `json:"is_verified"`
	IsSuperuser bool     `json:"is_superuser"`
}

// EmailAccount is a secondary OAuth-connected mailbox linked to the user.
type EmailAccount struct {
	ID       int64         `json:"id"`
	Email    string        `json:"email"`
	Provider string        `json:"provider"`
	Status   AccountStatus `json:"status"`
	Scopes   []string      `json:"scopes,omitempty"`
}

// TokenPair is the backend's token response at login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session is everything the signed cookie carries. Tokens live next to the
// user because they share a lifecycle: created at sign-in, rotated together
// on refresh, destroyed together at sign-out.
type Session struct {
	User          *User          `json:"user,omitempty"`
	AccessToken   string         `json:"access_token,omitempty"`
	RefreshToken  string         `json:"refresh_token,omitempty"`
	TokenExpiry   time.Time      `json:"token_expiry,omitempty"`
	EmailAccounts []EmailAccount `json:"email_accounts,omitempty"`
}

// New builds a session from a fresh token pair. The access token's expiry is
// read from its (unverified) JWT payload; it is an expiry hint only, never a
// trust boundary.
func New(pair TokenPair, user *User, accounts []EmailAccount) (*Session, error) {
	claims, err := DecodeUnverified(pair.AccessToken)
	if err != nil {
		return nil, err
	}
	return &Session{
		User:          user,
		AccessToken:   pair.AccessToken,
		RefreshToken:  pair.RefreshToken,
		TokenExpiry:   claims.ExpiresAt,
		EmailAccounts: accounts,
	}, nil
}

// Authenticated reports whether the session carries a user and tokens.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil && s.AccessToken != ""
}

// HasRole reports whether the user holds the given role.
func (s *Session) HasRole(role string) bool {
	if !s.Authenticated() {
		return false
	}
	for _, r := range s.User.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (s *Session) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if s.HasRole(role) {
			return true
		}
	}
	return false
}

// ExpiresWithin reports whether the access token expires inside the window.
func (s *Session) ExpiresWithin(now time.Time, window time.Duration) bool {
	return !now.Add(window).Before(s.TokenExpiry)
}

// Invalidate nulls tokens and user, signalling the session layer to drop the
// cookie. The next gated request redirects to login.
func (s *Session) Invalidate() {
	s.User = nil
	s.AccessToken = ""
	s.RefreshToken = ""
	s.TokenExpiry = time.Time{}
	s.EmailAccounts = nil
}
