package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rjmoggach/litigation-support-sub001/internal/metrics"
)

// RefreshWindow is the expiry skew: a token expiring within this window is
// refreshed before use.
const RefreshWindow = 5 * time.Minute

// Fixed incrementing delays between refresh attempts. Deliberately not
// exponential: this schedule is part of the session contract and is distinct
// from the generic retry helper used for API calls.
var defaultRefreshDelays = []time.Duration{1 * time.Second, 2 * time.Second, 3 * time.Second}

// RefreshError wraps a failed refresh attempt. Revoked marks responses that
// indicate the refresh token itself is no longer accepted.
type RefreshError struct {
	Revoked bool
	Err     error
}

func (e *RefreshError) Error() string {
	if e.Revoked {
		return fmt.Sprintf("refresh token revoked: %v", e.Err)
	}
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// AuthAPI is the slice of the backend client the refresher needs.
type AuthAPI interface {
	RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error)
	CurrentUser(ctx context.Context, accessToken string) (*User, error)
}

// Refresher keeps a session's access token fresh against the backend.
type Refresher struct {
	api    AuthAPI
	clock  clockwork.Clock
	delays []time.Duration
}

func NewRefresher(api AuthAPI, clock clockwork.Clock) *Refresher {
	return &Refresher{api: api, clock: clock, delays: defaultRefreshDelays}
}

// WithDelays overrides the inter-attempt delays (used by tests).
func (r *Refresher) WithDelays(delays []time.Duration) *Refresher {
	r.delays = delays
	return r
}

// EnsureFresh refreshes the session when its access token expires within
// RefreshWindow. Returns true when the session was mutated (refreshed or
// invalidated) and therefore must be re-written to the cookie.
//
// On exhaustion of all attempts the session is invalidated in place and
// ErrRefreshExhausted is returned.
func (r *Refresher) EnsureFresh(ctx context.Context, s *Session) (bool, error) {
	if !s.Authenticated() {
		return false, ErrNotAuthenticated
	}
	if !s.ExpiresWithin(r.clock.Now(), RefreshWindow) {
		return false, nil
	}

	var lastErr error
	for attempt := 1; attempt <= len(r.delays); attempt++ {
		err := r.refreshOnce(ctx, s)
		if err == nil {
			metrics.TokenRefreshAttempts.WithLabelValues("success").Inc()
			return true, nil
		}
		lastErr = err
		metrics.TokenRefreshAttempts.WithLabelValues("failure").Inc()
		slog.Warn("Token refresh attempt failed", "attempt", attempt, "error", err)

		select {
		case <-r.clock.After(r.delays[attempt-1]):
		case <-ctx.Done():
			s.Invalidate()
			metrics.SessionInvalidations.Inc()
			return true, fmt.Errorf("context cancelled during refresh: %w", ctx.Err())
		}
	}

	s.Invalidate()
	metrics.SessionInvalidations.Inc()
	slog.Error("Token refresh exhausted, session invalidated", "error", lastErr)
	return true, fmt.Errorf("%w: %v", ErrRefreshExhausted, lastErr)
}

func (r *Refresher) refreshOnce(ctx context.Context, s *Session) error {
	pair, err := r.api.RefreshToken(ctx, s.RefreshToken)
	if err != nil {
		return err
	}

	claims, err := DecodeUnverified(pair.AccessToken)
	if err != nil {
		return fmt.Errorf("refreshed token is unreadable: %w", err)
	}

	s.AccessToken = pair.AccessToken
	if pair.RefreshToken != "" {
		s.RefreshToken = pair.RefreshToken
	}
	s.TokenExpiry = claims.ExpiresAt

	// Pick up changed roles/avatar. Best effort: a failed profile fetch keeps
	// the previous user rather than failing the refresh.
	user, err := r.api.CurrentUser(ctx, s.AccessToken)
	if err != nil {
		slog.Warn("Profile re-fetch after refresh failed", "error", err)
		return nil
	}
	s.User = user

	return nil
}
