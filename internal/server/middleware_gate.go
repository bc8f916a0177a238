package server

import (
	"log/slog"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/rjmoggach/litigation-support-sub001/internal/session"
)

// ctxSessionKey is where the gate stores the decoded session for handlers.
const ctxSessionKey = "session"

// GateOptions are the predicates a route subtree requires of the session.
// The zero value gates on "authenticated and active": an inactive account is
// denied unless AllowInactive is set.
type GateOptions struct {
	AllowInactive    bool
	RequireVerified  bool
	RequireSuperuser bool
	Roles            []string
	// Fallback is the redirect target on denial, default "/login". The
	// original path rides along as callbackUrl.
	Fallback string
}

// gate decodes the session cookie, keeps the access token fresh, evaluates
// the predicates, and either admits the request or redirects to the
// fallback.
func (s *Server) gate(opts GateOptions) echo.MiddlewareFunc {
	if opts.Fallback == "" {
		opts.Fallback = "/login"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := s.codec.Decode(c.Request())
			if err != nil {
				return s.deny(c, opts)
			}

			changed, err := s.refresher.EnsureFresh(c.Request().Context(), sess)
			if err != nil {
				// Refresh exhausted or session unusable: drop the cookie so
				// the browser stops presenting dead tokens.
				c.SetCookie(s.codec.Drop())
				return s.deny(c, opts)
			}
			if changed {
				cookie, err := s.codec.Encode(sess)
				if err != nil {
					slog.Error("Failed to re-sign session cookie after refresh", "error", err)
					return s.deny(c, opts)
				}
				c.SetCookie(cookie)
			}

			if !allowed(sess, opts) {
				return s.deny(c, opts)
			}

			c.Set(ctxSessionKey, sess)
			return next(c)
		}
	}
}

func allowed(sess *session.Session, opts GateOptions) bool {
	if !sess.Authenticated() {
		return false
	}
	if !opts.AllowInactive && !sess.User.IsActive {
		return false
	}
	if opts.RequireVerified && !sess.User.IsVerified {
		return false
	}
	if opts.RequireSuperuser && !sess.User.IsSuperuser {
		return false
	}
	if len(opts.Roles) > 0 && !sess.User.IsSuperuser && !sess.HasAnyRole(opts.Roles...) {
		return false
	}
	return true
}

func (s *Server) deny(c echo.Context, opts GateOptions) error {
	callback := c.Request().URL.RequestURI()
	return c.Redirect(302, opts.Fallback+"?callbackUrl="+url.QueryEscape(callback))
}

// currentSession returns the session the gate stored on the context.
func currentSession(c echo.Context) *session.Session {
	sess, _ := c.Get(ctxSessionKey).(*session.Session)
	return sess
}
