package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rjmoggach/litigation-support-sub001/internal/errclass"
	"github.com/rjmoggach/litigation-support-sub001/internal/session"
)

const (
	sessionKeyOAuthState    = "oauth_state"
	sessionKeyOAuthProvider = "oauth_provider"

	authCallTimeout = 15 * time.Second
)

func (s *Server) handleLoginPage(c echo.Context) error {
	data := map[string]any{
		"CallbackURL": safeCallbackURL(c.QueryParam("callbackUrl")),
	}
	return s.render(c, "login.html", data)
}

func (s *Server) handleLogin(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	callback := safeCallbackURL(c.FormValue("callbackUrl"))

	if email == "" || password == "" {
		return s.render(c, "login.html", map[string]any{
			"CallbackURL": callback,
			"Error":       "Email and password are required.",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), authCallTimeout)
	defer cancel()

	pair, err := s.api.Login(ctx, email, password)
	if err != nil {
		classified := errclass.Classify(err)
		slog.Warn("Login failed", "category", classified.Category, "error", err)
		return s.render(c, "login.html", map[string]any{
			"CallbackURL": callback,
			"Error":       classified.Message,
		})
	}

	return s.establishSession(c, ctx, pair, callback)
}

func (s *Server) handleOAuthStart(c echo.Context) error {
	provider := c.Param("provider")
	state := uuid.NewString()

	stateSession, _ := s.stateStore.Get(c.Request(), stateSessionName)
	stateSession.Values[sessionKeyOAuthState] = state
	stateSession.Values[sessionKeyOAuthProvider] = provider
	if err := stateSession.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Error("Failed to save OAuth state", "error", err)
		return c.String(500, "Internal error")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), authCallTimeout)
	defer cancel()

	authURL, err := s.api.OAuthLoginURL(ctx, provider, state, s.config.PortalOrigin+"/auth/callback")
	if err != nil {
		s.flashError(c, err)
		return c.Redirect(302, "/login")
	}

	return c.Redirect(302, authURL)
}

func (s *Server) handleOAuthCallback(c echo.Context) error {
	if errParam := c.QueryParam("error"); errParam != "" {
		s.flashError(c, errclass.Classify(oauthQueryError(errParam, c.QueryParam("error_description"))))
		return c.Redirect(302, "/login")
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.String(400, "Missing code parameter")
	}

	stateSession, err := s.stateStore.Get(c.Request(), stateSessionName)
	if err != nil {
		return c.String(400, "Invalid session")
	}
	expectedState, ok := stateSession.Values[sessionKeyOAuthState].(string)
	if !ok || expectedState == "" {
		return c.String(400, "Missing OAuth state")
	}
	if c.QueryParam("state") != expectedState {
		return c.String(400, "Invalid OAuth state")
	}
	provider, _ := stateSession.Values[sessionKeyOAuthProvider].(string)
	delete(stateSession.Values, sessionKeyOAuthState)
	delete(stateSession.Values, sessionKeyOAuthProvider)
	if err := stateSession.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Warn("Failed to clear OAuth state", "error", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), authCallTimeout)
	defer cancel()

	pair, err := s.api.OAuthLogin(ctx, provider, code, s.config.PortalOrigin+"/auth/callback")
	if err != nil {
		s.flashError(c, err)
		return c.Redirect(302, "/login")
	}

	return s.establishSession(c, ctx, pair, "/dashboard")
}

func (s *Server) handleLogout(c echo.Context) error {
	c.SetCookie(s.codec.Drop())
	return c.Redirect(302, "/login")
}

// establishSession builds the session from a fresh token pair, signs the
// cookie, and redirects to the callback target.
func (s *Server) establishSession(c echo.Context, ctx context.Context, pair session.TokenPair, callback string) error {
	user, err := s.api.CurrentUser(ctx, pair.AccessToken)
	if err != nil {
		s.flashError(c, err)
		return c.Redirect(302, "/login")
	}

	// Linked mailboxes are decoration on the session; their absence must not
	// block sign-in.
	accounts, err := s.api.ListEmailAccounts(ctx, pair.AccessToken)
	if err != nil {
		slog.Warn("Failed to load email accounts at sign-in", "error", err)
	}

	sess, err := session.New(pair, user, accounts)
	if err != nil {
		slog.Error("Failed to build session from tokens", "error", err)
		s.flashError(c, err)
		return c.Redirect(302, "/login")
	}

	cookie, err := s.codec.Encode(sess)
	if err != nil {
		slog.Error("Failed to sign session cookie", "error", err)
		return c.String(500, "Internal error")
	}
	c.SetCookie(cookie)

	if callback == "" {
		callback = "/dashboard"
	}
	return c.Redirect(302, callback)
}

// safeCallbackURL keeps redirects on-site: only rooted paths survive.
func safeCallbackURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	return raw
}

// oauthQueryError turns the provider's error query pair into a classifiable
// error value.
type queryError struct {
	code        string
	description string
}

func (e *queryError) Error() string {
	if e.description != "" {
		return e.code + ": " + e.description
	}
	return e.code
}

func oauthQueryError(code, description string) error {
	return &queryError{code: code, description: description}
}
