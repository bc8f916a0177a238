package server

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rjmoggach/litigation-support-sub001/internal/metrics"
)

const (
	sessionKeyBridgeState = "bridge_state"

	// How long the popup stays open so the user can read the outcome before
	// it closes itself.
	bridgeSuccessCloseAfter = 2 * time.Second
	bridgeErrorCloseAfter   = 3 * time.Second

	bridgeCallTimeout = 20 * time.Second

	// fallbackConnection is posted when the backend page yields no parseable
	// connection object. The opener refreshes the account list anyway, so a
	// minimal payload is enough to signal success.
	fallbackConnection = "{status: 'active'}"
)

// connectionPattern pulls the `connection: {...}` object literal out of the
// HTML page the backend renders at the end of the mailbox OAuth flow. One
// level of nested braces is enough for the payload the backend emits.
var connectionPattern = regexp.MustCompile(`connection:\s*(\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\})`)

// handleBridge terminates the mailbox OAuth popup flow. The provider
// redirects the popup here; the page posts the outcome to the opener window
// and closes itself. Every path answers 200: a non-2xx status would leave
// the popup showing a browser error page with no way to notify the opener.
func (s *Server) handleBridge(c echo.Context) error {
	if errCode := c.QueryParam("error"); errCode != "" {
		return s.renderBridgeError(c, errCode, c.QueryParam("error_description"))
	}

	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return s.renderBridgeError(c, "invalid_request", "Missing code or state parameter")
	}

	stateSession, _ := s.stateStore.Get(c.Request(), stateSessionName)
	expected, _ := stateSession.Values[sessionKeyBridgeState].(string)
	if expected == "" || expected != state {
		return s.renderBridgeError(c, "invalid_state", "State parameter does not match the pending connection request")
	}
	delete(stateSession.Values, sessionKeyBridgeState)
	if err := stateSession.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Warn("Failed to clear bridge state", "error", err)
	}

	sess, err := s.codec.Decode(c.Request())
	if err != nil || !sess.Authenticated() {
		return s.renderBridgeError(c, "unauthorized", "Your session expired during the connection flow")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), bridgeCallTimeout)
	defer cancel()

	body, err := s.api.CompleteEmailAccountCallback(ctx, sess.AccessToken, code, state, c.QueryParam("scope"))
	if err != nil {
		slog.Error("Mailbox OAuth callback failed", "error", err)
		return s.renderBridgeError(c, "callback_failed", "The mail provider connection could not be completed")
	}

	connection := extractConnection(body)
	metrics.BridgeOutcomes.WithLabelValues("success").Inc()
	slog.Info("Mailbox connected via popup bridge")

	// The literal travels as a string; the popup evaluates it and falls back
	// to a minimal payload when it does not parse.
	return s.render(c, "bridge_success.html", map[string]any{
		"TargetOrigin": s.config.PortalOrigin,
		"Connection":   connection,
		"CloseAfterMS": bridgeSuccessCloseAfter.Milliseconds(),
	})
}

func (s *Server) renderBridgeError(c echo.Context, code, description string) error {
	metrics.BridgeOutcomes.WithLabelValues("error").Inc()
	slog.Warn("Mailbox OAuth popup reported an error", "code", code, "description", description)
	return s.render(c, "bridge_error.html", map[string]any{
		"TargetOrigin": s.config.PortalOrigin,
		"Error":        code,
		"Description":  description,
		"State":        c.QueryParam("state"),
		"CloseAfterMS": bridgeErrorCloseAfter.Milliseconds(),
	})
}

// extractConnection digs the connection object literal out of the backend's
// HTML. Anything unparseable or script-breaking falls back to a minimal
// active-status object.
func extractConnection(body string) string {
	match := connectionPattern.FindStringSubmatch(body)
	if match == nil {
		return fallbackConnection
	}
	literal := match[1]
	if strings.Contains(strings.ToLower(literal), "</script") {
		return fallbackConnection
	}
	return literal
}
