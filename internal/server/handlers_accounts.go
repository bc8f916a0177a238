package server

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleAccountsList(c echo.Context) error {
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	accounts, err := s.api.ListEmailAccounts(ctx, sessionToken(c))
	if err != nil {
		s.flashError(c, err)
	}
	return s.render(c, "accounts.html", map[string]any{
		"Accounts": accounts,
	})
}

// handleAccountConnect starts the popup flow for linking a mailbox: mint a
// state nonce, stash it in the state cookie, and send the popup to the
// provider. The provider returns it to /oauth/bridge.
func (s *Server) handleAccountConnect(c echo.Context) error {
	provider := c.Param("provider")
	state := uuid.NewString()

	stateSession, _ := s.stateStore.Get(c.Request(), stateSessionName)
	stateSession.Values[sessionKeyBridgeState] = state
	if err := stateSession.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Error("Failed to save bridge state", "error", err)
		return c.String(500, "Internal error")
	}

	ctx, cancel := s.resourceContext(c)
	defer cancel()

	authURL, err := s.api.EmailAccountAuthorizeURL(ctx, sessionToken(c), provider, state,
		s.config.PortalOrigin+"/oauth/bridge")
	if err != nil {
		s.flashError(c, err)
		return c.Redirect(302, "/accounts")
	}
	return c.Redirect(302, authURL)
}

func (s *Server) handleAccountDisconnect(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	if err := s.api.DisconnectEmailAccount(ctx, sessionToken(c), id); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/accounts")
}
