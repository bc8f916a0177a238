package server

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rjmoggach/litigation-support-sub001/internal/errclass"
)

const flashKey = "flash"

type flash struct {
	Severity string
	Message  string
	Recovery string
}

func (s *Server) render(c echo.Context, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = s.popFlash(c)
	}
	if sess := currentSession(c); sess.Authenticated() {
		data["User"] = sess.User
	}
	data["PublicAPIBaseURL"] = s.config.PublicAPIBaseURL

	buf := new(bytes.Buffer)
	if err := s.templates.ExecuteTemplate(buf, name, data); err != nil {
		slog.Error("Failed to render template", "template", name, "error", err)
		return c.String(500, "Internal error")
	}
	return c.HTMLBlob(200, buf.Bytes())
}

// flashError classifies err and stores its user-facing message as a flash
// shown on the next rendered page (the toast surface).
func (s *Server) flashError(c echo.Context, err error) {
	classified := errclass.Classify(err)
	slog.Warn("Request failed",
		"category", classified.Category,
		"severity", classified.Severity,
		"error", err,
	)
	s.setFlash(c, flash{
		Severity: string(classified.Severity),
		Message:  classified.Message,
		Recovery: string(classified.Recovery),
	})
}

func (s *Server) setFlash(c echo.Context, f flash) {
	state, _ := s.stateStore.Get(c.Request(), stateSessionName)
	state.AddFlash(f.Severity + "|" + f.Recovery + "|" + f.Message, flashKey)
	if err := state.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Warn("Failed to save flash", "error", err)
	}
}

func (s *Server) popFlash(c echo.Context) *flash {
	state, _ := s.stateStore.Get(c.Request(), stateSessionName)
	flashes := state.Flashes(flashKey)
	if len(flashes) == 0 {
		return nil
	}
	if err := state.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Warn("Failed to clear flash", "error", err)
	}

	raw, ok := flashes[0].(string)
	if !ok {
		return nil
	}
	f := &flash{}
	if parts := strings.SplitN(raw, "|", 3); len(parts) == 3 {
		f.Severity = parts[0]
		f.Recovery = parts[1]
		f.Message = parts[2]
	} else {
		f.Message = raw
	}
	return f
}

// sessionToken returns the gated session's access token for backend calls.
func sessionToken(c echo.Context) string {
	if sess := currentSession(c); sess.Authenticated() {
		return sess.AccessToken
	}
	return ""
}
