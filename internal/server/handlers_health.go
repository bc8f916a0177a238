package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rjmoggach/litigation-support-sub001/internal/version"
)

const readinessTimeout = 5 * time.Second

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(200, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(s.clock.Since(s.startTime).Seconds()),
	})
}

// handleReadiness reports whether the backend API is reachable. Not ready
// means the portal can serve nothing useful.
func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	if err := s.api.Ping(ctx); err != nil {
		return c.JSON(503, map[string]any{
			"status": "not ready",
			"error":  err.Error(),
		})
	}
	return c.JSON(200, map[string]any{"status": "ready"})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
