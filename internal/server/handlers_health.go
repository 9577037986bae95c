package server

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/RavinduThilinaka/pdf-conventor/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status":  "ok",
		"uptime":  uptime,
		"version": version.Get(),
	})
}

// handleReadiness has no external dependencies to probe; everything the
// server needs lives in-process.
func (s *Server) handleReadiness(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ready"})
}
