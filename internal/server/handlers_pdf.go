package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/RavinduThilinaka/pdf-conventor/internal/domain"
	apperrors "github.com/RavinduThilinaka/pdf-conventor/internal/errors"
	"github.com/RavinduThilinaka/pdf-conventor/internal/logging"
	"github.com/RavinduThilinaka/pdf-conventor/internal/progress"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin tool; the cookie already scopes the workspace.
		return true
	},
}

func (s *Server) handleGeneratePDF(c echo.Context) error {
	id, err := s.resolveWorkspace(c)
	if err != nil {
		return err
	}

	onProgress := func(percent int) {
		s.hub.Publish(id, progress.Update{State: domain.RunConverting, Percent: percent})
	}

	result, err := s.app.GeneratePDF(c.Request().Context(), id, onProgress)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoImages):
			return apperrors.ValidationError("no images selected")
		case errors.Is(err, domain.ErrConversionInFlight):
			return apperrors.ConflictError("a conversion is already running")
		case errors.Is(err, domain.ErrDecode):
			s.hub.Publish(id, progress.Update{State: domain.RunFailed})
			// The failing entry is logged, never surfaced to the client.
			logging.WithWorkspace(id.String()).Error("Conversion failed", "error", err)
			return apperrors.UnprocessableError("one of the selected images could not be converted")
		default:
			s.hub.Publish(id, progress.Update{State: domain.RunFailed})
			return apperrors.InternalError("failed to generate document", err)
		}
	}

	s.hub.Publish(id, progress.Update{State: domain.RunDone, Percent: 100})

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, result.Filename))
	return c.Blob(200, "application/pdf", result.Data)
}

func (s *Server) handleProgressSocket(c echo.Context) error {
	id, err := s.resolveWorkspace(c)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	if err := s.hub.Register(id, conn); err != nil {
		logging.WithWorkspace(id.String()).Warn("Failed to register progress client", "error", err)
		_ = conn.Close()
		return nil
	}

	// Read pump, blocks until the connection closes
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Unregister(id, conn)

	return nil
}
