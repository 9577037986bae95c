package server

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/RavinduThilinaka/pdf-conventor/internal/domain"
	apperrors "github.com/RavinduThilinaka/pdf-conventor/internal/errors"
)

// Session keys
const (
	sessionName         = "pdf-conventor-session"
	sessionKeyWorkspace = "workspace_id"
)

// resolveWorkspace binds the request to its workspace: the cookie's ID when
// it is still live, a fresh workspace otherwise (cookies outlive evictions).
func (s *Server) resolveWorkspace(c echo.Context) (uuid.UUID, error) {
	sess, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// A tampered or stale cookie decodes to a fresh session.
		sess, _ = s.sessionStore.New(c.Request(), sessionName)
	}

	var current uuid.UUID
	if raw, ok := sess.Values[sessionKeyWorkspace].(string); ok {
		if parsed, parseErr := uuid.Parse(raw); parseErr == nil {
			current = parsed
		}
	}

	id, err := s.app.Acquire(c.Request().Context(), current)
	if err != nil {
		return uuid.Nil, apperrors.InternalError("failed to open workspace", err)
	}

	if id != current {
		sess.Values[sessionKeyWorkspace] = id.String()
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return uuid.Nil, apperrors.InternalError("failed to save session", err)
		}
	}

	c.Set("workspaceID", id.String())
	return id, nil
}

// renderTemplate renders a template to a buffer first to prevent partial HTML
// from being sent if template execution fails.
func renderTemplate(c echo.Context, tmpl *template.Template, data interface{}) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("Template execution failed", "path", c.Request().URL.Path, "error", err)
		return c.String(500, "Failed to render page")
	}
	return c.HTMLBlob(200, buf.Bytes())
}

func (s *Server) handleIndex(c echo.Context) error {
	id, err := s.resolveWorkspace(c)
	if err != nil {
		return err
	}

	cfg, err := s.app.Layout(c.Request().Context(), id)
	if err != nil {
		return apperrors.InternalError("failed to load layout", err)
	}

	data := map[string]any{
		"Layout":       cfg,
		"PageSizes":    []domain.PageSize{domain.PageA4, domain.PageLetter, domain.PageLegal, domain.PageA3},
		"Orientations": []domain.Orientation{domain.Portrait, domain.Landscape},
		"Policies":     []domain.SizingPolicy{domain.PolicyFit, domain.PolicyFill, domain.PolicyOriginal},
		"WSHost":       c.Request().Host,
	}

	return renderTemplate(c, s.indexTemplate, data)
}

func (s *Server) handlePreview(c echo.Context) error {
	handle, err := uuid.Parse(c.Param("handle"))
	if err != nil {
		return apperrors.ValidationError("invalid preview handle")
	}

	data, contentType, ok := s.previews.Get(handle)
	if !ok {
		return apperrors.NotFoundError("preview not found")
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(200, contentType, data)
}
