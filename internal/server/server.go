package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/RavinduThilinaka/pdf-conventor/internal/config"
	"github.com/RavinduThilinaka/pdf-conventor/internal/domain"
	apperrors "github.com/RavinduThilinaka/pdf-conventor/internal/errors"
	"github.com/RavinduThilinaka/pdf-conventor/internal/progress"
)

const sessionMaxAgeDays = 7

// progressHub is the subset of the progress hub the server needs.
type progressHub interface {
	Register(workspaceID uuid.UUID, conn *websocket.Conn) error
	Unregister(workspaceID uuid.UUID, conn *websocket.Conn)
	Publish(workspaceID uuid.UUID, update progress.Update)
}

type Server struct {
	echo          *echo.Echo
	config        *config.Config
	app           domain.WorkspaceService
	previews      domain.PreviewSource
	hub           progressHub
	sessionStore  *sessions.CookieStore
	indexTemplate *template.Template
	startTime     time.Time
}

func NewServer(cfg *config.Config, app domain.WorkspaceService, previews domain.PreviewSource, hub progressHub) (*Server, error) {
	// Parse templates once at startup
	indexTmpl, err := template.ParseFiles("web/templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	// Session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * sessionMaxAgeDays,
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}

	srv := &Server{
		echo:          e,
		config:        cfg,
		app:           app,
		previews:      previews,
		hub:           hub,
		sessionStore:  sessionStore,
		indexTemplate: indexTmpl,
		startTime:     time.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
