package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"sync"
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

// --- Mock implementations ---

type mockWorkspaceService struct {
	acquireFn   func(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	addFn       func(ctx context.Context, id uuid.UUID, files []domain.Upload) ([]domain.EntryInfo, error)
	listFn      func(ctx context.Context, id uuid.UUID) ([]domain.EntryInfo, int64, error)
	removeFn    func(ctx context.Context, id uuid.UUID, index int) ([]domain.EntryInfo, error)
	reorderFn   func(ctx context.Context, id uuid.UUID, from, to int) ([]domain.EntryInfo, error)
	sortFn      func(ctx context.Context, id uuid.UUID) ([]domain.EntryInfo, error)
	clearFn     func(ctx context.Context, id uuid.UUID) error
	layoutFn    func(ctx context.Context, id uuid.UUID) (domain.LayoutConfig, error)
	setLayoutFn func(ctx context.Context, id uuid.UUID, cfg domain.LayoutConfig) error
	generateFn  func(ctx context.Context, id uuid.UUID, onProgress domain.ProgressFunc) (*domain.PDFResult, error)
}

var fixedWorkspaceID = uuid.MustParse("7b2d31f6-6f5a-4a0e-9b52-0f6cb1c4f9aa")

func (m *mockWorkspaceService) Acquire(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	if m.acquireFn != nil {
		return m.acquireFn(ctx, id)
	}
	return fixedWorkspaceID, nil
}

func (m *mockWorkspaceService) AddImages(ctx context.Context, id uuid.UUID, files []domain.Upload) ([]domain.EntryInfo, error) {
	if m.addFn != nil {
		return m.addFn(ctx, id, files)
	}
	return []domain.EntryInfo{}, nil
}

func (m *mockWorkspaceService) ListImages(ctx context.Context, id uuid.UUID) ([]domain.EntryInfo, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, id)
	}
	return []domain.EntryInfo{}, 0, nil
}

func (m *mockWorkspaceService) RemoveImage(ctx context.Context, id uuid.UUID, index int) ([]domain.EntryInfo, error) {
	if m.removeFn != nil {
		return m.removeFn(ctx, id, index)
	}
	return []domain.EntryInfo{}, nil
}

func (m *mockWorkspaceService) ReorderImages(ctx context.Context, id uuid.UUID, from, to int) ([]domain.EntryInfo, error) {
	if m.reorderFn != nil {
		return m.reorderFn(ctx, id, from, to)
	}
	return []domain.EntryInfo{}, nil
}

func (m *mockWorkspaceService) SortImages(ctx context.Context, id uuid.UUID) ([]domain.EntryInfo, error) {
	if m.sortFn != nil {
		return m.sortFn(ctx, id)
	}
	return []domain.EntryInfo{}, nil
}

func (m *mockWorkspaceService) ClearImages(ctx context.Context, id uuid.UUID) error {
	if m.clearFn != nil {
		return m.clearFn(ctx, id)
	}
	return nil
}

func (m *mockWorkspaceService) Layout(ctx context.Context, id uuid.UUID) (domain.LayoutConfig, error) {
	if m.layoutFn != nil {
		return m.layoutFn(ctx, id)
	}
	return domain.DefaultLayout(), nil
}

func (m *mockWorkspaceService) SetLayout(ctx context.Context, id uuid.UUID, cfg domain.LayoutConfig) error {
	if m.setLayoutFn != nil {
		return m.setLayoutFn(ctx, id, cfg)
	}
	return nil
}

func (m *mockWorkspaceService) GeneratePDF(ctx context.Context, id uuid.UUID, onProgress domain.ProgressFunc) (*domain.PDFResult, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, id, onProgress)
	}
	return nil, errors.New("not implemented")
}

type mockPreviewSource struct {
	getFn func(handle uuid.UUID) ([]byte, string, bool)
}

func (m *mockPreviewSource) Get(handle uuid.UUID) ([]byte, string, bool) {
	if m.getFn != nil {
		return m.getFn(handle)
	}
	return nil, "", false
}

type publishedUpdate struct {
	workspaceID uuid.UUID
	update      progress.Update
}

type mockHub struct {
	mu        sync.Mutex
	published []publishedUpdate
}

func (m *mockHub) Register(uuid.UUID, *websocket.Conn) error { return nil }
func (m *mockHub) Unregister(uuid.UUID, *websocket.Conn)     {}

func (m *mockHub) Publish(workspaceID uuid.UUID, update progress.Update) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedUpdate{workspaceID: workspaceID, update: update})
}

func (m *mockHub) updates() []progress.Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	updates := make([]progress.Update, len(m.published))
	for i, p := range m.published {
		updates[i] = p.update
	}
	return updates
}

// --- Test server setup ---

var testIndexTemplate = template.Must(template.New("index").Parse(`<html><body>{{.Layout.PageSize}}</body></html>`))

func newTestServer(app domain.WorkspaceService, previews domain.PreviewSource, hub progressHub) *Server {
	cfg := &config.Config{
		AppEnv:         "test",
		Port:           "0",
		SessionSecret:  "test-secret",
		MaxUploadBytes: 1 << 20,
		WorkspaceTTL:   time.Minute,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	srv := &Server{
		echo:          e,
		config:        cfg,
		app:           app,
		previews:      previews,
		hub:           hub,
		sessionStore:  sessionStore,
		indexTemplate: testIndexTemplate,
		startTime:     time.Now(),
	}
	srv.registerRoutes()
	return srv
}
