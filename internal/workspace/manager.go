// Package workspace implements the session state manager.
//
// A Manager owns every live workspace: the ordered entry collections, the
// layout configurations, and the preview handles backing thumbnails. All
// mutations run under the manager lock so the entry list and its preview
// handles always move in lockstep.
package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/RavinduThilinaka/pdf-conventor/internal/domain"
	"github.com/RavinduThilinaka/pdf-conventor/internal/metrics"
	"github.com/RavinduThilinaka/pdf-conventor/internal/preview"
)

// Generator is the render pipeline the manager delegates to.
type Generator interface {
	Generate(ctx context.Context, entries []domain.ImageEntry, cfg domain.LayoutConfig, onProgress domain.ProgressFunc) (*domain.PDFResult, error)
}

// Manager implements domain.WorkspaceService.
type Manager struct {
	mu         sync.Mutex
	workspaces map[uuid.UUID]*Workspace

	previews  *preview.Store
	generator Generator
	clock     clockwork.Clock

	ttl      time.Duration
	addDelay time.Duration
}

// Options tune manager behavior; zero values are sensible.
type Options struct {
	// TTL after which an untouched workspace is evicted. Zero disables
	// eviction.
	TTL time.Duration

	// AddDelay is an optional minimum latency applied to AddImages so the
	// UI can show its busy state. Zero (the default) skips it.
	AddDelay time.Duration
}

func NewManager(previews *preview.Store, generator Generator, clock clockwork.Clock, opts Options) *Manager {
	return &Manager{
		workspaces: make(map[uuid.UUID]*Workspace),
		previews:   previews,
		generator:  generator,
		clock:      clock,
		ttl:        opts.TTL,
		addDelay:   opts.AddDelay,
	}
}

// Acquire resolves id to a live workspace, creating one when id is nil or
// unknown (a cookie can outlive its evicted workspace).
func (m *Manager) Acquire(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != uuid.Nil {
		if ws, ok := m.workspaces[id]; ok {
			ws.lastUsed = m.clock.Now()
			return id, nil
		}
	}

	id = uuid.New()
	m.workspaces[id] = newWorkspace(id, m.clock.Now())
	metrics.WorkspacesActive.Set(float64(len(m.workspaces)))
	return id, nil
}

// get must be called with m.mu held.
func (m *Manager) get(id uuid.UUID) (*Workspace, error) {
	ws, ok := m.workspaces[id]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	ws.lastUsed = m.clock.Now()
	return ws, nil
}

// AddImages filters files to the four accepted kinds and appends the
// accepted ones in their original relative order. Rejected files are
// dropped silently.
func (m *Manager) AddImages(ctx context.Context, id uuid.UUID, files []domain.Upload) ([]domain.EntryInfo, error) {
	if m.addDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.clock.After(m.addDelay):
		}
	}

	accepted := make([]domain.ImageEntry, 0, len(files))
	for _, f := range files {
		kind, ok := domain.KindFromContentType(f.ContentType)
		if !ok {
			metrics.UploadsRejectedTotal.Inc()
			continue
		}
		accepted = append(accepted, domain.ImageEntry{
			ID:            uuid.New(),
			DisplayName:   f.Name,
			Kind:          kind,
			Data:          f.Data,
			SizeBytes:     int64(len(f.Data)),
			PreviewHandle: m.previews.Put(f.Data, kind.ContentType()),
		})
		metrics.UploadsAcceptedTotal.WithLabelValues(string(kind)).Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ws, err := m.get(id)
	if err != nil {
		// The workspace vanished while we held the previews; release them.
		for _, e := range accepted {
			m.previews.Release(e.PreviewHandle)
		}
		return nil, err
	}

	ws.append(accepted)
	return ws.infos(), nil
}

func (m *Manager) ListImages(_ context.Context, id uuid.UUID) ([]domain.EntryInfo, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws, err := m.get(id)
	if err != nil {
		return nil, 0, err
	}
	return ws.infos(), ws.totalSizeBytes(), nil
}

func (m *Manager) RemoveImage(_ context.Context, id uuid.UUID, index int) ([]domain.EntryInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws, err := m.get(id)
	if err != nil {
		return nil, err
	}

	if removed, ok := ws.removeAt(index); ok {
		m.previews.Release(removed.PreviewHandle)
	}
	return ws.infos(), nil
}

func (m *Manager) ReorderImages(_ context.Context, id uuid.UUID, from, to int) ([]domain.EntryInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws, err := m.get(id)
	if err != nil {
		return nil, err
	}

	ws.move(from, to)
	return ws.infos(), nil
}

func (m *Manager) SortImages(_ context.Context, id uuid.UUID) ([]domain.EntryInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws, err := m.get(id)
	if err != nil {
		return nil, err
	}

	ws.sortEntries()
	return ws.infos(), nil
}

func (m *Manager) ClearImages(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws, err := m.get(id)
	if err != nil {
		return err
	}

	for _, e := range ws.clear() {
		m.previews.Release(e.PreviewHandle)
	}
	return nil
}

func (m *Manager) Layout(_ context.Context, id uuid.UUID) (domain.LayoutConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws, err := m.get(id)
	if err != nil {
		return domain.LayoutConfig{}, err
	}
	return ws.layout, nil
}

func (m *Manager) SetLayout(_ context.Context, id uuid.UUID, cfg domain.LayoutConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ws, err := m.get(id)
	if err != nil {
		return err
	}
	ws.layout = cfg
	return nil
}

// GeneratePDF snapshots the entry collection and layout, marks the run
// Converting, and delegates to the pipeline. Page order matches collection
// order at invocation time; a second call while Converting is rejected.
func (m *Manager) GeneratePDF(ctx context.Context, id uuid.UUID, onProgress domain.ProgressFunc) (*domain.PDFResult, error) {
	m.mu.Lock()
	ws, err := m.get(id)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if ws.runState == domain.RunConverting {
		m.mu.Unlock()
		metrics.ConversionsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrConversionInFlight
	}
	if len(ws.entries) == 0 {
		m.mu.Unlock()
		metrics.ConversionsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrNoImages
	}
	entries := ws.snapshot()
	cfg := ws.layout
	ws.runState = domain.RunConverting
	m.mu.Unlock()

	start := m.clock.Now()
	result, err := m.generator.Generate(ctx, entries, cfg, onProgress)

	m.mu.Lock()
	if err != nil {
		ws.runState = domain.RunFailed
	} else {
		ws.runState = domain.RunDone
	}
	m.mu.Unlock()

	if err != nil {
		metrics.ConversionsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.ConversionsTotal.WithLabelValues("done").Inc()
	metrics.ConversionDuration.Observe(m.clock.Since(start).Seconds())
	metrics.ConversionPages.Observe(float64(result.Pages))
	return result, nil
}

// RunState reports the state of the workspace's last generation run.
func (m *Manager) RunState(id uuid.UUID) domain.RunState {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws, ok := m.workspaces[id]
	if !ok {
		return domain.RunIdle
	}
	return ws.runState
}

// StartEvictionTimer starts a background goroutine that periodically evicts
// idle workspaces. Returns a stop function that should be called to clean up
// the goroutine.
func (m *Manager) StartEvictionTimer(interval time.Duration) func() {
	ticker := m.clock.NewTicker(interval)
	done := make(chan bool)

	go func() {
		for {
			select {
			case <-ticker.Chan():
				evicted := m.evictIdle()
				if evicted > 0 {
					slog.Debug("Evicted idle workspaces", "count", evicted)
				}

			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}

// evictIdle removes workspaces untouched for longer than the TTL, releasing
// their preview handles.
func (m *Manager) evictIdle() int {
	if m.ttl <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.clock.Now().Add(-m.ttl)
	evicted := 0
	for id, ws := range m.workspaces {
		// Never evict mid-conversion; the run holds a snapshot but the
		// previews must survive until the workspace goes away for real.
		if ws.runState == domain.RunConverting || !ws.lastUsed.Before(cutoff) {
			continue
		}
		for _, e := range ws.clear() {
			m.previews.Release(e.PreviewHandle)
		}
		delete(m.workspaces, id)
		evicted++
	}

	if evicted > 0 {
		metrics.WorkspacesEvictedTotal.Add(float64(evicted))
		metrics.WorkspacesActive.Set(float64(len(m.workspaces)))
	}
	return evicted
}
