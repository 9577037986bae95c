package workspace

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RavinduThilinaka/pdf-conventor/internal/domain"
	"github.com/RavinduThilinaka/pdf-conventor/internal/preview"
)

// stubGenerator lets tests control the pipeline outcome.
type stubGenerator struct {
	generateFn func(ctx context.Context, entries []domain.ImageEntry, cfg domain.LayoutConfig, onProgress domain.ProgressFunc) (*domain.PDFResult, error)
}

func (s *stubGenerator) Generate(ctx context.Context, entries []domain.ImageEntry, cfg domain.LayoutConfig, onProgress domain.ProgressFunc) (*domain.PDFResult, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, entries, cfg, onProgress)
	}
	return &domain.PDFResult{Data: []byte("%PDF-stub"), Filename: cfg.Filename(), Pages: len(entries)}, nil
}

func upload(name, contentType string) domain.Upload {
	return domain.Upload{Name: name, ContentType: contentType, Data: []byte(name + "-bytes")}
}

func newTestManager(t *testing.T, clock clockwork.Clock, opts Options) (*Manager, *preview.Store, uuid.UUID) {
	t.Helper()
	previews := preview.NewStore()
	m := NewManager(previews, &stubGenerator{}, clock, opts)
	id, err := m.Acquire(context.Background(), uuid.Nil)
	require.NoError(t, err)
	return m, previews, id
}

func entryNames(infos []domain.EntryInfo) []string {
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

func TestAcquireReturnsExistingWorkspace(t *testing.T) {
	m, _, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	again, err := m.Acquire(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	// Unknown IDs get a fresh workspace instead of an error.
	fresh, err := m.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotEqual(t, id, fresh)
}

func TestAddFiltersByContentType(t *testing.T) {
	m, previews, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	infos, err := m.AddImages(context.Background(), id, []domain.Upload{
		upload("a.jpg", "image/jpeg"),
		upload("notes.txt", "text/plain"),
		upload("b.png", "image/png"),
		upload("movie.mp4", "video/mp4"),
		upload("c.webp", "image/webp"),
		upload("d.gif", "image/gif"),
	})
	require.NoError(t, err)

	// Only the accepted kinds survive, in original relative order.
	assert.Equal(t, []string{"a.jpg", "b.png", "c.webp", "d.gif"}, entryNames(infos))
	assert.Equal(t, 4, previews.Outstanding())
}

func TestAddAppendsAfterExistingEntries(t *testing.T) {
	m, _, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	_, err := m.AddImages(context.Background(), id, []domain.Upload{upload("first.png", "image/png")})
	require.NoError(t, err)

	infos, err := m.AddImages(context.Background(), id, []domain.Upload{upload("second.jpg", "image/jpeg")})
	require.NoError(t, err)
	assert.Equal(t, []string{"first.png", "second.jpg"}, entryNames(infos))
}

func TestAddDuplicateFilesKeepBothEntries(t *testing.T) {
	m, _, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	infos, err := m.AddImages(context.Background(), id, []domain.Upload{
		upload("twin.png", "image/png"),
		upload("twin.png", "image/png"),
	})
	require.NoError(t, err)
	assert.Len(t, infos, 2)
	assert.NotEqual(t, infos[0].PreviewHandle, infos[1].PreviewHandle)
}

func TestAddHonorsConfiguredDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m, _, id := newTestManager(t, clock, Options{AddDelay: 300 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		_, err := m.AddImages(context.Background(), id, []domain.Upload{upload("a.png", "image/png")})
		done <- err
	}()

	clock.BlockUntil(1)
	clock.Advance(300 * time.Millisecond)
	require.NoError(t, <-done)
}

func TestRemoveReleasesPreviewAndShiftsLeft(t *testing.T) {
	m, previews, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	_, err := m.AddImages(context.Background(), id, []domain.Upload{
		upload("a.png", "image/png"),
		upload("b.png", "image/png"),
		upload("c.png", "image/png"),
	})
	require.NoError(t, err)

	infos, err := m.RemoveImage(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "c.png"}, entryNames(infos))
	assert.Equal(t, 2, previews.Outstanding())
}

func TestRemoveOutOfRangeIsNoOp(t *testing.T) {
	m, previews, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	_, err := m.AddImages(context.Background(), id, []domain.Upload{upload("a.png", "image/png")})
	require.NoError(t, err)

	for _, index := range []int{-1, 1, 99} {
		infos, err := m.RemoveImage(context.Background(), id, index)
		require.NoError(t, err)
		assert.Len(t, infos, 1)
	}
	assert.Equal(t, 1, previews.Outstanding())
}

func TestReorderIsAMoveNotASwap(t *testing.T) {
	m, _, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	_, err := m.AddImages(context.Background(), id, []domain.Upload{
		upload("a.png", "image/png"),
		upload("b.png", "image/png"),
		upload("c.png", "image/png"),
		upload("d.png", "image/png"),
	})
	require.NoError(t, err)

	// Moving c to the front shifts a and b right; their relative order holds.
	infos, err := m.ReorderImages(context.Background(), id, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.png", "a.png", "b.png", "d.png"}, entryNames(infos))

	infos, err = m.ReorderImages(context.Background(), id, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png", "d.png", "c.png"}, entryNames(infos))
}

func TestReorderOutOfRangeIsNoOp(t *testing.T) {
	m, _, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	_, err := m.AddImages(context.Background(), id, []domain.Upload{
		upload("a.png", "image/png"),
		upload("b.png", "image/png"),
	})
	require.NoError(t, err)

	infos, err := m.ReorderImages(context.Background(), id, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, entryNames(infos))
}

func TestSortTogglesDirectionAndIsStable(t *testing.T) {
	m, _, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	_, err := m.AddImages(context.Background(), id, []domain.Upload{
		upload("b.png", "image/png"),
		upload("a.jpg", "image/jpeg"),
		upload("c.gif", "image/gif"),
	})
	require.NoError(t, err)

	infos, err := m.SortImages(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.png", "c.gif"}, entryNames(infos))

	infos, err = m.SortImages(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.gif", "b.png", "a.jpg"}, entryNames(infos))
}

func TestSortIsCaseInsensitiveAndStableOnTies(t *testing.T) {
	m, _, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	_, err := m.AddImages(context.Background(), id, []domain.Upload{
		upload("B.png", "image/png"),
		upload("a.png", "image/png"),
		upload("b.png", "image/png"),
	})
	require.NoError(t, err)

	infos, err := m.SortImages(context.Background(), id)
	require.NoError(t, err)
	// "B.png" and "b.png" compare equal case-insensitively; the earlier one
	// keeps its position.
	assert.Equal(t, []string{"a.png", "B.png", "b.png"}, entryNames(infos))
}

func TestClearReleasesEveryPreview(t *testing.T) {
	m, previews, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	_, err := m.AddImages(context.Background(), id, []domain.Upload{
		upload("a.png", "image/png"),
		upload("b.png", "image/png"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, previews.Outstanding())

	require.NoError(t, m.ClearImages(context.Background(), id))
	assert.Equal(t, 0, previews.Outstanding())

	infos, total, err := m.ListImages(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, infos)
	assert.Zero(t, total)
}

func TestClearResetsSortToggle(t *testing.T) {
	m, _, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	_, err := m.AddImages(context.Background(), id, []domain.Upload{upload("a.png", "image/png")})
	require.NoError(t, err)
	_, err = m.SortImages(context.Background(), id)
	require.NoError(t, err)

	require.NoError(t, m.ClearImages(context.Background(), id))

	_, err = m.AddImages(context.Background(), id, []domain.Upload{
		upload("b.png", "image/png"),
		upload("a.png", "image/png"),
	})
	require.NoError(t, err)

	// After clear the next sort is ascending again, not descending.
	infos, err := m.SortImages(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, entryNames(infos))
}

func TestTotalSizeIsDerivedFromEntries(t *testing.T) {
	m, _, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	_, err := m.AddImages(context.Background(), id, []domain.Upload{
		upload("a.png", "image/png"),
		upload("bb.png", "image/png"),
	})
	require.NoError(t, err)

	_, total, err := m.ListImages(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(len("a.png-bytes")+len("bb.png-bytes")), total)

	_, err = m.RemoveImage(context.Background(), id, 0)
	require.NoError(t, err)

	_, total, err = m.ListImages(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(len("bb.png-bytes")), total)
}

func TestGenerateOnEmptyWorkspace(t *testing.T) {
	m, _, id := newTestManager(t, clockwork.NewRealClock(), Options{})

	_, err := m.GeneratePDF(context.Background(), id, nil)
	require.ErrorIs(t, err, domain.ErrNoImages)
	assert.Equal(t, domain.RunIdle, m.RunState(id))
}

func TestGenerateStateTransitions(t *testing.T) {
	previews := preview.NewStore()
	running := make(chan struct{})
	release := make(chan struct{})
	gen := &stubGenerator{
		generateFn: func(_ context.Context, entries []domain.ImageEntry, cfg domain.LayoutConfig, _ domain.ProgressFunc) (*domain.PDFResult, error) {
			close(running)
			<-release
			return &domain.PDFResult{Data: []byte("%PDF-stub"), Filename: cfg.Filename(), Pages: len(entries)}, nil
		},
	}
	m := NewManager(previews, gen, clockwork.NewRealClock(), Options{})
	id, err := m.Acquire(context.Background(), uuid.Nil)
	require.NoError(t, err)

	_, err = m.AddImages(context.Background(), id, []domain.Upload{upload("a.png", "image/png")})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := m.GeneratePDF(context.Background(), id, nil)
		done <- err
	}()

	<-running
	assert.Equal(t, domain.RunConverting, m.RunState(id))

	// A second invocation while converting is rejected.
	_, err = m.GeneratePDF(context.Background(), id, nil)
	assert.ErrorIs(t, err, domain.ErrConversionInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, domain.RunDone, m.RunState(id))
}

func TestGenerateFailureMarksRunFailed(t *testing.T) {
	previews := preview.NewStore()
	gen := &stubGenerator{
		generateFn: func(context.Context, []domain.ImageEntry, domain.LayoutConfig, domain.ProgressFunc) (*domain.PDFResult, error) {
			return nil, fmt.Errorf("%w: corrupt entry", domain.ErrDecode)
		},
	}
	m := NewManager(previews, gen, clockwork.NewRealClock(), Options{})
	id, err := m.Acquire(context.Background(), uuid.Nil)
	require.NoError(t, err)

	_, err = m.AddImages(context.Background(), id, []domain.Upload{upload("a.png", "image/png")})
	require.NoError(t, err)

	_, err = m.GeneratePDF(context.Background(), id, nil)
	require.ErrorIs(t, err, domain.ErrDecode)
	assert.Equal(t, domain.RunFailed, m.RunState(id))

	// A failed run does not wedge the workspace; the next attempt runs.
	gen.generateFn = nil
	result, err := m.GeneratePDF(context.Background(), id, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pages)
}

func TestGenerateUsesSnapshotOrder(t *testing.T) {
	previews := preview.NewStore()
	var seen []string
	gen := &stubGenerator{
		generateFn: func(_ context.Context, entries []domain.ImageEntry, cfg domain.LayoutConfig, _ domain.ProgressFunc) (*domain.PDFResult, error) {
			for _, e := range entries {
				seen = append(seen, e.DisplayName)
			}
			return &domain.PDFResult{Data: []byte("%PDF-stub"), Filename: cfg.Filename(), Pages: len(entries)}, nil
		},
	}
	m := NewManager(previews, gen, clockwork.NewRealClock(), Options{})
	id, err := m.Acquire(context.Background(), uuid.Nil)
	require.NoError(t, err)

	// The concrete scenario: add b, a, c; sort ascending; move index 2 to 0.
	_, err = m.AddImages(context.Background(), id, []domain.Upload{
		upload("b.png", "image/png"),
		upload("a.jpg", "image/jpeg"),
		upload("c.gif", "image/gif"),
	})
	require.NoError(t, err)
	_, err = m.SortImages(context.Background(), id)
	require.NoError(t, err)
	_, err = m.ReorderImages(context.Background(), id, 2, 0)
	require.NoError(t, err)

	_, err = m.GeneratePDF(context.Background(), id, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.gif", "a.jpg", "b.png"}, seen)
}

func TestEvictionReleasesPreviews(t *testing.T) {
	clock := clockwork.NewFakeClock()
	previews := preview.NewStore()
	m := NewManager(previews, &stubGenerator{}, clock, Options{TTL: 10 * time.Minute})
	id, err := m.Acquire(context.Background(), uuid.Nil)
	require.NoError(t, err)

	_, err = m.AddImages(context.Background(), id, []domain.Upload{upload("a.png", "image/png")})
	require.NoError(t, err)
	require.Equal(t, 1, previews.Outstanding())

	clock.Advance(11 * time.Minute)
	assert.Equal(t, 1, m.evictIdle())
	assert.Equal(t, 0, previews.Outstanding())

	_, _, err = m.ListImages(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)
}

func TestEvictionSkipsFreshWorkspaces(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewManager(preview.NewStore(), &stubGenerator{}, clock, Options{TTL: 10 * time.Minute})
	_, err := m.Acquire(context.Background(), uuid.Nil)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 0, m.evictIdle())
}
