package domain

import (
	"context"

	"github.com/google/uuid"
)

// RunState describes a single generation run for a workspace.
type RunState string

const (
	RunIdle       RunState = "idle"
	RunConverting RunState = "converting"
	RunDone       RunState = "done"
	RunFailed     RunState = "failed"
)

// PDFResult is a finished document ready for download.
type PDFResult struct {
	Data     []byte
	Filename string
	Pages    int
}

// ProgressFunc receives the rounded percentage after each completed page.
// It is UI feedback only, never a correctness contract.
type ProgressFunc func(percent int)

// WorkspaceService is the application-facing surface of the session state
// manager plus the render pipeline trigger. All mutations of a workspace's
// entry collection and layout go through it.
type WorkspaceService interface {
	// Acquire resolves id to an existing workspace or creates a fresh one,
	// returning the effective workspace ID.
	Acquire(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	// AddImages filters files to the accepted kinds, appends the accepted
	// ones in original relative order, and returns the updated entry list.
	// Rejected files are dropped without error.
	AddImages(ctx context.Context, id uuid.UUID, files []Upload) ([]EntryInfo, error)

	ListImages(ctx context.Context, id uuid.UUID) ([]EntryInfo, int64, error)
	RemoveImage(ctx context.Context, id uuid.UUID, index int) ([]EntryInfo, error)
	ReorderImages(ctx context.Context, id uuid.UUID, from, to int) ([]EntryInfo, error)
	SortImages(ctx context.Context, id uuid.UUID) ([]EntryInfo, error)
	ClearImages(ctx context.Context, id uuid.UUID) error

	Layout(ctx context.Context, id uuid.UUID) (LayoutConfig, error)
	SetLayout(ctx context.Context, id uuid.UUID, cfg LayoutConfig) error

	// GeneratePDF converts the workspace's entries, in order, into a single
	// document. Returns ErrNoImages on an empty workspace and
	// ErrConversionInFlight while a previous run is converting.
	GeneratePDF(ctx context.Context, id uuid.UUID, onProgress ProgressFunc) (*PDFResult, error)
}

// PreviewSource serves thumbnail blobs by handle.
type PreviewSource interface {
	Get(handle uuid.UUID) (data []byte, contentType string, ok bool)
}
