package workspace

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RavinduThilinaka/pdf-conventor/internal/domain"
)

// Workspace holds one browser's ordered entry collection and layout
// configuration. All access goes through the Manager, which holds the lock.
type Workspace struct {
	id      uuid.UUID
	entries []domain.ImageEntry
	layout  domain.LayoutConfig

	// sortDescending is the direction the NEXT sort invocation applies;
	// it toggles on every call.
	sortDescending bool

	runState domain.RunState
	lastUsed time.Time
}

func newWorkspace(id uuid.UUID, now time.Time) *Workspace {
	return &Workspace{
		id:       id,
		layout:   domain.DefaultLayout(),
		runState: domain.RunIdle,
		lastUsed: now,
	}
}

// append adds accepted entries at the end, preserving their relative order.
func (w *Workspace) append(entries []domain.ImageEntry) {
	w.entries = append(w.entries, entries...)
}

// removeAt drops the entry at index, shifting subsequent entries left.
// Out-of-range indexes are a defensive no-op; the removed entry (for
// preview release) and whether anything happened are reported.
func (w *Workspace) removeAt(index int) (domain.ImageEntry, bool) {
	if index < 0 || index >= len(w.entries) {
		return domain.ImageEntry{}, false
	}
	removed := w.entries[index]
	w.entries = append(w.entries[:index], w.entries[index+1:]...)
	return removed, true
}

// move removes the entry at from and reinserts it at to in one transition.
// No other element's relative order changes.
func (w *Workspace) move(from, to int) bool {
	n := len(w.entries)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	entry := w.entries[from]
	rest := append(w.entries[:from], w.entries[from+1:]...)
	w.entries = append(rest[:to], append([]domain.ImageEntry{entry}, rest[to:]...)...)
	return true
}

// sortEntries orders by case-insensitive display name and flips the toggle.
// sort.SliceStable keeps equal names in their prior relative order.
func (w *Workspace) sortEntries() {
	descending := w.sortDescending
	sort.SliceStable(w.entries, func(i, j int) bool {
		a := strings.ToLower(w.entries[i].DisplayName)
		b := strings.ToLower(w.entries[j].DisplayName)
		if descending {
			return a > b
		}
		return a < b
	})
	w.sortDescending = !descending
}

// clear empties the collection and resets the sort toggle; the caller
// releases the preview handles of the returned entries.
func (w *Workspace) clear() []domain.ImageEntry {
	removed := w.entries
	w.entries = nil
	w.sortDescending = false
	return removed
}

// snapshot copies the entry slice so the render pipeline reads a fixed
// view even if the workspace mutates afterwards.
func (w *Workspace) snapshot() []domain.ImageEntry {
	entries := make([]domain.ImageEntry, len(w.entries))
	copy(entries, w.entries)
	return entries
}

func (w *Workspace) totalSizeBytes() int64 {
	var total int64
	for _, e := range w.entries {
		total += e.SizeBytes
	}
	return total
}

func (w *Workspace) infos() []domain.EntryInfo {
	infos := make([]domain.EntryInfo, len(w.entries))
	for i, e := range w.entries {
		infos[i] = domain.EntryInfo{
			Index:         i,
			Name:          e.DisplayName,
			Kind:          e.Kind,
			SizeBytes:     e.SizeBytes,
			PreviewHandle: e.PreviewHandle.String(),
		}
	}
	return infos
}
