package editor

import (
	"github.com/postcraft-io/template-studio/internal/models"
)

// History is a linear undo/redo stack of whole-template snapshots with a
// current index. Pushing while the index is not at the tail discards the
// redo branch. Snapshotting the whole document is simple and correct for
// the template sizes in this domain (tens of elements).
type History struct {
	entries []*models.Template
	index   int
}

// NewHistory returns an empty history. The index stays at -1 until the
// first snapshot is pushed.
func NewHistory() *History {
	return &History{index: -1}
}

// Push records a snapshot as the new tail. Entries after the current
// index are discarded first. The snapshot is cloned, so later mutation of
// the argument cannot corrupt history.
func (h *History) Push(snapshot *models.Template) {
	if h.index < len(h.entries)-1 {
		h.entries = h.entries[:h.index+1]
	}
	h.entries = append(h.entries, snapshot.Clone())
	h.index++
}

// Undo steps back one snapshot. Returns false when already at the oldest
// entry (or empty).
func (h *History) Undo() (*models.Template, bool) {
	if h.index <= 0 {
		return nil, false
	}
	h.index--
	return h.entries[h.index].Clone(), true
}

// Redo steps forward one snapshot. Returns false when already at the tail.
func (h *History) Redo() (*models.Template, bool) {
	if h.index >= len(h.entries)-1 {
		return nil, false
	}
	h.index++
	return h.entries[h.index].Clone(), true
}

// Current returns the snapshot at the current index, or nil when empty.
func (h *History) Current() *models.Template {
	if h.index < 0 {
		return nil
	}
	return h.entries[h.index].Clone()
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Index returns the current position, -1 when empty.
func (h *History) Index() int {
	return h.index
}

// CanUndo reports whether Undo would move the index.
func (h *History) CanUndo() bool {
	return h.index > 0
}

// CanRedo reports whether Redo would move the index.
func (h *History) CanRedo() bool {
	return h.index < len(h.entries)-1
}
