// Package history implements snapshot-based undo/redo for timelines.
package history

import "github.com/starford/cutline/internal/models"

// DefaultCapacity is the number of snapshots kept when none is configured.
const DefaultCapacity = 50

// Manager is an append-only, truncatable log of timeline snapshots with a
// cursor. Entries are stored and returned as deep copies, so callers can never
// alter recorded history. A Manager is not safe for concurrent use.
type Manager struct {
	entries  []models.Snapshot
	index    int
	capacity int
}

// New returns an empty Manager. capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manager{index: -1, capacity: capacity}
}

// Save records s as the newest entry. Entries after the cursor (the redo
// future) are discarded first; when the log exceeds capacity the oldest
// entries are evicted and the cursor shifts with them.
func (m *Manager) Save(s models.Snapshot) {
	m.entries = append(m.entries[:m.index+1], s.Clone())
	m.index = len(m.entries) - 1

	if evict := len(m.entries) - m.capacity; evict > 0 {
		kept := make([]models.Snapshot, m.capacity)
		copy(kept, m.entries[evict:])
		m.entries = kept
		m.index -= evict
	}
}

// Undo steps the cursor back and returns a copy of the entry it lands on.
// ok is false (and nothing changes) when there is nothing to undo.
func (m *Manager) Undo() (models.Snapshot, bool) {
	if !m.CanUndo() {
		return models.Snapshot{}, false
	}
	m.index--
	return m.entries[m.index].Clone(), true
}

// Redo steps the cursor forward and returns a copy of the entry it lands on.
func (m *Manager) Redo() (models.Snapshot, bool) {
	if !m.CanRedo() {
		return models.Snapshot{}, false
	}
	m.index++
	return m.entries[m.index].Clone(), true
}

// CanUndo reports whether an older entry exists before the cursor.
func (m *Manager) CanUndo() bool { return m.index > 0 }

// CanRedo reports whether a newer entry exists after the cursor.
func (m *Manager) CanRedo() bool { return m.index < len(m.entries)-1 }

// Current returns a copy of the entry under the cursor.
func (m *Manager) Current() (models.Snapshot, bool) {
	if m.index < 0 || m.index >= len(m.entries) {
		return models.Snapshot{}, false
	}
	return m.entries[m.index].Clone(), true
}

// Clear drops every entry.
func (m *Manager) Clear() {
	m.entries = nil
	m.index = -1
}

// Len returns the number of stored entries.
func (m *Manager) Len() int { return len(m.entries) }

// Index returns the cursor position, -1 when empty.
func (m *Manager) Index() int { return m.index }

// Capacity returns the maximum number of entries kept.
func (m *Manager) Capacity() int { return m.capacity }
